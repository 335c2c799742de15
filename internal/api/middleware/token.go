package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/avdmeer/Post-Ledger-Backend/internal/api/response"
	"github.com/avdmeer/Post-Ledger-Backend/internal/apperrors"
	"github.com/avdmeer/Post-Ledger-Backend/internal/model"
	"github.com/avdmeer/Post-Ledger-Backend/internal/service"
)

// contextKey is unexported so other packages cannot collide with our
// context values.
type contextKey int

const agentContextKey contextKey = iota

// TokenAuth returns a middleware that authenticates requests with the
// bearer token issued at agent registration. On success the calling
// agent is stored in the request context for handlers to read via
// AgentFromContext.
// Returns 401 Unauthorized if the token is missing, invalid, or expired.
func TokenAuth(agentService *service.AgentService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				response.RespondError(w, http.StatusUnauthorized, apperrors.ErrTokenMissing.Error(), "Missing bearer token")
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				response.RespondError(w, http.StatusUnauthorized, apperrors.ErrTokenMissing.Error(), "Authorization header must use the Bearer scheme")
				return
			}

			agent, err := agentService.Authenticate(token)
			if err != nil {
				response.RespondError(w, http.StatusUnauthorized, apperrors.ErrTokenInvalid.Error(), "Token is invalid or expired")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithAgent(r.Context(), agent)))
		})
	}
}

// ContextWithAgent stores the calling agent in the context. Handler tests
// use this to simulate an authenticated request without minting a token.
func ContextWithAgent(ctx context.Context, agent model.Agent) context.Context {
	return context.WithValue(ctx, agentContextKey, agent)
}

// AgentFromContext returns the agent stored by TokenAuth, if any.
func AgentFromContext(ctx context.Context) (model.Agent, bool) {
	agent, ok := ctx.Value(agentContextKey).(model.Agent)
	return agent, ok
}
