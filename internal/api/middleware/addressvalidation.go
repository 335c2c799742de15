package middleware

import (
	"net/http"

	"github.com/avdmeer/Post-Ledger-Backend/internal/api/response"
	"github.com/avdmeer/Post-Ledger-Backend/internal/validation"
	"github.com/go-chi/chi/v5"
)

// ValidateAddressMiddleware validates that the address URL parameter is
// present and is a valid SHA-256 hex string.
// Returns 400 Bad Request if the address is missing or malformed.
// This middleware should be applied to routes that take a content address
// in the URL path.
//
// Example usage in router:
//
//	r.Route("/{address}", func(r chi.Router) {
//	    r.Use(middleware.ValidateAddressMiddleware)
//	    r.Get("/", handler.GetPost)
//	})
func ValidateAddressMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		address := chi.URLParam(r, "address")

		if address == "" {
			response.RespondError(w, http.StatusBadRequest, "valid content address is required", "")
			return
		}

		if err := validation.ValidateAddress(address); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid content address", err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}
