package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avdmeer/Post-Ledger-Backend/internal/api/middleware"
	"github.com/avdmeer/Post-Ledger-Backend/internal/testutil"
)

// TestTokenAuth tests the bearer token middleware.
//
// WHY: Every route that commits to a chain runs behind this middleware. A
// bug here either locks out legitimate agents or lets callers commit
// records to chains they do not own.
func TestTokenAuth(t *testing.T) {
	t.Run("rejects requests without a token", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAgentService(t, db)

		handlerCalled := false
		next := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			handlerCalled = true
		})

		mw := middleware.TokenAuth(svc)(next)

		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, req)

		if handlerCalled {
			t.Error("Expected next handler NOT to be called")
		}
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
	})

	t.Run("rejects a token without the Bearer scheme", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAgentService(t, db)

		handlerCalled := false
		next := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			handlerCalled = true
		})

		mw := middleware.TokenAuth(svc)(next)

		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, req)

		if handlerCalled {
			t.Error("Expected next handler NOT to be called")
		}
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
	})

	t.Run("rejects a forged token", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAgentService(t, db)

		handlerCalled := false
		next := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			handlerCalled = true
		})

		mw := middleware.TokenAuth(svc)(next)

		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		req.Header.Set("Authorization", "Bearer not-a-fernet-token")
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, req)

		if handlerCalled {
			t.Error("Expected next handler NOT to be called")
		}
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
	})

	t.Run("allows a valid token and stores the agent in context", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAgentService(t, db)

		registration, err := svc.RegisterAgent("alice")
		if err != nil {
			t.Fatalf("Failed to register agent: %v", err)
		}

		handlerCalled := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true

			agent, ok := middleware.AgentFromContext(r.Context())
			if !ok {
				t.Error("Expected an agent in the request context")
			}
			if agent.ID != registration.Agent.ID {
				t.Errorf("Expected agent %s in context, got %s", registration.Agent.ID, agent.ID)
			}

			w.WriteHeader(http.StatusOK)
		})

		mw := middleware.TokenAuth(svc)(next)

		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		req.Header.Set("Authorization", "Bearer "+registration.Token)
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, req)

		if !handlerCalled {
			t.Error("Expected next handler to be called")
		}
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})

	t.Run("rejects a valid token whose agent no longer exists", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAgentService(t, db)

		registration, err := svc.RegisterAgent("alice")
		if err != nil {
			t.Fatalf("Failed to register agent: %v", err)
		}

		// The token outlives the agent
		testutil.CleanDatabase(t, db)

		handlerCalled := false
		next := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			handlerCalled = true
		})

		mw := middleware.TokenAuth(svc)(next)

		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		req.Header.Set("Authorization", "Bearer "+registration.Token)
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, req)

		if handlerCalled {
			t.Error("Expected next handler NOT to be called")
		}
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
	})
}

func TestAgentFromContext(t *testing.T) {
	t.Run("reports false on a bare context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)

		_, ok := middleware.AgentFromContext(req.Context())
		if ok {
			t.Error("Expected no agent on a bare context")
		}
	})
}
