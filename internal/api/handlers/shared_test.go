package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/avdmeer/Post-Ledger-Backend/internal/api/request"
)

// TestParseJSON tests the parseJSON helper function.
// This is an internal test (package handlers, not handlers_test) because
// parseJSON is unexported.
func TestParseJSON(t *testing.T) {
	t.Run("decodes a valid request body", func(t *testing.T) {
		body := strings.NewReader(`{"nickname": "alice"}`)
		req := httptest.NewRequest(http.MethodPost, "/test", body)

		parsed, err := parseJSON[request.RegisterAgentRequest](req)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if parsed.Nickname != "alice" {
			t.Errorf("Expected nickname 'alice', got '%s'", parsed.Nickname)
		}
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		// A typo in a field name must surface, not silently drop the value
		body := strings.NewReader(`{"nickame": "alice"}`)
		req := httptest.NewRequest(http.MethodPost, "/test", body)

		_, err := parseJSON[request.RegisterAgentRequest](req)
		if err == nil {
			t.Error("Expected an error for an unknown field")
		}
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		body := strings.NewReader(`{"nickname": `)
		req := httptest.NewRequest(http.MethodPost, "/test", body)

		_, err := parseJSON[request.RegisterAgentRequest](req)
		if err == nil {
			t.Error("Expected an error for malformed JSON")
		}
	})

	t.Run("rejects an empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(""))

		_, err := parseJSON[request.RegisterAgentRequest](req)
		if err == nil {
			t.Error("Expected an error for an empty body")
		}
	})

	t.Run("leaves optional fields at their zero values", func(t *testing.T) {
		body := strings.NewReader(`{"content": "hello"}`)
		req := httptest.NewRequest(http.MethodPost, "/test", body)

		parsed, err := parseJSON[request.CreatePostRequest](req)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if parsed.Content != "hello" {
			t.Errorf("Expected content 'hello', got '%s'", parsed.Content)
		}
		if parsed.InReplyTo != "" || parsed.Timestamp != "" {
			t.Errorf("Expected optional fields empty, got inReplyTo=%q timestamp=%q",
				parsed.InReplyTo, parsed.Timestamp)
		}
	})
}
