package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/10Sirus/orders-api-test/internal/telemetry"
)

func TestCorrelationID(t *testing.T) {
	t.Parallel()

	t.Run("caller's id is propagated and echoed", func(t *testing.T) {
		var seen string
		h := CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = telemetry.CorrelationID(r.Context())
		}))

		r := httptest.NewRequest("GET", "/orders", nil)
		r.Header.Set(correlationIDHeader, "abc-123")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		if seen != "abc-123" {
			t.Fatalf("expected caller id in context, got %q", seen)
		}
		if got := w.Header().Get(correlationIDHeader); got != "abc-123" {
			t.Fatalf("expected header echoed, got %q", got)
		}
	})

	t.Run("missing id is minted", func(t *testing.T) {
		var seen string
		h := CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = telemetry.CorrelationID(r.Context())
		}))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest("GET", "/orders", nil))

		if seen == "" {
			t.Fatalf("expected a generated id")
		}
		if _, err := uuid.Parse(seen); err != nil {
			t.Fatalf("expected a uuid, got %q", seen)
		}
		if got := w.Header().Get(correlationIDHeader); got != seen {
			t.Fatalf("expected the generated id echoed, got %q", got)
		}
	})
}

func TestCORS(t *testing.T) {
	t.Parallel()

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("wildcard allows any origin", func(t *testing.T) {
		h := CORS([]string{"*"})(okHandler)

		r := httptest.NewRequest("GET", "/orders", nil)
		r.Header.Set("Origin", "https://example.com")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Fatalf("expected wildcard allow header, got %q", got)
		}
	})

	t.Run("preflight from an allowed origin answers 204", func(t *testing.T) {
		h := CORS([]string{"https://app.example.com"})(okHandler)

		r := httptest.NewRequest("OPTIONS", "/orders", nil)
		r.Header.Set("Origin", "https://app.example.com")
		r.Header.Set("Access-Control-Request-Method", "POST")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		if w.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", w.Code)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
			t.Fatalf("unexpected allow origin %q", got)
		}
		if got := w.Header().Get("Access-Control-Allow-Headers"); got == "" {
			t.Fatalf("expected allow headers on preflight")
		}
	})

	t.Run("preflight from a disallowed origin is forbidden", func(t *testing.T) {
		h := CORS([]string{"https://app.example.com"})(okHandler)

		r := httptest.NewRequest("OPTIONS", "/orders", nil)
		r.Header.Set("Origin", "https://evil.example.com")
		r.Header.Set("Access-Control-Request-Method", "POST")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		if w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", w.Code)
		}
	})

	t.Run("request without origin passes through untouched", func(t *testing.T) {
		h := CORS([]string{"https://app.example.com"})(okHandler)

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest("GET", "/orders", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Fatalf("expected no CORS headers, got %q", got)
		}
	})
}
