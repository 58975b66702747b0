package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestCorrelationMiddlewareEchoesIncomingID(t *testing.T) {
	var seen string
	handler := CorrelationMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetCorrelationID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationIDHeader, "caller-supplied-id")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if seen != "caller-supplied-id" {
		t.Errorf("context correlation id = %q", seen)
	}
	if got := w.Header().Get(CorrelationIDHeader); got != "caller-supplied-id" {
		t.Errorf("response header = %q", got)
	}
}

func TestCorrelationMiddlewareMintsIDWhenMissing(t *testing.T) {
	var seen string
	handler := CorrelationMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetCorrelationID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if seen == "" {
		t.Fatal("no correlation id minted")
	}
	if _, err := uuid.Parse(seen); err != nil {
		t.Errorf("minted id %q is not a uuid: %v", seen, err)
	}
	if got := w.Header().Get(CorrelationIDHeader); got != seen {
		t.Errorf("response header %q does not match context id %q", got, seen)
	}
}

func TestGetCorrelationIDWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id, ok := GetCorrelationID(req.Context()); ok || id != "" {
		t.Errorf("GetCorrelationID = (%q, %v), want empty", id, ok)
	}
}
