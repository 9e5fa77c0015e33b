package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_LimitsAfterBurst(t *testing.T) {
	t.Parallel()
	l := New(Config{Rate: 0.01, Burst: 2})
	defer l.Stop()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	h := Middleware(l, WithClock(func() time.Time { return now }))(okHandler())

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
		if rec.Header().Get("X-RateLimit-Limit") != "2" {
			t.Errorf("expected X-RateLimit-Limit 2, got %q", rec.Header().Get("X-RateLimit-Limit"))
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("expected remaining 0, got %q", rec.Header().Get("X-RateLimit-Remaining"))
	}

	var body exceededBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error != "rate_limit_exceeded" {
		t.Errorf("unexpected error code %q", body.Error)
	}
	if body.Timestamp != "2024-05-01T12:00:00.000Z" {
		t.Errorf("unexpected timestamp %q", body.Timestamp)
	}
}

func TestMiddleware_KeyFuncAndSkip(t *testing.T) {
	t.Parallel()
	l := New(Config{Rate: 0.01, Burst: 1})
	defer l.Stop()
	h := Middleware(l,
		WithKeyFunc(func(r *http.Request) string { return r.Header.Get("X-API-Key") }),
		WithSkip(func(r *http.Request) bool { return r.URL.Path == "/health" }),
	)(okHandler())

	send := func(path, key string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("X-API-Key", key)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("/a", "one"); code != http.StatusOK {
		t.Errorf("first request for key one: %d", code)
	}
	if code := send("/a", "one"); code != http.StatusTooManyRequests {
		t.Errorf("second request for key one: %d", code)
	}
	if code := send("/a", "two"); code != http.StatusOK {
		t.Errorf("key two has its own bucket: %d", code)
	}
	for i := 0; i < 3; i++ {
		if code := send("/health", "one"); code != http.StatusOK {
			t.Errorf("skipped path was limited: %d", code)
		}
	}
}

func TestMiddleware_NilLimiterPassesThrough(t *testing.T) {
	t.Parallel()
	h := Middleware(nil)(okHandler())
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	}
}

func TestClientIP(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:51234"
	if got := ClientIP(req); got != "192.0.2.7" {
		t.Errorf("expected 192.0.2.7, got %q", got)
	}
	req.RemoteAddr = "not-an-addr"
	if got := ClientIP(req); got != "not-an-addr" {
		t.Errorf("expected raw RemoteAddr fallback, got %q", got)
	}
}
