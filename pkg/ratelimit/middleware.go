package ratelimit

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"
)

// KeyFunc identifies the client a request is metered against.
type KeyFunc func(r *http.Request) string

// ClientIP keys requests by remote address without the port.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// MiddlewareOption configures the rate limiting middleware.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	key  KeyFunc
	skip func(r *http.Request) bool
	now  func() time.Time
}

// WithKeyFunc sets how clients are identified. Defaults to ClientIP.
func WithKeyFunc(fn KeyFunc) MiddlewareOption {
	return func(c *middlewareConfig) {
		if fn != nil {
			c.key = fn
		}
	}
}

// WithSkip exempts requests for which skip returns true.
func WithSkip(skip func(r *http.Request) bool) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.skip = skip
	}
}

// WithClock sets the time source used for the timestamp in 429 bodies.
func WithClock(now func() time.Time) MiddlewareOption {
	return func(c *middlewareConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// exceededBody is the JSON 429 body.
type exceededBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Middleware returns an HTTP middleware that enforces per-client rate limiting.
// If limiter is nil, the middleware passes through without limiting.
func Middleware(limiter *Limiter, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{key: ClientIP, now: time.Now}
	for _, o := range opts {
		o(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || (cfg.skip != nil && cfg.skip(r)) {
				next.ServeHTTP(w, r)
				return
			}

			allowed, remaining, resetOrRetry := limiter.Allow(cfg.key(r))

			// Set rate limit headers
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.Burst()))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetOrRetry, 10))

			if allowed {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Retry-After", strconv.FormatInt(resetOrRetry, 10))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(exceededBody{
				Error:     "rate_limit_exceeded",
				Message:   "Too many requests. Please slow down.",
				Timestamp: cfg.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			})
		})
	}
}
