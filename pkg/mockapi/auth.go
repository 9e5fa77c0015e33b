package mockapi

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/getmockd/fieldmap/pkg/httputil"
	"github.com/getmockd/fieldmap/pkg/ratelimit"
)

// Default API keys accepted by the mock service.
const (
	DefaultSourceKey = "mock-oggo-key"
	DefaultTargetKey = "mock-hubspot-key"
)

// APIKeyHeader is the header carrying a raw API key.
const APIKeyHeader = "X-API-Key"

// DefaultAPIKeys returns the keys accepted when none are configured.
func DefaultAPIKeys() []string {
	return []string{DefaultSourceKey, DefaultTargetKey}
}

// keyValid compares candidate against every key in constant time.
func keyValid(keys []string, candidate string) bool {
	if candidate == "" {
		return false
	}
	ok := 0
	for _, k := range keys {
		ok |= subtle.ConstantTimeCompare([]byte(k), []byte(candidate))
	}
	return ok == 1
}

// credential returns the Bearer token or API key that authorizes r, the
// token taking precedence.
func credential(keys []string, r *http.Request) (string, bool) {
	if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found && keyValid(keys, token) {
		return token, true
	}
	if key := r.Header.Get(APIKeyHeader); keyValid(keys, key) {
		return key, true
	}
	return "", false
}

// authorized reports whether r carries a valid Bearer token or API key.
func authorized(keys []string, r *http.Request) bool {
	_, ok := credential(keys, r)
	return ok
}

// requireKey rejects requests without a valid key. Preflight requests and
// /health pass through. An empty key list disables the check.
func (s *Server) requireKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(s.keys) == 0 || r.Method == http.MethodOptions || isHealth(r) {
			next.ServeHTTP(w, r)
			return
		}
		if authorized(s.keys, r) {
			next.ServeHTTP(w, r)
			return
		}
		s.log.Warn("unauthorized request",
			"method", r.Method,
			"path", r.URL.Path,
			"has_bearer", strings.HasPrefix(r.Header.Get("Authorization"), "Bearer "),
			"has_api_key", r.Header.Get(APIKeyHeader) != "",
		)
		httputil.WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:     "Unauthorized",
			Message:   "Invalid API key or token",
			Timestamp: s.timestamp(),
		})
	})
}

// clientKey identifies the caller for rate limiting: the credential that
// authorized the request, the remote address when none did.
func (s *Server) clientKey(r *http.Request) string {
	if key, ok := credential(s.keys, r); ok {
		return "key:" + key
	}
	return "ip:" + ratelimit.ClientIP(r)
}
