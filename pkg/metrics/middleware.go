package metrics

import (
	"net/http"
	"time"
)

// unmatchedRoute labels requests that no route pattern handled, such as
// rejected or preflight requests.
const unmatchedRoute = "other"

// Middleware records every request handled by next under the server label.
// The route label is read from the ServeMux pattern after next returns, so
// next must pass the request pointer down unchanged.
func (m *Metrics) Middleware(server string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			route := r.Pattern
			if route == "" {
				route = unmatchedRoute
			}
			m.ObserveRequest(server, r.Method, route, sw.status, time.Since(start))
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
