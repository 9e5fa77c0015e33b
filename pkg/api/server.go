// Package api serves the mapping operations over HTTP for the mapping editor
// and the batch transformer.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/getmockd/fieldmap/pkg/httputil"
	"github.com/getmockd/fieldmap/pkg/logging"
	"github.com/getmockd/fieldmap/pkg/metrics"
	"github.com/getmockd/fieldmap/pkg/service"
)

// DefaultAddr is the default listen address of the mapping API.
const DefaultAddr = ":5000"

// maxBodyBytes caps request bodies; rule sets are small.
const maxBodyBytes = 1 << 20

// Server is the mapping HTTP API.
type Server struct {
	svc        *service.Service
	log        *slog.Logger
	cors       httputil.CORSConfig
	metrics    *metrics.Metrics
	httpServer *http.Server
	startTime  time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithCORS replaces the default CORS configuration.
func WithCORS(cfg httputil.CORSConfig) Option {
	return func(s *Server) {
		s.cors = cfg
	}
}

// WithMetrics records request and transform metrics and serves them on
// GET /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// New creates a Server that listens on addr.
func New(svc *service.Service, addr string, opts ...Option) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	s := &Server{
		svc:       svc,
		log:       logging.Nop(),
		cors:      httputil.DefaultCORSConfig(),
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return s
}

// Handler returns the routes wrapped in CORS, metrics and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	return httputil.Logging(s.log, s.metrics.Middleware("api")(httputil.CORS(s.cors, mux)))
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Serve accepts connections on ln until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting mapping API", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info("stopping mapping API")
	return s.httpServer.Shutdown(shutdownCtx)
}

// ListenAndServe listens on the configured address and serves until ctx is
// canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Uptime returns the API uptime in seconds.
func (s *Server) Uptime() int {
	return int(time.Since(s.startTime).Seconds())
}
