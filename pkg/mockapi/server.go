// Package mockapi is an in-memory stand-in for the external systems the
// mapper talks to: a source API serving records per entity collection and a
// target CRM API accepting batch creates.
package mockapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/getmockd/fieldmap/pkg/httputil"
	"github.com/getmockd/fieldmap/pkg/logging"
	"github.com/getmockd/fieldmap/pkg/metrics"
	"github.com/getmockd/fieldmap/pkg/ratelimit"
)

// DefaultAddr is the default listen address of the mock service.
const DefaultAddr = ":3000"

// ServiceName is reported by /health.
const ServiceName = "fieldmap-mock"

const (
	maxBodyBytes = 1 << 20
	isoMillis    = "2006-01-02T15:04:05.000Z07:00"
)

// ErrorResponse is the error body of the mock service.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Server is the mock source and target API.
type Server struct {
	keys        []string
	log         *slog.Logger
	cors        httputil.CORSConfig
	now         func() time.Time
	collections map[string]*recordSet
	names       []string
	objects     map[string]*objectSet
	limiter     *ratelimit.Limiter
	metrics     *metrics.Metrics
	httpServer  *http.Server
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

// WithAPIKeys replaces the accepted API keys. No keys disables authentication.
func WithAPIKeys(keys ...string) Option {
	return func(s *Server) {
		s.keys = slices.DeleteFunc(slices.Clone(keys), func(k string) bool { return k == "" })
	}
}

// WithCollections replaces the default source collections.
func WithCollections(cols ...Collection) Option {
	return func(s *Server) {
		s.setCollections(cols)
	}
}

// WithClock sets the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCORS replaces the default CORS configuration.
func WithCORS(cfg httputil.CORSConfig) Option {
	return func(s *Server) {
		s.cors = cfg
	}
}

// WithRateLimit meters each client, keyed by its API key or else its
// address, with a token bucket. Requests over the limit get 429.
func WithRateLimit(cfg ratelimit.Config) Option {
	return func(s *Server) {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		s.limiter = ratelimit.New(cfg)
	}
}

// WithMetrics records request metrics under server="mock". The mock does
// not expose /metrics itself; the owner of the registry does.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// New creates a Server that listens on addr.
func New(addr string, opts ...Option) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	s := &Server{
		keys:    DefaultAPIKeys(),
		log:     logging.Nop(),
		cors:    httputil.DefaultCORSConfig(),
		now:     time.Now,
		objects: newObjectSets(),
	}
	s.setCollections(DefaultCollections())
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

func (s *Server) setCollections(cols []Collection) {
	s.collections = make(map[string]*recordSet, len(cols))
	s.names = s.names[:0]
	for _, c := range cols {
		if c.Name == "" {
			continue
		}
		if _, dup := s.collections[c.Name]; !dup {
			s.names = append(s.names, c.Name)
		}
		s.collections[c.Name] = newRecordSet(c)
	}
}

// Collections returns the served source collection names in order.
func (s *Server) Collections() []string {
	return slices.Clone(s.names)
}

// ObjectTypes returns the CRM object types accepted by the target API.
func (s *Server) ObjectTypes() []string {
	out := make([]string, 0, len(s.objects))
	for name := range s.objects {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Handler returns the routes wrapped in key checks, rate limiting, CORS,
// metrics and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /crm/v3/objects/{object}", s.handleListObjects)
	mux.HandleFunc("POST /crm/v3/objects/{object}/batch/create", s.handleBatchCreate)

	mux.HandleFunc("GET /{collection}", s.handleListRecords)
	mux.HandleFunc("POST /{collection}", s.handleCreateRecord)
	mux.HandleFunc("GET /{collection}/{id}", s.handleGetRecord)
	mux.HandleFunc("PUT /{collection}/{id}", s.handleUpdateRecord)
	mux.HandleFunc("DELETE /{collection}/{id}", s.handleDeleteRecord)

	var h http.Handler = mux
	if s.limiter != nil {
		h = ratelimit.Middleware(s.limiter,
			ratelimit.WithKeyFunc(s.clientKey),
			ratelimit.WithSkip(isHealth),
			ratelimit.WithClock(s.now),
		)(h)
	}
	return httputil.Logging(s.log, s.metrics.Middleware("mock")(httputil.CORS(s.cors, s.requireKey(h))))
}

func isHealth(r *http.Request) bool {
	return r.URL.Path == "/health"
}

// Close releases background resources. Serve calls it on shutdown.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Serve accepts connections on ln until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.Close()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting mock API",
			"addr", ln.Addr().String(),
			"collections", s.names,
			"crm_objects", s.ObjectTypes(),
			"rate_limited", s.limiter != nil,
		)
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
	s.log.Info("stopping mock API")
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

func (s *Server) timestamp() string {
	return s.now().UTC().Format(isoMillis)
}
