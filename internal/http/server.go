package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"quickspend/internal/core"
	"quickspend/internal/log"
	"quickspend/internal/middleware/ratelimit"
	"quickspend/internal/middleware/security"
	"quickspend/internal/middleware/trace"
	"quickspend/internal/view"
)

// ExpenseAPI is the service behind the HTTP API.
type ExpenseAPI interface {
	Create(ctx context.Context, in core.NewExpense, idempotencyKey string) (core.Expense, error)
	List(ctx context.Context, q core.ListQuery) ([]core.Expense, error)
	Ping(ctx context.Context) error
}

// Options configures the HTTP server.
type Options struct {
	Addr               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	RateLimitPerMinute int
	TrustedProxies     []string
	Logger             *log.Logger
}

type Server struct {
	http.Server
	api         ExpenseAPI
	renderer    *view.Renderer
	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	tracer      *trace.Middleware
	logger      *log.Logger

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options, api ExpenseAPI) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	detector, err := security.NewDetector(opts.TrustedProxies...)
	if err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	s := &Server{
		api:         api,
		renderer:    view.NewRenderer(api),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:    detector,
		tracer:      trace.NewMiddleware(logger, detector.ExtractClientIP),
		logger:      logger,
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(handleNotFound)
	// Unknown methods on known paths are reported like unknown paths.
	r.MethodNotAllowedHandler = http.HandlerFunc(handleNotFound)

	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/expenses", s.handleListExpenses).Methods(http.MethodGet, http.MethodHead)
	r.Handle("/expenses",
		s.rateLimiter.Middleware(detector.ExtractClientIP, handleRateLimited)(http.HandlerFunc(s.handleCreateExpense)),
	).Methods(http.MethodPost)

	var handler http.Handler = r
	handler = detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:           opts.Addr,
		Handler:        handler,
		ReadTimeout:    opts.ReadTimeout,
		WriteTimeout:   opts.WriteTimeout,
		IdleTimeout:    opts.IdleTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	return s, nil
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Metrics reports request counters from the middleware chain.
func (s *Server) Metrics() (trace.Metrics, ratelimit.Metrics, security.DetectionMetrics) {
	return s.tracer.GetMetrics(), s.rateLimiter.GetMetrics(), s.detector.GetMetrics()
}
