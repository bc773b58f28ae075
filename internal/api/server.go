// Package api exposes validation, gating and TCA simulation over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"strategy-gate/internal/domain"
	"strategy-gate/internal/observability"
	"strategy-gate/internal/orchestrator"
	"strategy-gate/internal/reporting"
)

// Defaults fill request fields the caller omits.
type Defaults struct {
	Splits         int
	EmbargoPct     float64
	EmbargoMode    string
	PeriodsPerYear float64
	Threshold      float64
	Confidence     float64
	Estimator      string
	Delta          float64
	Venue          string
	TCAParams      domain.TCAParams
}

// Options configures a Server.
type Options struct {
	Orchestrator *orchestrator.Orchestrator
	Reports      *reporting.Generator // nil disables GET /v1/runs/{id}
	Metrics      *observability.Metrics
	Gatherer     prometheus.Gatherer // nil disables /metrics
	Logger       *zerolog.Logger

	Defaults        Defaults
	Workers         int
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	RateLimit       float64 // requests per second, 0 disables
	RateBurst       int
	MaxBodyBytes    int64
}

// Server is the HTTP API.
type Server struct {
	orch     *orchestrator.Orchestrator
	reports  *reporting.Generator
	metrics  *observability.Metrics
	logger   zerolog.Logger
	defaults Defaults
	workers  int
	validate *validator.Validate

	requestTimeout  time.Duration
	shutdownTimeout time.Duration
	maxBodyBytes    int64
	limiter         *rate.Limiter

	router *mux.Router
}

// NewServer creates a server and registers its routes.
func NewServer(opts Options) *Server {
	s := &Server{
		orch:            opts.Orchestrator,
		reports:         opts.Reports,
		metrics:         opts.Metrics,
		logger:          zerolog.Nop(),
		defaults:        opts.Defaults,
		workers:         opts.Workers,
		validate:        validator.New(),
		requestTimeout:  opts.RequestTimeout,
		shutdownTimeout: opts.ShutdownTimeout,
		maxBodyBytes:    opts.MaxBodyBytes,
		router:          mux.NewRouter(),
	}
	if opts.Logger != nil {
		s.logger = *opts.Logger
	}
	if s.maxBodyBytes <= 0 {
		s.maxBodyBytes = 10 << 20
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = 15 * time.Second
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	s.setupRoutes(opts.Gatherer)
	return s
}

func (s *Server) setupRoutes(g prometheus.Gatherer) {
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.metricsMiddleware)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if g != nil {
		s.router.Handle("/metrics", observability.Handler(g)).Methods(http.MethodGet)
	}

	v1 := s.router.PathPrefix("/v1").Subrouter()
	v1.Use(s.rateLimitMiddleware)
	v1.Use(s.jsonContentTypeMiddleware)

	v1.HandleFunc("/wfo", s.handleWFO).Methods(http.MethodPost)
	v1.HandleFunc("/gate", s.handleGate).Methods(http.MethodPost)
	v1.HandleFunc("/hcope", s.handleHCOPE).Methods(http.MethodPost)
	v1.HandleFunc("/tca/simulate", s.handleSimulate).Methods(http.MethodPost)
	if s.orch != nil {
		v1.HandleFunc("/runs", s.handleCreateRun).Methods(http.MethodPost)
	}
	if s.reports != nil {
		v1.HandleFunc("/runs/{id}", s.handleGetRun).Methods(http.MethodGet)
	}

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, fmt.Errorf("no route for %s %s", r.Method, r.URL.Path))
	})
}

// Handler returns the root handler, wrapped in the request timeout.
func (s *Server) Handler() http.Handler {
	if s.requestTimeout <= 0 {
		return s.router
	}
	return http.TimeoutHandler(s.router, s.requestTimeout, `{"error":"request timeout"}`)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
