// Package server exposes the evaluation pipeline over HTTP.
//
// Routes:
//
//	POST /v1/evaluate          evaluate arcs and operations
//	POST /v1/check             validate and look for cycles without evaluating
//	POST /v1/export?format=F   render the arc list (json, xml, prefix, dot, svg)
//	GET  /healthz              liveness and build info
//	GET  /metrics              Prometheus metrics
//
// Request bodies are JSON objects carrying the arc list and operation table
// as text, exactly as they would appear in files:
//
//	{"arcs": "(a,b,0),(a,c,1)", "operations": "a:+\nb:3\nc:4"}
//
// Every response carries an X-Request-ID header. A client-supplied value is
// echoed back; otherwise a random UUID is generated.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/arceval/pkg/config"
	"github.com/matzehuels/arceval/pkg/pipeline"
)

// Server serves the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	cfg      config.Server
	logger   *log.Logger
	gatherer prometheus.Gatherer
	validate *validator.Validate
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithGatherer sets the registry served on /metrics. The default is
// prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// New builds a Server around runner.
func New(runner *pipeline.Runner, cfg config.Server, opts ...Option) *Server {
	s := &Server{
		runner:   runner,
		cfg:      cfg,
		logger:   log.Default(),
		gatherer: prometheus.DefaultGatherer,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.limitBody)
		r.Post("/evaluate", s.handleEvaluate)
		r.Post("/check", s.handleCheck)
		r.Post("/export", s.handleExport)
	})
	return r
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully within ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is like Run but uses an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		timeout := s.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
