// Package server exposes the qreuse pipeline over HTTP.
//
// Routes:
//
//	POST /v1/analyze     minimum width and an optional verdict for a target
//	POST /v1/reduce      reduced circuit (JSON, or OpenQASM with ?format=qasm)
//	POST /v1/crosscheck  every method and heuristic side by side
//	POST /v1/graph       dependency graph rendering in one format
//	GET  /healthz        liveness
//	GET  /metrics        Prometheus metrics
//
// Request bodies carry the circuit under "circuit" in the format read by
// pkg/io, next to the run options:
//
//	{"circuit": {"ops": [...], "measure_all": true}, "target": 2, "heuristic": "mrv"}
//
// Errors are JSON objects {"error": {"code": ..., "message": ...}}.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/qreuse/pkg/observability"
	"github.com/matzehuels/qreuse/pkg/pipeline"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 8 << 20

// Config holds server dependencies.
type Config struct {
	Addr   string
	Runner *pipeline.Runner
	Logger *log.Logger
	// Defaults seeds every request's options; request fields override it.
	Defaults pipeline.Options
	// Gatherer backs /metrics. Nil selects prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
	// Ordered makes the input order of every request circuit binding.
	Ordered bool
}

// Server is the HTTP front end of a pipeline.Runner.
type Server struct {
	router   *chi.Mux
	server   *http.Server
	log      *log.Logger
	runner   *pipeline.Runner
	defaults pipeline.Options
	ordered  bool
}

// New creates a server with its routes registered.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	runner := cfg.Runner
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		router:   chi.NewRouter(),
		log:      logger.WithPrefix("server"),
		runner:   runner,
		defaults: cfg.Defaults,
		ordered:  cfg.Ordered,
	}
	s.setupMiddleware()
	s.setupRoutes(gatherer)

	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
}

func (s *Server) setupRoutes(gatherer prometheus.Gatherer) {
	s.handle(http.MethodGet, "/healthz", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	s.router.Route("/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		s.handleOn(r, http.MethodPost, "/analyze", s.handleAnalyze)
		s.handleOn(r, http.MethodPost, "/reduce", s.handleReduce)
		s.handleOn(r, http.MethodPost, "/crosscheck", s.handleCrossCheck)
		s.handleOn(r, http.MethodPost, "/graph", s.handleGraph)
	})
}

func (s *Server) handle(method, pattern string, h http.HandlerFunc) {
	s.handleOn(s.router, method, pattern, h)
}

// handleOn registers h and reports it to the HTTP hooks under its full
// route pattern.
func (s *Server) handleOn(r chi.Router, method, pattern string, h http.HandlerFunc) {
	r.Method(method, pattern, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		route := chi.RouteContext(req.Context()).RoutePattern()
		if route == "" {
			route = pattern
		}
		start := time.Now()
		observability.HTTP().OnRequest(req.Context(), method, route)
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		h(ww, req)
		observability.HTTP().OnResponse(req.Context(), method, route, status(ww), time.Since(start))
	}))
}

// ListenAndServe serves until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.server.Addr)
		errc <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status(ww),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// status reports 200 for handlers that never called WriteHeader.
func status(ww middleware.WrapResponseWriter) int {
	if ww.Status() == 0 {
		return http.StatusOK
	}
	return ww.Status()
}
