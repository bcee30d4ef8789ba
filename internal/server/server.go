package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/sozercan/poetry-assistant/internal/analyzer"
	"github.com/sozercan/poetry-assistant/internal/config"
	"github.com/sozercan/poetry-assistant/internal/ratelimit"
)

const shutdownGracePeriod = 30 * time.Second

type Server struct {
	cfg      config.ServerConfig
	server   *http.Server
	router   *chi.Mux
	analyzer *analyzer.Analyzer
	limiter  ratelimit.Limiter
}

type Option func(*Server)

// WithRateLimiter throttles the analysis routes per client IP.
func WithRateLimiter(l ratelimit.Limiter) Option {
	return func(s *Server) { s.limiter = l }
}

func New(cfg config.Config, analyzer *analyzer.Analyzer, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg.Server,
		router:   chi.NewRouter(),
		analyzer: analyzer,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

func (s *Server) setupRoutes() {
	if s.cfg.TrustProxyHeaders {
		s.router.Use(middleware.RealIP)
	}
	s.router.Use(requestIDMiddleware)
	s.router.Use(loggingMiddleware)
	s.router.Use(recoverMiddleware)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
	})

	// Web UI
	s.router.Get("/", s.handleIndex)
	s.router.With(s.rateLimitMiddleware(writePageLimited)).Post("/", s.handleSubmit)

	// API routes
	s.router.With(s.rateLimitMiddleware(writeJSONLimited)).Post("/analyze", s.handleAnalyze)
	s.router.Get("/forms", s.handleForms)
	s.router.Get("/healthz", s.handleHealth)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains outstanding requests.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Starting server", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Starting shutdown")

		// Give outstanding requests a deadline for completion
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	return g.Wait()
}
