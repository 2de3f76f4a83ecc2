// Package web serves the analysis session as a browser page plus a small JSON API.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/yildizm/CodeLens/internal/config"
	"github.com/yildizm/CodeLens/internal/logger"
	"github.com/yildizm/CodeLens/internal/monitor"
	"github.com/yildizm/CodeLens/internal/session"
)

// Options configures the browser surface
type Options struct {
	// Name labels the page, typically the loaded file name
	Name string

	// RequestTimeout bounds each handler, analysis included
	RequestTimeout time.Duration

	// Metrics receives operation metrics; a fresh collector is used when nil
	Metrics *monitor.Collector
}

// Server represents the browser surface over a single session
type Server struct {
	session  *session.Session
	logger   *logger.Logger
	opts     Options
	router   *chi.Mux
	template *template.Template
	metrics  *monitor.Collector
}

// NewServer creates a new server
func NewServer(sess *session.Session, log *logger.Logger, opts Options) (*Server, error) {
	if log == nil {
		log = logger.Nop()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	if opts.Metrics == nil {
		opts.Metrics = monitor.New()
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		session:  sess,
		logger:   log.WithComponent("web"),
		opts:     opts,
		router:   chi.NewRouter(),
		template: tmpl,
		metrics:  opts.Metrics,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// Router returns the HTTP router
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  s.logger.StdLogger(),
		NoColor: true,
	}))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.opts.RequestTimeout))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.healthCheck)

	// Browser page; every form posts and redirects back to it
	s.router.Get("/", s.index)
	s.router.Post("/source", s.setSource)
	s.router.Post("/analyze", s.analyze)
	s.router.Post("/stage/{stage}", s.selectStage)
	s.router.Post("/notice/dismiss", s.dismissNotice)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/state", s.apiState)
		r.Get("/metrics", s.apiMetrics)
		r.Put("/source", s.apiSetSource)
		r.Post("/analyze", s.apiAnalyze)
		r.Post("/stage/{stage}", s.apiSelectStage)
		r.Delete("/notice", s.apiDismissNotice)
	})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, cfg config.ServerConfig) error {
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		ErrorLog:     s.logger.StdLogger(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoWithFields("starting server", []logger.Field{logger.F("addr", cfg.Addr)})
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("server is shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("could not gracefully shutdown the server: %w", err)
	}
	results := s.metrics.Snapshot().Analysis.Results
	s.logger.InfoWithFields("server stopped", []logger.Field{logger.F("results", results)})
	return nil
}
