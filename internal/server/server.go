// Package server exposes editing sessions and the batch pipeline over an
// HTTP/JSON API.
//
// Session routes drive one editor each: text changes, canvas changes and
// pointer events on the decorated preview. Stateless routes render, parse,
// generate and lay out documents without a session.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/mermedit/internal/config"
	"github.com/matzehuels/mermedit/pkg/metrics"
	"github.com/matzehuels/mermedit/pkg/pipeline"
	"github.com/matzehuels/mermedit/pkg/session"
)

// maxBodyBytes bounds request bodies. Documents are limited separately.
const maxBodyBytes = 4 << 20

// Options configure a Server.
type Options struct {
	Config config.Config

	// Store holds editing sessions. Required.
	Store *session.MemoryStore

	// Runner serves the stateless routes. Required.
	Runner *pipeline.Runner

	// Metrics enables /metrics when set.
	Metrics *metrics.Registry

	Logger *log.Logger
}

// Server is the HTTP API.
type Server struct {
	cfg     config.Config
	store   *session.MemoryStore
	runner  *pipeline.Runner
	metrics *metrics.Registry
	logger  *log.Logger
	router  chi.Router
}

// New creates a server and registers its routes.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	s := &Server{
		cfg:     opts.Config,
		store:   opts.Store,
		runner:  opts.Runner,
		metrics: opts.Metrics,
		logger:  opts.Logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/templates", s.handleTemplates)
		r.Get("/templates/{name}", s.handleTemplate)

		r.Post("/render", s.handleRender)
		r.Post("/parse", s.handleParse)
		r.Post("/generate", s.handleGenerate)
		r.Post("/layout", s.handleLayout)

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Put("/text", s.handleSetText)
			r.Post("/nodes/changes", s.handleNodeChanges)
			r.Post("/edges/changes", s.handleEdgeChanges)
			r.Post("/connect", s.handleConnect)
			r.Get("/preview", s.handlePreview)
			r.Post("/preview/pointer", s.handlePointer)
			r.Put("/preview/mode", s.handleDragMode)
			r.Get("/offsets", s.handleGetOffsets)
			r.Put("/offsets", s.handleSetOffsets)
		})
	})
	return r
}

// Run serves until ctx is done, then shuts down gracefully. Expired
// sessions are swept in the background while the server runs.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		timeout := s.cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		interval := s.cfg.Session.JanitorInterval
		if interval <= 0 {
			interval = time.Minute
		}
		return s.store.RunJanitor(ctx, interval)
	})
	return g.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.store.Len(),
	})
}
