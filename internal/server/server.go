// Package server provides the HTTP API for kagi.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hyperjump/kagi/internal/config"
	"github.com/hyperjump/kagi/internal/search"
	"github.com/hyperjump/kagi/internal/storage"
)

// WatchService reports the catalog directories being watched.
type WatchService interface {
	Directories() []string
}

// Server is the HTTP server for the kagi API.
type Server struct {
	engine   *search.Engine
	semantic *search.SemanticEngine
	storage  storage.Storage
	catalog  CatalogIndex // nil when no term index is kept
	config   *config.Config
	logger   *zap.Logger
	watch    WatchService // nil when watching is disabled
	server   *http.Server
}

// NewServer creates a server with the given dependencies. catalog and watch may be nil.
func NewServer(
	engine *search.Engine,
	semantic *search.SemanticEngine,
	store storage.Storage,
	catalog CatalogIndex,
	cfg *config.Config,
	logger *zap.Logger,
	watch WatchService,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		engine:   engine,
		semantic: semantic,
		storage:  store,
		catalog:  catalog,
		config:   cfg,
		logger:   logger,
		watch:    watch,
	}
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))
	r.Use(s.logRequests)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/shortcuts", s.handleSearch)
		r.Get("/shortcuts/keys", s.handleSearchByKeys)
		r.Post("/shortcuts/semantic", s.handleSemanticSearch)
		r.Get("/shortcuts/{id}", s.handleGetShortcut)
		r.Get("/shortcuts/{id}/explain", s.handleExplain)
		r.Get("/apps/{app}/shortcuts", s.handleAppShortcuts)
		r.Get("/status", s.handleStatus)
	})
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// logRequests logs each request at debug level through zap.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
