// Package api exposes the Redline HTTP API.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/joy7758/redline/internal/damages"
	"github.com/joy7758/redline/internal/discretion"
	"github.com/joy7758/redline/internal/domain"
	"github.com/joy7758/redline/internal/privacy"
	"github.com/joy7758/redline/internal/resources"
	"github.com/joy7758/redline/internal/scan"
)

// Server represents the HTTP API server.
type Server struct {
	router  *chi.Mux
	handler *Handler
	server  *http.Server
	config  domain.ServerConfig
}

// NewServer creates a new API server.
func NewServer(
	cfg domain.ServerConfig,
	rateCfg domain.RateLimitConfig,
	store domain.Store,
	cache domain.Cache,
	calculator *damages.Calculator,
	evaluator *discretion.Evaluator,
	scanner *scan.Scanner,
	provider *resources.Provider,
	version string,
) *Server {
	handler := NewHandler(store, cache, calculator, evaluator, scanner, provider, version)
	router := chi.NewRouter()

	// Global middleware stack
	router.Use(CORSMiddleware)         // CORS for browser clients
	router.Use(RecoverMiddleware)      // Recover from panics
	router.Use(TracingMiddleware)      // OpenTelemetry tracing
	router.Use(LoggingMiddleware)      // Request logging
	router.Use(middleware.RealIP)      // Extract real IP
	router.Use(middleware.Compress(5)) // Gzip compression

	// Health endpoints (unmetered, unmasked)
	router.Get("/health", handler.Health)
	router.Get("/ready", handler.Ready)

	// API routes
	router.Route("/", func(r chi.Router) {
		r.Use(RateLimitMiddleware(cache, rateCfg))
		r.Use(MaskingMiddleware(privacy.NewMasker()))
		r.Use(SensitiveInputMiddleware)

		// Damages calculation
		r.Post("/damages/calculate", handler.Calculate)

		// Judicial discretion evaluation
		r.Post("/discretion/evaluate", handler.EvaluateDiscretion)

		// Contract scanning and clause analysis
		r.Post("/contracts/scan", handler.ScanContract)
		r.Post("/clauses/analyze", handler.AnalyzeClause)
		r.Get("/suggestions/{type}", handler.GetSuggestion)

		// Legal resources
		r.Get("/resources", handler.ListResources)
		r.Get("/resource", handler.GetResource)
	})

	return &Server{
		router:  router,
		handler: handler,
		config:  cfg,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the Chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Handler returns the handler for testing.
func (s *Server) Handler() *Handler {
	return s.handler
}
