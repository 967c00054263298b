// Package api exposes the verification service over HTTP.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vgmedical/surgiverify/internal/cases"
	"github.com/vgmedical/surgiverify/internal/config"
	"github.com/vgmedical/surgiverify/internal/equivalence"
	"github.com/vgmedical/surgiverify/internal/storage"
	"github.com/vgmedical/surgiverify/internal/verify"
)

// Server is the HTTP API server for the verification service.
type Server struct {
	router       chi.Router
	processor    *cases.Processor
	engine       *verify.Engine
	equivalences *equivalence.Manager
	store        storage.Storage
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(processor *cases.Processor, engine *verify.Engine, equivalences *equivalence.Manager, store storage.Storage, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		processor:    processor,
		engine:       engine,
		equivalences: equivalences,
		store:        store,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(Metrics)

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/cases", s.handleCreateCase)
		r.Get("/api/cases/{caseID}", s.handleGetCase)
		r.Get("/api/cases/{caseID}/report", s.handleGetReport)
		r.Post("/api/cases/{caseID}/verify", s.handleVerifyCase)

		r.Post("/api/extract", s.handleExtract)

		r.Post("/api/equivalences", s.handleAddEquivalence)
		r.Post("/api/equivalences/suggest", s.handleSuggestEquivalences)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
