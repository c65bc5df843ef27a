package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/osintlab/personscan/internal/aggregate"
	"github.com/osintlab/personscan/internal/config"
	"github.com/osintlab/personscan/internal/store"
)

// Options configures the HTTP server.
type Options struct {
	// ReportTimeout bounds one whole report generation, covering the
	// full provider fan-out.
	ReportTimeout time.Duration

	// ListLimit is the page size for report listings when the request
	// does not specify one.
	ListLimit int

	// MaxListLimit caps the page size for report listings.
	MaxListLimit int

	// Version is reported by the health endpoint.
	Version string
}

// DefaultOptions returns the server options matching the configuration
// defaults.
func DefaultOptions() Options {
	return Options{
		ReportTimeout: config.DefaultReportTimeout,
		ListLimit:     config.DefaultListLimit,
		MaxListLimit:  config.DefaultMaxListLimit,
		Version:       "(devel)",
	}
}

// Server is the HTTP surface over the orchestrator and the store.
type Server struct {
	orchestrator *aggregate.Orchestrator
	store        *store.Store
	logger       *slog.Logger
	opts         Options
}

// New creates a Server. The store may be nil; report retrieval,
// listing, deletion, and export then answer 500 while search still
// works without persistence.
func New(orchestrator *aggregate.Orchestrator, st *store.Store, logger *slog.Logger, opts Options) *Server {
	if opts.ReportTimeout <= 0 {
		opts.ReportTimeout = config.DefaultReportTimeout
	}
	if opts.ListLimit <= 0 {
		opts.ListLimit = config.DefaultListLimit
	}
	if opts.MaxListLimit <= 0 {
		opts.MaxListLimit = config.DefaultMaxListLimit
	}
	if opts.Version == "" {
		opts.Version = "(devel)"
	}
	return &Server{
		orchestrator: orchestrator,
		store:        st,
		logger:       logger,
		opts:         opts,
	}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/search", s.handleSearchGet)
	r.Post("/search", s.handleSearchPost)
	r.Post("/advanced-search", s.handleAdvancedSearch)
	r.Get("/reports", s.handleListReports)
	r.Route("/report/{mainID}", func(r chi.Router) {
		r.Get("/", s.handleGetReport)
		r.Delete("/", s.handleDeleteReport)
		r.Get("/export", s.handleExport)
	})

	return r
}

// requestLogger logs one line per request after it completes.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.InfoContext(r.Context(), "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)))
	})
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"version":   s.opts.Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
