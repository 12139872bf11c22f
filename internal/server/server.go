package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/me/planline/internal/config"
	"github.com/me/planline/internal/project"
	"github.com/me/planline/pkg/model"
)

// Version is reported by /health and the discovery endpoint.
const Version = "0.1.0"

// defaultMaxImportBytes caps the size of an imported project document.
const defaultMaxImportBytes = 8 << 20

// Server is the planline REST API server.
type Server struct {
	router         chi.Router
	logger         *slog.Logger
	config         config.ServerConfig
	startTime      time.Time
	editor         *project.Editor
	maxImportBytes int64
}

// Option configures optional Server settings.
type Option func(*Server)

// WithMaxImportBytes overrides the request body limit of POST /import.
func WithMaxImportBytes(n int64) Option {
	return func(s *Server) {
		s.maxImportBytes = n
	}
}

// New creates a new Server with all routes registered. The editor must
// already be hydrated.
func New(cfg config.ServerConfig, ed *project.Editor, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		logger:         logger.With("component", "server"),
		config:         cfg,
		startTime:      time.Now(),
		editor:         ed,
		maxImportBytes: defaultMaxImportBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, RequestIDFromContext(r.Context()), http.StatusNotFound,
			model.NewNotFoundError("route", r.URL.Path))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.handleDiscovery)
		r.Get("/health", s.handleHealth)

		r.Route("/project", func(r chi.Router) {
			r.Get("/", s.handleGetProject)
			r.Put("/", s.handleUpdateProject)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", s.handleListTasks)
			r.Post("/", s.handleCreateTask)
			r.Post("/move", s.handleMoveTasks)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetTask)
				r.Patch("/", s.handleUpdateTask)
				r.Delete("/", s.handleDeleteTask)
			})
		})

		r.Route("/dependencies", func(r chi.Router) {
			r.Get("/", s.handleListDependencies)
			r.Post("/", s.handleCreateDependency)
			r.Delete("/", s.handleClearDependencies)
			r.Delete("/{id}", s.handleDeleteDependency)
		})

		r.Route("/groups", func(r chi.Router) {
			r.Get("/", s.handleListGroups)
			r.Post("/", s.handleCreateGroup)
			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/", s.handleUpdateGroup)
				r.Delete("/", s.handleDeleteGroup)
			})
		})

		r.Get("/schedule", s.handleSchedule)
		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)
		r.Post("/sample", s.handleSample)
		r.Post("/reset", s.handleReset)
	})
}
