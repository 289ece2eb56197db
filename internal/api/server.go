package api

import (
	"log/slog"
	"net/http"

	"github.com/FSlyne/gnote/internal/config"
	"github.com/FSlyne/gnote/internal/pipeline"
	"github.com/FSlyne/gnote/internal/session"
	"github.com/FSlyne/gnote/internal/source"
	"github.com/FSlyne/gnote/internal/stats"
	"github.com/FSlyne/gnote/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for gnote.
type Server struct {
	router       chi.Router
	session      *session.Session
	orchestrator *pipeline.Orchestrator
	src          source.Source
	sink         store.Sink
	latency      *stats.Recorder
	log          *slog.Logger
	cfg          config.Config
}

// Deps bundles the components the server routes to.
type Deps struct {
	Session      *session.Session
	Orchestrator *pipeline.Orchestrator
	Source       source.Source
	Sink         store.Sink
	Latency      *stats.Recorder
}

// NewServer creates and configures the HTTP server.
func NewServer(deps Deps, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		session:      deps.Session,
		orchestrator: deps.Orchestrator,
		src:          deps.Source,
		sink:         deps.Sink,
		latency:      deps.Latency,
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

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Get("/api/scan", s.handleCurrentScan)
		r.Post("/api/scan/sync", s.handleSyncScan)
		r.Post("/api/scan/*", s.handleOpenScan)

		r.Get("/api/tags", s.handleListTags)
		r.Get("/api/tags/{tag}", s.handleTagDocuments)
		r.Get("/api/graph", s.handleGraph)
		r.Get("/api/dashboard", s.handleDashboard)

		r.Get("/api/documents", s.handleListDocuments)
		r.Post("/api/documents", s.handleUpload)

		r.Post("/api/refresh", s.handleRefresh)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)
		r.Get("/api/stats/scan", s.handleScanStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
