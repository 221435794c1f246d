// Package server provides the HTTP server and routing for the analytics API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/qualitycore/internal/database"
	analyticshandlers "github.com/aristath/qualitycore/internal/modules/analytics/handlers"
	historyhandlers "github.com/aristath/qualitycore/internal/modules/history/handlers"
	"github.com/aristath/qualitycore/internal/scheduler"
)

// Version is reported by /health
const Version = "1.0.0"

// JobLister reports scheduled jobs
type JobLister interface {
	Jobs() []scheduler.JobStatus
}

// Config holds server configuration
type Config struct {
	Log         zerolog.Logger
	HistoryDB   *database.DB
	SnapshotsDB *database.DB
	Analytics   analyticshandlers.Analytics
	Snapshots   analyticshandlers.SnapshotReader
	History     historyhandlers.Store
	Tracked     []string // tickers the configured portfolios need
	Scheduler   JobLister
	DataDir     string
	Port        int
	DevMode     bool
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	port           int
	databases      []*database.DB
	analytics      *analyticshandlers.Handler
	history        *historyhandlers.Handler
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		port:      cfg.Port,
		databases: nonNil(cfg.HistoryDB, cfg.SnapshotsDB),
		analytics: analyticshandlers.NewHandler(cfg.Analytics, cfg.Snapshots, cfg.Log),
		history:   historyhandlers.NewHandler(cfg.History, cfg.Tracked, cfg.Log),
	}
	s.systemHandlers = NewSystemHandlers(cfg.Log, cfg.DataDir, cfg.Scheduler, s.databases...)

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Valuation histories are large; compress them outside development
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.systemHandlers.HandleSystemStatus)
		})
		s.analytics.RegisterRoutes(r)
		s.history.RegisterRoutes(r)
	})
}

func nonNil(dbs ...*database.DB) []*database.DB {
	out := make([]*database.DB, 0, len(dbs))
	for _, db := range dbs {
		if db != nil {
			out = append(out, db)
		}
	}
	return out
}

// Handler returns the root handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
