// Package server exposes the command router over HTTP so editors and
// scripts can run sinner commands against one long-lived process.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sinner-cli/sinner/internal/router"
	"github.com/sinner-cli/sinner/internal/store"
)

// maxBodySize bounds a run request body.
const maxBodySize = 1 << 20 // 1MB

// Server is the sinner HTTP API server.
type Server struct {
	runner  *router.Router
	db      *store.DB // nil when history is disabled
	router  chi.Router
	version string
	started time.Time
	log     *zap.Logger
}

// New creates a new Server. db may be nil.
func New(runner *router.Router, db *store.DB, version string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		runner:  runner,
		db:      db,
		version: version,
		started: time.Now(),
		log:     log,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/commands", s.handleCommands)
		r.Post("/run/{command}", s.handleRun)
		r.Get("/history", s.handleHistory)
	})

	s.router = r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := false
	dbPath := ""
	if s.db != nil {
		dbOK = s.db.Ping() == nil
		dbPath = s.db.Path
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": dbPath,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
