// Package web exposes the search pipeline over HTTP.
//
// The API is JSON-first: network payloads travel as extended Newick strings
// inside JSON bodies, figures are returned as raw bytes with the matching
// content type. All state lives in the runner's cache and run store; the
// server itself is stateless and safe for concurrent use.
package web

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phylonetworks/reticula/pkg/pipeline"
)

// maxBodySize caps request bodies. Newick strings for realistic networks
// are a few kilobytes; one megabyte leaves ample headroom.
const maxBodySize = 1 << 20

// Server holds the chi router and the shared pipeline runner.
type Server struct {
	router chi.Router
	runner *pipeline.Runner
	logger *log.Logger
}

// NewServer creates a Server with all routes configured.
func NewServer(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner: runner,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/validate", s.handleValidate)
		r.Post("/moves", s.handleMove)
		r.Post("/search", s.handleSearch)
		r.Post("/render", s.handleRender)

		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Delete("/runs/{id}", s.handleDeleteRun)
	})
	s.router = r

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	s.router.ServeHTTP(w, r)
}

// logRequests logs one line per request after it completes.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}
