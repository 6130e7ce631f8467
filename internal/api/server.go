// Package api implements the HTTP surface: analyze/subtitles/cut/batch
// request handlers, job progress streaming, and output file serving,
// all routed through chi with a small canonical middleware stack.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/clipforge/clipforge/internal/job"
	"github.com/clipforge/clipforge/internal/logging"
)

// Server holds every collaborator an HTTP handler might need.
type Server struct {
	deps     job.Deps
	hub      *job.Hub
	orch     *job.Orchestrator
	outDir   string
	tempRoot string
	maxBatch int
	log      zerolog.Logger
}

func NewServer(deps job.Deps, hub *job.Hub, orch *job.Orchestrator, outDir, tempDir string, maxBatchURLs int, logger zerolog.Logger) *Server {
	return &Server{
		deps:     deps,
		hub:      hub,
		orch:     orch,
		outDir:   outDir,
		tempRoot: tempDir,
		maxBatch: maxBatchURLs,
		log:      logging.Component(logger, "api"),
	}
}

func (s *Server) tempDir() string {
	return s.tempRoot
}

// Router builds the chi mux: request id, structured request logging,
// panic recovery, permissive CORS for the SPA, and a per-IP rate limit
// on the four POST endpoints (analyze, subtitles, cut, batch).
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Content-Type"},
		MaxAge:           300,
		AllowCredentials: false,
	}))

	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(20, time.Minute))
		r.Post("/api/analyze", s.handleAnalyze)
		r.Post("/api/subtitles", s.handleSubtitles)
		r.Post("/api/cut", s.handleCut)
		r.Post("/api/batch", s.handleBatch)
	})

	r.Get("/api/jobs/{id}/progress", s.handleJobProgress)
	r.Get("/api/jobs/{id}", s.handleJobGet)
	r.Get("/api/batch/{id}/progress", s.handleBatchProgress)
	r.Get("/output/{filename}", s.handleOutput)

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("reqId", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
