// Package server exposes extraction, comparison, analysis and run history
// over HTTP.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/sells-group/review-cli/internal/config"
	"github.com/sells-group/review-cli/internal/metrics"
	"github.com/sells-group/review-cli/internal/pipeline"
	"github.com/sells-group/review-cli/internal/store"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Server routes HTTP requests to the pipeline and the run store.
type Server struct {
	pipeline  *pipeline.Pipeline
	store     store.Store
	maxUpload int64
	router    chi.Router
}

// New builds the router. A nil store disables the /runs endpoints.
func New(p *pipeline.Pipeline, st store.Store, cfg config.ServerConfig) *Server {
	s := &Server{
		pipeline:  p,
		store:     st,
		maxUpload: int64(cfg.MaxUploadMB) << 20,
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(jsonRecoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Disposition", "X-Extract-Failures", "X-Run-ID", "X-Comparison-Warning"},
		MaxAge:         300,
	}))
	r.Use(metrics.Middleware())

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	limiter := rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Burst)
	r.Group(func(r chi.Router) {
		r.Use(rateLimit(limiter))
		r.Post("/extract", s.handleExtract)
		r.Post("/compare", s.handleCompare)
		r.Post("/analyze", s.handleAnalyze)
	})

	r.Route("/runs", func(r chi.Router) {
		r.Get("/", s.handleListRuns)
		r.Get("/{id}", s.handleGetRun)
		r.Get("/{id}/records", s.handleGetRecords)
	})

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}
