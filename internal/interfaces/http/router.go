// Package http mounts the coverage API on a chi router.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/coverage-intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/coverage-intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/coverage-intelligence/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and middleware settings of the
// route tree.  Nil handlers leave their routes unmounted.
type RouterConfig struct {
	CoverageHandler *handlers.CoverageHandler
	HealthHandler   *handlers.HealthHandler

	Logger         logging.Logger
	Logging        middleware.LoggingConfig
	CORSOrigins    []string
	RateLimit      int
	RateLimitEvery time.Duration
	// Recorder receives per-route metrics when set.
	Recorder       middleware.HTTPRecorder
	MetricsHandler http.Handler
	MetricsPath    string
}

// NewRouter constructs the complete HTTP route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Logging))
	if cfg.Recorder != nil {
		r.Use(middleware.Metrics(cfg.Recorder))
	}
	if len(cfg.CORSOrigins) > 0 {
		r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		if cfg.RateLimit > 0 && cfg.RateLimitEvery > 0 {
			api.Use(middleware.RateLimit(cfg.RateLimit, cfg.RateLimitEvery))
		}
		registerCoverageRoutes(api, cfg.CoverageHandler)
	})

	return r
}

func registerCoverageRoutes(r chi.Router, h *handlers.CoverageHandler) {
	if h == nil {
		return
	}
	r.Get("/platforms", h.ListPlatforms)
	r.Route("/platforms/{"+handlers.ParamPlatformID+"}", func(pr chi.Router) {
		pr.Get("/coverage", h.GetGlobalCoverage)
		pr.Get("/countries", h.ListCountries)
		pr.Get("/countries/{"+handlers.ParamCountryID+"}", h.GetCountryDetails)
		pr.Get("/countries/{"+handlers.ParamCountryID+"}/score", h.GetCountryScore)
		pr.Get("/languages", h.GetLanguageStats)
		pr.Get("/recommendations", h.GetRecommendations)
		pr.Delete("/cache", h.InvalidatePlatformCache)
	})
	r.Delete("/cache", h.InvalidateAllCache)
}
