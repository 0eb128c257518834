package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"bovespacli/internal/infrastructure"
	custommw "bovespacli/internal/middleware"
)

// RouterConfig carries the dependencies of the query router
type RouterConfig struct {
	Query     QueryService
	Health    HealthService
	Providers *infrastructure.OTelProviders
	Logger    *slog.Logger

	// RateLimitRPS of zero disables the limiter
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter builds the query API router.
// Middleware order: RequestID, RealIP, OTel, Logger, Recoverer, RateLimiter.
func NewRouter(cfg RouterConfig) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.StripSlashes)

	if cfg.Providers != nil {
		otelMiddleware, err := custommw.NewOTelMiddleware(cfg.Providers)
		if err != nil {
			logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}
	}

	r.Use(custommw.StructuredLogger(logger))
	r.Use(custommw.Recoverer(logger))

	if cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		r.Use(custommw.NewRateLimiter(cfg.RateLimitRPS, burst, logger).Handler)
	}

	r.NotFound(custommw.NotFound)
	r.MethodNotAllowed(custommw.MethodNotAllowed)

	if cfg.Health != nil {
		health := NewHealthHandler(cfg.Health, logger)
		r.Get("/healthz", health.HealthCheck)
		r.Get("/version", health.Version)
	}

	if cfg.Query != nil {
		r.Mount("/api/v1", NewQueryHandler(cfg.Query, logger).Routes())
	}

	if cfg.Providers != nil && cfg.Providers.PrometheusHTTP != nil {
		r.Handle("/metrics", cfg.Providers.PrometheusHTTP)
	}

	return r
}
