package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bovespacli/internal/config"
	apperrors "bovespacli/internal/errors"
	"bovespacli/internal/infrastructure"
	"bovespacli/internal/instruments"
	"bovespacli/internal/services"
	handlers "bovespacli/internal/transport/http"
	"bovespacli/pkg/contracts"
)

// Application represents the query server container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	DataService   *services.DataService
	HealthService *services.HealthService
	OTelProviders *infrastructure.OTelProviders
	Logger        *slog.Logger

	serverErr chan error
}

// NewApplication creates the query server from a loaded configuration
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Application starting",
		slog.String("version", contracts.Version),
		slog.String("data_format", contracts.DataFormatVersion))

	paths := config.NewPaths(cfg)
	paths.LogPathResolution()

	providers, err := infrastructure.InitializeOTel(cfg.Metrics, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Paths:         paths,
		OTelProviders: providers,
		Logger:        logger,
		serverErr:     make(chan error, 1),
	}

	if err := a.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	a.Router = handlers.NewRouter(handlers.RouterConfig{
		Query:          a.DataService,
		Health:         a.HealthService,
		Providers:      providers,
		Logger:         logger,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
	})

	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return a, nil
}

// initializeServices builds the read services. The registry is optional:
// without it the instrument listing is empty while files still resolve.
func (a *Application) initializeServices() error {
	registry, rejects, err := instruments.Load(a.Paths.InstrumentsFile)
	switch {
	case apperrors.IsType(err, apperrors.ErrTypeMissingInput):
		a.Logger.Warn("Instrument registry not found",
			slog.String("path", a.Paths.InstrumentsFile))
		registry = instruments.NewRegistry(nil)
	case err != nil:
		return err
	}
	if len(rejects) > 0 {
		a.Logger.Warn("Instrument registry has invalid lines", slog.Int("rejected", len(rejects)))
	}

	a.DataService = services.NewDataService(a.Paths, registry, a.Config.Server.CacheTTL, a.Logger)
	a.HealthService = services.NewHealthService(a.Paths, a.Logger)
	return nil
}

// Start begins serving in the background
func (a *Application) Start(ctx context.Context) {
	a.Logger.InfoContext(ctx, "Starting query server",
		slog.String("address", a.Server.Addr))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			a.serverErr <- err
		}
		close(a.serverErr)
	}()
}

// Stop gracefully stops the server and flushes telemetry
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down query server")

	timeout := a.Config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Query server shutdown complete")
	return nil
}

// Run serves until ctx is cancelled or the listener fails
func (a *Application) Run(ctx context.Context) error {
	a.Start(ctx)

	select {
	case <-ctx.Done():
		return a.Stop(ctx)
	case err, ok := <-a.serverErr:
		if ok && err != nil {
			_ = a.Stop(ctx)
			return fmt.Errorf("query server failed: %w", err)
		}
		return nil
	}
}
