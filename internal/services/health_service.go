package services

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"bovespacli/internal/config"
	"bovespacli/pkg/contracts"
)

// HealthService reports process and output tree health
type HealthService struct {
	paths     *config.Paths
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Uptime    string                   `json:"uptime"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Checks    map[string]ServiceHealth `json:"checks,omitempty"`
}

// ServiceHealth represents one check
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health status values
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// NewHealthService creates a health service
func NewHealthService(paths *config.Paths, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		paths:     paths,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// HealthCheck reports healthy when every output directory is readable.
// Missing outputs degrade the status; the process itself stays live.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	checks := map[string]ServiceHealth{
		"map_files":    dirHealth(hs.paths.MapFilesDir),
		"factor_files": dirHealth(hs.paths.FactorFilesDir),
	}
	if config.FileExists(hs.paths.ManifestFile) {
		checks["last_run"] = ServiceHealth{Status: StatusHealthy}
	} else {
		checks["last_run"] = ServiceHealth{Status: StatusDegraded, Message: "no run manifest"}
	}

	status := StatusHealthy
	for name, c := range checks {
		if c.Status != StatusHealthy {
			status = StatusDegraded
			hs.logger.DebugContext(ctx, "health check degraded",
				slog.String("check", name),
				slog.String("message", c.Message))
		}
	}

	return HealthStatus{
		Status:    status,
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Uptime:    time.Since(hs.startTime).Round(time.Second).String(),
		Runtime: map[string]interface{}{
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
		Checks: checks,
	}
}

// Version returns build information
func (hs *HealthService) Version() contracts.VersionInfo {
	return contracts.GetVersionInfo()
}

func dirHealth(dir string) ServiceHealth {
	info, err := os.Stat(dir)
	if err != nil {
		return ServiceHealth{Status: StatusDegraded, Message: "directory missing"}
	}
	if !info.IsDir() {
		return ServiceHealth{Status: StatusDegraded, Message: "not a directory"}
	}
	return ServiceHealth{Status: StatusHealthy}
}
