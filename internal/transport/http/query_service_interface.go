package http

import (
	"context"
	"time"

	"bovespacli/internal/operations"
	"bovespacli/internal/services"
	"bovespacli/pkg/contracts"
	"bovespacli/pkg/contracts/domain"
)

// QueryService defines the read operations the query handlers need
type QueryService interface {
	Instruments(typ domain.InstrumentType) []domain.Instrument
	MapFile(ctx context.Context, symbol string) ([]domain.MapSegment, error)
	Resolve(ctx context.Context, symbol string, date time.Time) (string, error)
	Factors(ctx context.Context, symbol string) ([]domain.FactorPoint, error)
	FactorAt(ctx context.Context, symbol string, date time.Time) (domain.FactorPoint, error)
	TradingDays(ctx context.Context, from, to time.Time) ([]time.Time, error)
	LatestRun(ctx context.Context) (*operations.RunManifest, error)
}

// HealthService defines the health operations
type HealthService interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	Version() contracts.VersionInfo
}

var (
	_ QueryService  = (*services.DataService)(nil)
	_ HealthService = (*services.HealthService)(nil)
)
