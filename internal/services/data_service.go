package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"bovespacli/internal/calendar"
	"bovespacli/internal/config"
	apperrors "bovespacli/internal/errors"
	"bovespacli/internal/factors"
	"bovespacli/internal/instruments"
	"bovespacli/internal/mapfile"
	"bovespacli/internal/operations"
	"bovespacli/pkg/contracts/domain"
)

// DataService reads pipeline outputs
type DataService struct {
	paths    *config.Paths
	registry *instruments.Registry
	cache    *cache.Cache
	logger   *slog.Logger
}

// cached is a parsed file together with the mtime it was parsed at
type cached struct {
	modTime time.Time
	value   interface{}
}

// NewDataService creates a data service. ttl bounds how long a parsed file
// stays cached; zero keeps entries until their file changes.
func NewDataService(paths *config.Paths, registry *instruments.Registry, ttl time.Duration, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = instruments.NewRegistry(nil)
	}
	expiry := ttl
	if expiry <= 0 {
		expiry = cache.NoExpiration
	}
	logger.Info("DataService initialized",
		slog.String("map_files_dir", paths.MapFilesDir),
		slog.String("factor_files_dir", paths.FactorFilesDir),
		slog.Int("instruments", registry.Len()))

	return &DataService{
		paths:    paths,
		registry: registry,
		cache:    cache.New(expiry, 2*expiry),
		logger:   logger.With(slog.String("service", "data")),
	}
}

// Instruments returns the registered instruments of a type, all when typ is empty
func (ds *DataService) Instruments(typ domain.InstrumentType) []domain.Instrument {
	symbols := ds.registry.Symbols(typ)
	out := make([]domain.Instrument, 0, len(symbols))
	for _, s := range symbols {
		inst, _ := ds.registry.Lookup(s)
		out = append(out, inst)
	}
	return out
}

// MapFile returns the map rows of symbol
func (ds *DataService) MapFile(ctx context.Context, symbol string) ([]domain.MapSegment, error) {
	v, err := ds.load(ctx, ds.paths.GetMapFilePath(symbol), "map file for "+strings.ToUpper(symbol), func(path string) (interface{}, error) {
		return mapfile.Read(path)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.MapSegment), nil
}

// Resolve returns the ticker symbol traded under on date
func (ds *DataService) Resolve(ctx context.Context, symbol string, date time.Time) (string, error) {
	rows, err := ds.MapFile(ctx, symbol)
	if err != nil {
		return "", err
	}
	sym, ok := mapfile.Resolve(rows, date)
	if !ok {
		return "", apperrors.NewNotFoundError("map rows for " + strings.ToUpper(symbol))
	}
	return sym, nil
}

// Factors returns the factor series of symbol
func (ds *DataService) Factors(ctx context.Context, symbol string) ([]domain.FactorPoint, error) {
	v, err := ds.load(ctx, ds.paths.GetFactorFilePath(symbol), "factor file for "+strings.ToUpper(symbol), func(path string) (interface{}, error) {
		return factors.Read(path)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.FactorPoint), nil
}

// FactorAt returns the factor point in force on date
func (ds *DataService) FactorAt(ctx context.Context, symbol string, date time.Time) (domain.FactorPoint, error) {
	points, err := ds.Factors(ctx, symbol)
	if err != nil {
		return domain.FactorPoint{}, err
	}
	return factors.Lookup(points, date), nil
}

// TradingDays returns the trading days in [from, to]. Zero bounds default
// to the ends of the calendar.
func (ds *DataService) TradingDays(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	path := ds.paths.CalendarFile
	if !config.FileExists(path) {
		path = ds.paths.HolidaysFile
	}
	v, err := ds.load(ctx, path, "trading calendar", func(path string) (interface{}, error) {
		cal, _, err := calendar.Load(path)
		return cal, err
	})
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrTypeNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrNoCalendar, err)
		}
		return nil, err
	}
	cal := v.(*calendar.Calendar)
	if cal.Len() == 0 {
		return nil, nil
	}
	if from.IsZero() {
		from = cal.First()
	}
	if to.IsZero() {
		to = cal.Last()
	}
	return cal.Between(from, to), nil
}

// LatestRun returns the manifest of the most recent pipeline run
func (ds *DataService) LatestRun(ctx context.Context) (*operations.RunManifest, error) {
	v, err := ds.load(ctx, ds.paths.ManifestFile, "run manifest", func(path string) (interface{}, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, apperrors.NewMissingInputError(path, err)
		}
		var m operations.RunManifest
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, apperrors.NewMalformedRecordError(path, "invalid run manifest", err)
		}
		return &m, nil
	})
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrTypeNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrNoRun, err)
		}
		return nil, err
	}
	return v.(*operations.RunManifest), nil
}

// load returns the parsed file at path, parsing again when its mtime changed.
// A missing file is a NotFound error naming what.
func (ds *DataService) load(ctx context.Context, path, what string, parse func(string) (interface{}, error)) (interface{}, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			ds.cache.Delete(path)
			return nil, apperrors.NewNotFoundError(what)
		}
		return nil, apperrors.NewStorageError("failed to stat "+what, err)
	}

	if v, ok := ds.cache.Get(path); ok {
		if c := v.(cached); c.modTime.Equal(info.ModTime()) {
			return c.value, nil
		}
	}

	value, err := parse(path)
	if err != nil {
		ds.logger.WarnContext(ctx, "failed to parse output file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return nil, err
	}
	ds.cache.SetDefault(path, cached{modTime: info.ModTime(), value: value})
	ds.logger.DebugContext(ctx, "output file loaded", slog.String("file", path))
	return value, nil
}
