package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bovespacli/internal/bars"
	"bovespacli/internal/config"
	apperrors "bovespacli/internal/errors"
	"bovespacli/internal/events"
	"bovespacli/internal/exporter"
	"bovespacli/internal/factors"
	"bovespacli/internal/files"
	"bovespacli/internal/infrastructure"
	"bovespacli/internal/instruments"
	"bovespacli/internal/mapfile"
	"bovespacli/internal/validation"
	"bovespacli/pkg/contracts/domain"
)

// Env holds the collaborators every step of one run shares. It is built once
// before the run and read-only afterwards; the error log is the only shared
// mutable sink.
type Env struct {
	Config    *config.Config
	Paths     *config.Paths
	Registry  *instruments.Registry
	Issuers   *events.Issuers
	Renames   mapfile.Renames
	Events    events.Source
	Factors   *factors.Builder
	Sink      bars.Sink
	Exporter  *exporter.Exporter
	Discovery *files.Discovery
	Validator *validation.FileValidator
	ErrLog    *apperrors.ErrorLog
	Metrics   *infrastructure.PipelineMetrics
	Clock     mapfile.Clock
	Logger    *slog.Logger
}

// NewEnv validates prerequisites and loads the run-wide inputs. Any error is
// fatal: nothing has been written except the output directories.
func NewEnv(cfg *config.Config, logger *slog.Logger) (*Env, error) {
	if logger == nil {
		logger = slog.Default()
	}
	paths := config.NewPaths(cfg)
	paths.LogPathResolution()

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateRequiredFile(paths.InstrumentsFile, "instrument list"); err != nil {
		return nil, err
	}
	if err := validator.ValidateOutputDirectory(paths.OutputDir); err != nil {
		return nil, err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, apperrors.NewConfigError("failed to create output directories", err)
	}

	errLog := apperrors.NewErrorLog(paths.ErrorLogFile)

	registry, rejects, err := instruments.Load(paths.InstrumentsFile)
	if err != nil {
		return nil, NewFatalError("failed to load instrument list", err)
	}
	for _, r := range rejects {
		if lerr := errLog.Append(apperrors.CategoryRecords, "instruments", r); lerr != nil {
			return nil, apperrors.NewStorageError("failed to write error log", lerr)
		}
	}
	logger.Info("Instrument registry loaded",
		slog.Int("instruments", registry.Len()),
		slog.Int("rejected", len(rejects)))

	issuers := events.NewIssuers(nil)
	if validator.ValidateOptionalFile(paths.IssuersFile, "issuer table") {
		if issuers, err = events.LoadIssuers(paths.IssuersFile); err != nil {
			return nil, NewFatalError("failed to load issuer table", err)
		}
	}

	renames := mapfile.Renames{}
	if validator.ValidateOptionalFile(paths.RenamesFile, "rename table") {
		if renames, err = mapfile.LoadRenames(paths.RenamesFile); err != nil {
			return nil, NewFatalError("failed to load rename table", err)
		}
	}

	source, err := events.NewSource(cfg.Events, paths, logger)
	if err != nil {
		return nil, err
	}
	builder, err := factors.NewBuilder(cfg.Pipeline.RatioOverrides, errLog, logger)
	if err != nil {
		return nil, err
	}
	sink, err := bars.NewSink(cfg.Pipeline.BarFormat)
	if err != nil {
		return nil, err
	}
	locale, err := exporter.ParseLocale(cfg.Pipeline.Locale)
	if err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("unsupported locale %q", cfg.Pipeline.Locale), err)
	}
	exp, err := exporter.New(paths, locale, cfg.Pipeline.ExportFormat, logger)
	if err != nil {
		return nil, err
	}

	return &Env{
		Config:    cfg,
		Paths:     paths,
		Registry:  registry,
		Issuers:   issuers,
		Renames:   renames,
		Events:    source,
		Factors:   builder,
		Sink:      sink,
		Exporter:  exp,
		Discovery: files.NewDiscovery(""),
		Validator: validator,
		ErrLog:    errLog,
		Metrics:   infrastructure.NoopPipelineMetrics(),
		Clock:     mapfile.SystemClock{},
		Logger:    logger,
	}, nil
}

func (e *Env) batch(step, category string) Batch {
	return Batch{
		Step:     step,
		Category: category,
		Workers:  e.Config.Pipeline.Workers,
		ErrLog:   e.ErrLog,
		Metrics:  e.Metrics,
		Logger:   infrastructure.WithComponent(e.Logger, step),
	}
}

// logIssue appends a non-fatal problem to the error log. A failed append is
// reported on the run logger and otherwise ignored.
func (e *Env) logIssue(ctx context.Context, category, source string, err error) {
	if lerr := e.ErrLog.Append(category, source, err); lerr != nil {
		infrastructure.WithError(e.Logger, lerr).ErrorContext(ctx, "error log append failed",
			slog.String("category", category),
			slog.String("source", source))
	}
}

// inScope keeps the registered symbols of the configured security type,
// narrowed to the configured instrument list
func (e *Env) inScope(symbols []string) []string {
	typ := domain.InstrumentType(e.Config.Pipeline.SecurityType)
	return instruments.Filter(e.Registry.InScope(symbols, typ), e.Config.Pipeline.InstrumentList)
}

// inRange reports whether d falls in the configured date range
func (e *Env) inRange(d time.Time) bool {
	start, end, _ := e.Config.Pipeline.DateRange()
	if !start.IsZero() && d.Before(start) {
		return false
	}
	if !end.IsZero() && d.After(end) {
		return false
	}
	return true
}

func (e *Env) resolution() domain.Resolution {
	return domain.Resolution(e.Config.Pipeline.OutputResolution)
}

// fromTicks is true when bars are built from tick files rather than daily records
func (e *Env) fromTicks() bool {
	return e.Config.Pipeline.InputDataType != "daily"
}

// isPredecessor reports whether symbol was replaced by another symbol
func (e *Env) isPredecessor(symbol string) bool {
	for _, preds := range e.Renames {
		for _, p := range preds {
			if p == symbol {
				return true
			}
		}
	}
	return false
}
