package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"bovespacli/internal/bars"
	"bovespacli/internal/calendar"
	apperrors "bovespacli/internal/errors"
	"bovespacli/internal/factors"
	"bovespacli/internal/records"
	"bovespacli/pkg/contracts/domain"
)

// BarsStep aggregates each symbol's tick days into bars of the output resolution
type BarsStep struct {
	BaseStep
	env *Env
}

// NewBarsStep creates the bar aggregation step
func NewBarsStep(env *Env) *BarsStep {
	return &BarsStep{BaseStep: NewBaseStep(StepIDBars, StepNameBars, StepIDIngest, StepIDCalendar), env: env}
}

func (s *BarsStep) Execute(ctx context.Context, state *OperationState) error {
	env := s.env
	stepState := state.GetStage(s.ID())

	if !env.fromTicks() {
		env.Logger.InfoContext(ctx, "Daily input, no ticks to aggregate")
		stepState.SetMetadata(MetaInstruments, 0)
		return nil
	}

	symbols, err := env.Discovery.FindSymbolDirs(env.Paths.TickDir)
	if err != nil {
		return apperrors.NewMissingInputError(env.Paths.TickDir, err)
	}
	cal := calendarFrom(state)

	var emitted atomic.Int64
	res, err := env.batch(s.ID(), apperrors.CategoryBars).Run(ctx, env.inScope(symbols), func(ctx context.Context, sym string) error {
		n, err := s.aggregate(ctx, cal, sym)
		emitted.Add(int64(n))
		return err
	})
	if err != nil {
		return err
	}

	stepState.SetMetadata(MetaInstruments, res.Total)
	stepState.SetMetadata(MetaFailed, res.Failed)
	stepState.SetMetadata("bars", emitted.Load())
	return nil
}

// aggregate writes one bar file per tick day of sym and returns the number of bars
func (s *BarsStep) aggregate(ctx context.Context, cal *calendar.Calendar, sym string) (int, error) {
	env := s.env
	res := env.resolution()

	days, err := env.Discovery.FindDayFiles(env.Paths.GetTickDir(sym), env.Config.Pipeline.InputDataType)
	if err != nil {
		return 0, apperrors.NewMissingInputError(env.Paths.GetTickDir(sym), err)
	}
	outDir := env.Paths.GetBarsDir(string(res), sym)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return 0, apperrors.NewStorageError("failed to create bar directory", err)
	}

	emitted := 0
	for _, day := range days {
		if err := ctx.Err(); err != nil {
			return emitted, err
		}
		if !env.inRange(day.Date) {
			continue
		}
		if cal != nil && withinCalendar(cal, day.Date) && !cal.IsTradingDay(day.Date) {
			env.logIssue(ctx, apperrors.CategoryBars, sym, fmt.Errorf("%s is not a trading day, skipped", day.Name))
			continue
		}

		ticks, rejects, err := records.ReadTicks(day.Path)
		if err != nil {
			return emitted, err
		}
		for _, r := range rejects {
			env.logIssue(ctx, apperrors.CategoryRecords, sym, r)
		}
		env.Metrics.RecordRejected(ctx, s.ID(), len(rejects))

		out, err := bars.Aggregate(ticks, res)
		if errors.Is(err, bars.ErrUnorderedTicks) {
			env.logIssue(ctx, apperrors.CategoryBars, sym, fmt.Errorf("%s: %w, sorted by time", day.Name, err))
			out = bars.AggregateSorted(ticks, res)
		}
		if len(out) == 0 {
			continue
		}

		path := filepath.Join(outDir, bars.FileName(env.Sink, sym, day.Date))
		if err := env.Sink.Save(path, bars.Day{Symbol: sym, Date: day.Date, Bars: out}); err != nil {
			return emitted, err
		}
		emitted += len(out)
		env.Metrics.BarsEmitted.Add(ctx, int64(len(out)), metric.WithAttributes(attribute.String("resolution", string(res))))
		env.Metrics.FilesWritten.Add(ctx, 1, metric.WithAttributes(attribute.String("step", s.ID())))
	}
	return emitted, nil
}

// withinCalendar is false for dates the holiday list does not cover
func withinCalendar(cal *calendar.Calendar, d time.Time) bool {
	return cal.Len() > 0 && !d.Before(cal.First()) && !d.After(cal.Last())
}

// ExportStep writes the factor-adjusted series of every current symbol. A
// symbol's map file names the predecessor histories stitched in front of
// its own.
type ExportStep struct {
	BaseStep
	env *Env
}

// NewExportStep creates the export step
func NewExportStep(env *Env) *ExportStep {
	return &ExportStep{BaseStep: NewBaseStep(StepIDExport, StepNameExport, StepIDMapFiles, StepIDFactorFiles, StepIDBars), env: env}
}

func (s *ExportStep) Execute(ctx context.Context, state *OperationState) error {
	env := s.env
	stepState := state.GetStage(s.ID())

	var (
		symbols []string
		err     error
	)
	if env.resolution().Intraday() || env.fromTicks() {
		symbols, err = env.Discovery.FindSymbolDirs(filepath.Join(env.Paths.BarsRootDir, string(env.resolution())))
	} else {
		symbols, err = env.Discovery.FindSymbols(env.Paths.DailyDir)
	}
	if err != nil {
		env.Logger.WarnContext(ctx, "Nothing to export", slog.String("error", err.Error()))
		stepState.SetMetadata(MetaFiles, 0)
		return nil
	}

	var current []string
	for _, sym := range env.inScope(symbols) {
		if !env.isPredecessor(sym) {
			current = append(current, sym)
		}
	}

	res, err := env.batch(s.ID(), apperrors.CategoryExport).Run(ctx, current, func(ctx context.Context, sym string) error {
		path, err := s.export(ctx, sym)
		if err != nil {
			return err
		}
		env.Metrics.FilesWritten.Add(ctx, 1, metric.WithAttributes(attribute.String("step", s.ID())))
		env.Logger.DebugContext(ctx, "Adjusted series exported", slog.String("symbol", sym), slog.String("file", path))
		return nil
	})
	if err != nil {
		return err
	}

	stepState.SetMetadata(MetaFiles, res.Total-res.Failed)
	stepState.SetMetadata(MetaFailed, res.Failed)
	return nil
}

func (s *ExportStep) export(ctx context.Context, sym string) (string, error) {
	env := s.env
	points, err := factors.ReadOrIdentity(env.Paths.GetFactorFilePath(sym))
	if err != nil {
		return "", err
	}
	rows, err := env.readMap(sym)
	if err != nil {
		return "", err
	}

	res := env.resolution()
	if res.Intraday() || env.fromTicks() {
		days, err := s.stitchBars(ctx, sym, rows)
		if err != nil {
			return "", err
		}
		return env.Exporter.ExportBars(sym, res, days, points)
	}

	recs, err := s.stitchDaily(ctx, sym, rows)
	if err != nil {
		return "", err
	}
	return env.Exporter.ExportDaily(sym, recs, points)
}

func (s *ExportStep) stitchDaily(ctx context.Context, sym string, rows []domain.MapSegment) ([]domain.DailyRecord, error) {
	env := s.env
	var (
		out []domain.DailyRecord
		h   handover
	)
	for i, m := range members(sym, rows) {
		recs, rejects, err := records.ReadDaily(env.Paths.GetDailyPath(m))
		if err != nil {
			if i == 0 {
				return nil, err
			}
			env.logIssue(ctx, apperrors.CategoryExport, sym, err)
			continue
		}
		for _, r := range rejects {
			env.logIssue(ctx, apperrors.CategoryRecords, m, r)
		}
		for _, r := range recs {
			if env.inRange(r.Date) && h.takes(i, r.Date) {
				out = append(out, r)
			}
		}
		h.done()
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *ExportStep) stitchBars(ctx context.Context, sym string, rows []domain.MapSegment) ([]bars.Day, error) {
	env := s.env
	res := string(env.resolution())
	var (
		out []bars.Day
		h   handover
	)
	for i, m := range members(sym, rows) {
		found, err := env.Discovery.FindFiles(env.Paths.GetBarsDir(res, m), "."+env.Sink.Extension())
		if err != nil {
			if i == 0 {
				return nil, apperrors.NewMissingInputError(env.Paths.GetBarsDir(res, m), err)
			}
			continue
		}
		for _, f := range found {
			day, err := env.Sink.Load(f.Path)
			if err != nil {
				env.logIssue(ctx, apperrors.CategoryExport, sym, err)
				continue
			}
			if env.inRange(day.Date) && h.takes(i, day.Date) {
				day.Symbol = sym
				out = append(out, day)
			}
		}
		h.done()
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
