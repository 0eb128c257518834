package operations

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"bovespacli/internal/calendar"
	apperrors "bovespacli/internal/errors"
	"bovespacli/internal/factors"
	"bovespacli/internal/mapfile"
	"bovespacli/internal/records"
	"bovespacli/pkg/contracts/domain"
)

// DefaultSteps returns the pipeline steps in registration order. Rename
// detection is only included when the configuration asks for it.
func DefaultSteps(env *Env) []Step {
	steps := []Step{
		NewIngestStep(env),
		NewCalendarStep(env),
		NewMapFilesStep(env),
		NewFactorFilesStep(env),
		NewBarsStep(env),
		NewExportStep(env),
	}
	if env.Config.Pipeline.DetectRenames {
		steps = append(steps, NewRenamesStep(env))
	}
	return steps
}

// RegisterDefaultSteps registers every pipeline step
func RegisterDefaultSteps(r *Registry, env *Env) error {
	for _, s := range DefaultSteps(env) {
		if err := r.Register(s); err != nil {
			return err
		}
	}
	return nil
}

// CalendarStep loads the holiday list, derives the trading calendar and
// writes the normalized holiday file. A missing or empty list is fatal.
type CalendarStep struct {
	BaseStep
	env *Env
}

// NewCalendarStep creates the calendar step
func NewCalendarStep(env *Env) *CalendarStep {
	return &CalendarStep{BaseStep: NewBaseStep(StepIDCalendar, StepNameCalendar), env: env}
}

func (s *CalendarStep) Execute(ctx context.Context, state *OperationState) error {
	env := s.env
	holidays, err := calendar.LoadHolidays(env.Paths.HolidaysFile)
	if err != nil {
		return NewFatalError("trading calendar unavailable", err)
	}
	if len(holidays) == 0 {
		return NewFatalError("trading calendar unavailable", fmt.Errorf("holiday file %s is empty", env.Paths.HolidaysFile))
	}

	var cal *calendar.Calendar
	start, end, _ := env.Config.Pipeline.DateRange()
	if !start.IsZero() && !end.IsZero() {
		cal = calendar.NewBounded(holidays, start, end)
	} else if cal, err = calendar.New(holidays); err != nil {
		return NewFatalError("trading calendar unavailable", err)
	}

	if err := calendar.WriteHolidayFile(env.Paths.CalendarFile, holidays); err != nil {
		return err
	}

	state.SetContext(ContextKeyCalendar, cal)
	stepState := state.GetStage(s.ID())
	stepState.SetMetadata("trading_days", cal.Len())
	stepState.SetMetadata("holidays", len(holidays))

	env.Logger.InfoContext(ctx, "Trading calendar ready",
		slog.Int("trading_days", cal.Len()),
		slog.String("first", cal.First().Format(domain.DateLayout)),
		slog.String("last", cal.Last().Format(domain.DateLayout)))
	return nil
}

// calendarFrom returns the calendar loaded earlier in the run, if any
func calendarFrom(state *OperationState) *calendar.Calendar {
	v, ok := state.GetContext(ContextKeyCalendar)
	if !ok {
		return nil
	}
	cal, _ := v.(*calendar.Calendar)
	return cal
}

// MapFilesStep rebuilds every map file from the daily store and the rename table
type MapFilesStep struct {
	BaseStep
	env *Env
}

// NewMapFilesStep creates the map file step
func NewMapFilesStep(env *Env) *MapFilesStep {
	return &MapFilesStep{BaseStep: NewBaseStep(StepIDMapFiles, StepNameMapFiles, StepIDIngest), env: env}
}

func (s *MapFilesStep) Validate(state *OperationState) error {
	if s.env.Config.Pipeline.SecurityType == string(domain.InstrumentTypeFuture) {
		return NewValidationError(s.ID(), calendar.ErrFuturesNotImplemented.Error())
	}
	return nil
}

func (s *MapFilesStep) Execute(ctx context.Context, state *OperationState) error {
	env := s.env
	stepState := state.GetStage(s.ID())

	available, err := env.Discovery.FindSymbols(env.Paths.DailyDir)
	if err != nil {
		env.Logger.WarnContext(ctx, "No daily store, map files not rebuilt", slog.String("dir", env.Paths.DailyDir))
		stepState.SetMetadata(MetaInstruments, 0)
		return nil
	}
	scope := env.inScope(available)

	// current symbols plus the predecessors they absorb
	renames := make(mapfile.Renames)
	wanted := make(map[string]bool, len(scope))
	for _, sym := range scope {
		wanted[sym] = true
		if preds := env.Renames[sym]; len(preds) > 0 {
			renames[sym] = preds
			for _, p := range preds {
				wanted[p] = true
			}
		}
	}
	have := make(map[string]bool, len(available))
	for _, sym := range available {
		have[sym] = true
	}
	var load []string
	for _, sym := range sortedKeys(wanted) {
		if have[sym] {
			load = append(load, sym)
		}
	}

	var mu sync.Mutex
	histories := make(map[string]mapfile.History, len(load))
	res, err := env.batch(s.ID(), apperrors.CategoryMapFiles).Run(ctx, load, func(ctx context.Context, sym string) error {
		recs, rejects, err := records.ReadDaily(env.Paths.GetDailyPath(sym))
		if err != nil {
			return err
		}
		for _, r := range rejects {
			env.logIssue(ctx, apperrors.CategoryRecords, sym, r)
		}
		env.Metrics.RecordRejected(ctx, s.ID(), len(rejects))
		h, ok := mapfile.HistoryOf(recs)
		if !ok {
			return apperrors.NewMissingInputError(env.Paths.GetDailyPath(sym), errors.New("no daily records"))
		}
		mu.Lock()
		histories[sym] = h
		mu.Unlock()
		return nil
	})
	if err != nil {
		return err
	}

	result := mapfile.Build(histories, renames, mapfile.Options{
		Clock:        env.Clock,
		Sentinel:     env.Config.Pipeline.Sentinel(),
		ActiveWindow: env.Config.Pipeline.ActiveWindow,
	})
	for _, issue := range result.Issues {
		env.logIssue(ctx, apperrors.CategoryMapFiles, "mapfiles", issue)
	}

	if err := mapfile.WriteAll(env.Paths.MapFilesDir, result.Files); err != nil {
		return err
	}

	stepState.SetMetadata(MetaInstruments, len(result.Files))
	stepState.SetMetadata(MetaFailed, res.Failed)
	stepState.SetMetadata("removed", len(result.Removed))
	env.Logger.InfoContext(ctx, "Map files written",
		slog.Int("files", len(result.Files)),
		slog.Int("removed_predecessors", len(result.Removed)),
		slog.Int("issues", len(result.Issues)))
	return nil
}

// RenamesStep proposes rename pairs from the daily store and writes them in
// the rename table format next to the other run outputs. It never edits the
// rename table itself.
type RenamesStep struct {
	BaseStep
	env *Env
}

// NewRenamesStep creates the rename detection step
func NewRenamesStep(env *Env) *RenamesStep {
	return &RenamesStep{BaseStep: NewBaseStep(StepIDRenames, StepNameRenames, StepIDIngest, StepIDCalendar), env: env}
}

func (s *RenamesStep) Validate(state *OperationState) error {
	if calendarFrom(state) == nil {
		return NewValidationError(s.ID(), "trading calendar not loaded")
	}
	return nil
}

func (s *RenamesStep) Execute(ctx context.Context, state *OperationState) error {
	env := s.env
	stepState := state.GetStage(s.ID())

	available, err := env.Discovery.FindSymbols(env.Paths.DailyDir)
	if err != nil {
		env.Logger.WarnContext(ctx, "No daily store, renames not detected", slog.String("dir", env.Paths.DailyDir))
		stepState.SetMetadata(MetaInstruments, 0)
		return nil
	}

	var mu sync.Mutex
	dates := make(map[string][]time.Time, len(available))
	res, err := env.batch(s.ID(), apperrors.CategoryMapFiles).Run(ctx, available, func(ctx context.Context, sym string) error {
		// rejects are reported by the map file step
		recs, _, err := records.ReadDaily(env.Paths.GetDailyPath(sym))
		if err != nil {
			return err
		}
		d := make([]time.Time, len(recs))
		for i, r := range recs {
			d[i] = r.Date
		}
		mu.Lock()
		dates[sym] = d
		mu.Unlock()
		return nil
	})
	if err != nil {
		return err
	}

	cands := mapfile.DetectRenames(dates, calendarFrom(state))
	mapfile.MarkKnown(cands, env.Renames)
	if err := mapfile.WriteCandidates(env.Paths.RenameCandidatesFile, cands); err != nil {
		return apperrors.NewStorageError("failed to write rename candidates", err)
	}

	fresh := 0
	for _, c := range cands {
		if c.Known {
			continue
		}
		fresh++
		env.Logger.InfoContext(ctx, "Rename candidate",
			slog.String("symbol", c.Current),
			slog.String("predecessor", c.Predecessor),
			slog.Float64("frequency", c.Frequency))
	}

	stepState.SetMetadata(MetaInstruments, res.Total)
	stepState.SetMetadata(MetaFailed, res.Failed)
	stepState.SetMetadata("candidates", len(cands))
	stepState.SetMetadata("new", fresh)
	return nil
}

// noIssuer groups symbols missing from the issuer table
const noIssuer = "-"

// FactorFilesStep fetches each issuer's events once and writes a factor
// file for every symbol of that issuer. Symbols without an issuer get the
// identity series.
type FactorFilesStep struct {
	BaseStep
	env *Env
}

// NewFactorFilesStep creates the factor file step
func NewFactorFilesStep(env *Env) *FactorFilesStep {
	return &FactorFilesStep{BaseStep: NewBaseStep(StepIDFactorFiles, StepNameFactorFiles, StepIDIngest), env: env}
}

func (s *FactorFilesStep) Execute(ctx context.Context, state *OperationState) error {
	env := s.env
	stepState := state.GetStage(s.ID())

	symbols, err := env.discoverSymbols()
	if err != nil {
		return apperrors.NewMissingInputError(env.sourceDir(), err)
	}

	groups := make(map[string][]string)
	total := 0
	for _, sym := range env.inScope(symbols) {
		if env.isPredecessor(sym) {
			continue
		}
		code, ok := env.Issuers.IssuerOf(sym)
		if !ok {
			code = noIssuer
		}
		groups[code] = append(groups[code], sym)
		total++
	}

	res, err := env.batch(s.ID(), apperrors.CategoryCorpEvents).Run(ctx, sortedKeys(groups), func(ctx context.Context, code string) error {
		var rows domain.EventRows
		if code != noIssuer {
			fetched, err := env.Events.Fetch(ctx, code)
			switch {
			case err == nil:
				rows = fetched
			case ctx.Err() != nil:
				return ctx.Err()
			default:
				// a failed fetch means no events this run
				env.logIssue(ctx, apperrors.CategoryFetch, code, err)
				env.Logger.WarnContext(ctx, "Event fetch failed",
					slog.String("issuer", code),
					slog.String("error", err.Error()))
			}
		}
		for _, sym := range groups[code] {
			points := env.Factors.Build(code, sym, rows)
			if err := factors.Write(env.Paths.GetFactorFilePath(sym), points); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	stepState.SetMetadata(MetaInstruments, total)
	stepState.SetMetadata("issuers", res.Total)
	stepState.SetMetadata(MetaFailed, res.Failed)
	return nil
}

// discoverSymbols lists the symbols present in the input store of this run
func (e *Env) discoverSymbols() ([]string, error) {
	if e.fromTicks() {
		return e.Discovery.FindSymbolDirs(e.Paths.TickDir)
	}
	return e.Discovery.FindSymbols(e.Paths.DailyDir)
}

func (e *Env) sourceDir() string {
	if e.fromTicks() {
		return e.Paths.TickDir
	}
	return e.Paths.DailyDir
}

// readMap returns the map rows of symbol, or nil when it has no map file
func (e *Env) readMap(symbol string) ([]domain.MapSegment, error) {
	rows, err := mapfile.Read(e.Paths.GetMapFilePath(symbol))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return rows, err
}

// members returns symbol followed by the predecessors named in its map,
// most recently retired first
func members(symbol string, rows []domain.MapSegment) []string {
	last := make(map[string]time.Time)
	for _, r := range rows {
		if strings.EqualFold(r.Symbol, symbol) {
			continue
		}
		if r.Date.After(last[r.Symbol]) {
			last[r.Symbol] = r.Date
		}
	}
	preds := sortedKeys(last)
	sort.SliceStable(preds, func(i, j int) bool { return last[preds[i]].After(last[preds[j]]) })
	return append([]string{symbol}, preds...)
}

// handover tracks which dates a stitched series has already taken. The
// current symbol keeps every date it traded; each predecessor only fills the
// dates before the earliest one taken so far. In a merger the surviving
// symbol's own history therefore always wins over the absorbed one.
type handover struct {
	cutoff time.Time
	next   time.Time
}

// takes reports whether member i of the stitch may contribute date d
func (h *handover) takes(i int, d time.Time) bool {
	if i > 0 && !h.cutoff.IsZero() && !d.Before(h.cutoff) {
		return false
	}
	if h.next.IsZero() || d.Before(h.next) {
		h.next = d
	}
	return true
}

// done closes member i and moves the cutoff to the earliest date taken
func (h *handover) done() {
	h.cutoff = h.next
}
