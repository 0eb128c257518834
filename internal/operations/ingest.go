package operations

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"sort"
	"sync"
	"time"

	apperrors "bovespacli/internal/errors"
	"bovespacli/internal/records"
	"bovespacli/pkg/contracts/domain"
)

// IngestStep decodes raw exchange files into the per-symbol stores the other
// steps read: COTAHIST daily quotes into <daily>/<sym>.csv and NEG trade
// files into <tick>/<sym>/<YYYYMMDD>_<type>.csv. Missing raw directories are
// not an error; the stores may have been filled by another tool.
type IngestStep struct {
	BaseStep
	env *Env
}

// NewIngestStep creates the ingest step
func NewIngestStep(env *Env) *IngestStep {
	return &IngestStep{BaseStep: NewBaseStep(StepIDIngest, StepNameIngest), env: env}
}

func (s *IngestStep) Execute(ctx context.Context, state *OperationState) error {
	stepState := state.GetStage(s.ID())

	dailyFiles, dailyRejected, err := s.ingestDaily(ctx)
	if err != nil {
		return err
	}
	tickFiles, tickRejected, err := s.ingestTrades(ctx)
	if err != nil {
		return err
	}

	stepState.SetMetadata(MetaFiles, dailyFiles+tickFiles)
	stepState.SetMetadata(MetaRejected, dailyRejected+tickRejected)
	return nil
}

func (s *IngestStep) ingestDaily(ctx context.Context) (int, int, error) {
	env := s.env
	found, err := env.Discovery.FindFiles(env.Paths.CotahistDir, ".txt")
	if err != nil || len(found) == 0 {
		env.Logger.InfoContext(ctx, "No COTAHIST files to ingest", slog.String("dir", env.Paths.CotahistDir))
		return 0, 0, nil
	}

	merged := make(map[string][]domain.DailyRecord)
	rejected := 0
	for _, f := range found {
		if err := ctx.Err(); err != nil {
			return 0, rejected, err
		}
		bySymbol, rejects, err := records.ReadCOTAHIST(f.Path)
		if err != nil {
			env.logIssue(ctx, apperrors.CategoryRecords, f.Name, err)
			continue
		}
		rejected += len(rejects)
		for _, r := range rejects {
			env.logIssue(ctx, apperrors.CategoryRecords, f.Name, r)
		}
		for sym, recs := range bySymbol {
			for _, r := range recs {
				if env.inRange(r.Date) {
					merged[sym] = append(merged[sym], r)
				}
			}
		}
		env.Logger.DebugContext(ctx, "COTAHIST file decoded",
			slog.String("file", f.Name),
			slog.Int("symbols", len(bySymbol)),
			slog.Int("rejected", len(rejects)))
	}
	env.Metrics.RecordRejected(ctx, StepIDIngest, rejected)

	symbols := sortedKeys(merged)
	res, err := env.batch(StepIDIngest, apperrors.CategoryRecords).Run(ctx, symbols, func(ctx context.Context, sym string) error {
		path := env.Paths.GetDailyPath(sym)
		existing, _, err := records.ReadDaily(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		// later records win on the same date, so fresh quotes replace stored ones
		return records.WriteDaily(path, append(existing, merged[sym]...))
	})
	return res.Total - res.Failed, rejected, err
}

func (s *IngestStep) ingestTrades(ctx context.Context) (int, int, error) {
	env := s.env
	found, err := env.Discovery.FindFiles(env.Paths.NegDir, "")
	if err != nil || len(found) == 0 {
		env.Logger.InfoContext(ctx, "No trade files to ingest", slog.String("dir", env.Paths.NegDir))
		return 0, 0, nil
	}

	type symbolDays map[string][]domain.TickRecord
	grouped := make(map[string]symbolDays)
	rejected := 0
	for _, f := range found {
		if err := ctx.Err(); err != nil {
			return 0, rejected, err
		}
		trades, rejects, err := records.ReadNEG(f.Path)
		if err != nil {
			env.logIssue(ctx, apperrors.CategoryRecords, f.Name, err)
			continue
		}
		rejected += len(rejects)
		for _, r := range rejects {
			env.logIssue(ctx, apperrors.CategoryRecords, f.Name, r)
		}
		for _, t := range trades {
			if !env.inRange(t.Date) {
				continue
			}
			days, ok := grouped[t.Symbol]
			if !ok {
				days = make(symbolDays)
				grouped[t.Symbol] = days
			}
			key := t.Date.Format(domain.DateLayout)
			days[key] = append(days[key], t.Tick)
		}
	}
	env.Metrics.RecordRejected(ctx, StepIDIngest, rejected)

	dataType := env.Config.Pipeline.InputDataType
	if dataType == "daily" {
		dataType = "trade"
	}

	var (
		mu      sync.Mutex
		written int
	)
	symbols := sortedKeys(grouped)
	_, err = env.batch(StepIDIngest, apperrors.CategoryRecords).Run(ctx, symbols, func(ctx context.Context, sym string) error {
		for _, key := range sortedKeys(grouped[sym]) {
			ticks := grouped[sym][key]
			sort.SliceStable(ticks, func(i, j int) bool { return ticks[i].TimeOfDayMillis < ticks[j].TimeOfDayMillis })
			date, _ := time.Parse(domain.DateLayout, key)
			if err := records.WriteTicks(env.Paths.GetTickPath(sym, date, dataType), ticks); err != nil {
				return err
			}
			mu.Lock()
			written++
			mu.Unlock()
		}
		return nil
	})
	return written, rejected, err
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
