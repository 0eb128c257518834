package operations

import (
	"context"
	"log/slog"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	apperrors "bovespacli/internal/errors"
	"bovespacli/internal/infrastructure"
)

// Batch runs one step's per-instrument work on a bounded worker pool.
// Errors are caught at the instrument boundary: each one is appended to the
// error log under Category and the batch carries on. Only fatal errors and
// cancellation stop it.
type Batch struct {
	Step     string
	Category string
	Workers  int
	ErrLog   *apperrors.ErrorLog
	Metrics  *infrastructure.PipelineMetrics
	Logger   *slog.Logger
}

// BatchResult counts the outcome of a batch
type BatchResult struct {
	Total  int
	Failed int
}

// Run calls fn once per item
func (b Batch) Run(ctx context.Context, items []string, fn func(ctx context.Context, item string) error) (BatchResult, error) {
	workers := b.Workers
	if workers < 1 {
		workers = 1
	}
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}

	progress := NewProgressTracker(b.Step, len(items))
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			err := fn(gctx, item)
			b.Metrics.RecordInstrument(gctx, b.Step, err)

			if err != nil {
				if IsFatal(err) || ctx.Err() != nil {
					return err
				}
				failed.Add(1)
				infrastructure.WithError(logger, err).WarnContext(gctx, "instrument failed",
					slog.String("step_id", b.Step),
					slog.String("symbol", item))
				if b.ErrLog != nil {
					if lerr := b.ErrLog.Append(b.Category, item, err); lerr != nil {
						infrastructure.WithError(logger, lerr).ErrorContext(gctx, "error log append failed")
					}
				}
			}

			if n := progress.Increment(); progress.ShouldReport(n) {
				_, total, pct := progress.GetProgress()
				logger.DebugContext(gctx, "step progress",
					slog.String("step_id", b.Step),
					slog.Int("done", n),
					slog.Int("total", total),
					slog.Float64("percent", pct),
					slog.String("eta", progress.GetETA()))
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	res := BatchResult{Total: len(items), Failed: int(failed.Load())}
	infrastructure.SetSpanAttributes(ctx,
		attribute.Int("batch.total", res.Total),
		attribute.Int("batch.failed", res.Failed))
	return res, err
}
