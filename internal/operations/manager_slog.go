package operations

import (
	"context"
	"log/slog"
	"time"
)

func (m *Manager) logOperationStart(ctx context.Context, operationID string, steps []string) {
	m.logger.InfoContext(ctx, "operation_start",
		slog.String("operation_id", operationID),
		slog.Any("steps", steps))
}

func (m *Manager) logOperationComplete(ctx context.Context, operationID string, duration time.Duration, status OperationStatusValue, errorCount int) {
	m.logger.InfoContext(ctx, "operation_complete",
		slog.String("operation_id", operationID),
		slog.String("status", string(status)),
		slog.Duration("duration", duration),
		slog.Int("error_log_lines", errorCount))
}

func (m *Manager) logStepStart(ctx context.Context, operationID, stepID string, attempt int) {
	m.logger.InfoContext(ctx, "step_start",
		slog.String("operation_id", operationID),
		slog.String("step_id", stepID),
		slog.Int("attempt", attempt))
}

func (m *Manager) logStepComplete(ctx context.Context, operationID, stepID string, duration time.Duration) {
	m.logger.InfoContext(ctx, "step_complete",
		slog.String("operation_id", operationID),
		slog.String("step_id", stepID),
		slog.Duration("duration", duration))
}

func (m *Manager) logStepError(ctx context.Context, operationID, stepID string, err error) {
	m.logger.ErrorContext(ctx, "step_error",
		slog.String("operation_id", operationID),
		slog.String("step_id", stepID),
		slog.String("error", err.Error()))
}

func (m *Manager) logStepSkipped(ctx context.Context, operationID, stepID, reason string) {
	m.logger.WarnContext(ctx, "step_skipped",
		slog.String("operation_id", operationID),
		slog.String("step_id", stepID),
		slog.String("reason", reason))
}
