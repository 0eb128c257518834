package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"bovespacli/internal/infrastructure"
)

const (
	TracerName = "bovespacli.operation"
)

// OperationTracer provides OpenTelemetry instrumentation for pipeline runs
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewOperationTracer creates a tracer over the given providers' tracer and the shared pipeline metrics
func NewOperationTracer(providers *infrastructure.OTelProviders, metrics *infrastructure.PipelineMetrics) *OperationTracer {
	tracer := otel.Tracer(TracerName)
	if providers != nil && providers.Tracer != nil {
		tracer = providers.Tracer
	}
	if metrics == nil {
		metrics = infrastructure.NoopPipelineMetrics()
	}
	return &OperationTracer{tracer: tracer, metrics: metrics}
}

// TraceOperation creates a span for a whole run
func (ot *OperationTracer) TraceOperation(ctx context.Context, operationID string, steps []string) (context.Context, trace.Span) {
	return ot.tracer.Start(ctx, "operation.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.StringSlice("operation.steps", steps),
		),
	)
}

// TraceStep creates a span for one step attempt
func (ot *OperationTracer) TraceStep(ctx context.Context, operationID, stepID string, attempt int) (context.Context, trace.Span) {
	return ot.tracer.Start(ctx, fmt.Sprintf("operation.step.%s", stepID),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.String("step.id", stepID),
			attribute.Int("step.attempt", attempt),
		),
	)
}

// RecordStepCompletion ends a step span and records its duration
func (ot *OperationTracer) RecordStepCompletion(ctx context.Context, span trace.Span, stepID string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "step completed")
	}
	span.SetAttributes(
		attribute.String("step.status", status),
		attribute.Float64("step.duration_seconds", duration.Seconds()),
	)
	ot.metrics.StepDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("step", stepID),
			attribute.String("status", status),
		),
	)
	span.End()
}

// RecordOperationCompletion ends the run span
func (ot *OperationTracer) RecordOperationCompletion(span trace.Span, status OperationStatusValue, duration time.Duration, errorCount int) {
	span.SetAttributes(
		attribute.String("operation.status", string(status)),
		attribute.Float64("operation.duration_seconds", duration.Seconds()),
		attribute.Int("operation.error_log_lines", errorCount),
	)
	if status == OperationStatusCompleted {
		span.SetStatus(codes.Ok, "operation completed")
	} else {
		span.SetStatus(codes.Error, fmt.Sprintf("operation finished with status %s", status))
	}
	span.End()
}
