package infrastructure

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// PipelineMetrics holds the converter's business metrics
type PipelineMetrics struct {
	InstrumentsProcessed metric.Int64Counter
	InstrumentsFailed    metric.Int64Counter
	RowsRejected         metric.Int64Counter
	FilesWritten         metric.Int64Counter
	BarsEmitted          metric.Int64Counter
	StepDuration         metric.Float64Histogram
}

// CreatePipelineMetrics registers the pipeline instruments on meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	instrumentsProcessed, err := meter.Int64Counter(
		"pipeline_instruments_processed_total",
		metric.WithDescription("Instruments processed by a pipeline step"),
	)
	if err != nil {
		return nil, err
	}

	instrumentsFailed, err := meter.Int64Counter(
		"pipeline_instruments_failed_total",
		metric.WithDescription("Instruments whose step work ended in an error"),
	)
	if err != nil {
		return nil, err
	}

	rowsRejected, err := meter.Int64Counter(
		"pipeline_rows_rejected_total",
		metric.WithDescription("Input rows skipped as malformed or invalid"),
	)
	if err != nil {
		return nil, err
	}

	filesWritten, err := meter.Int64Counter(
		"pipeline_files_written_total",
		metric.WithDescription("Output files written"),
	)
	if err != nil {
		return nil, err
	}

	barsEmitted, err := meter.Int64Counter(
		"pipeline_bars_emitted_total",
		metric.WithDescription("Aggregated bars emitted"),
	)
	if err != nil {
		return nil, err
	}

	stepDuration, err := meter.Float64Histogram(
		"pipeline_step_duration_seconds",
		metric.WithDescription("Pipeline step execution duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		InstrumentsProcessed: instrumentsProcessed,
		InstrumentsFailed:    instrumentsFailed,
		RowsRejected:         rowsRejected,
		FilesWritten:         filesWritten,
		BarsEmitted:          barsEmitted,
		StepDuration:         stepDuration,
	}, nil
}

// NoopPipelineMetrics returns metrics that record nothing
func NoopPipelineMetrics() *PipelineMetrics {
	m, _ := CreatePipelineMetrics(noop.NewMeterProvider().Meter(MeterName))
	return m
}

// RecordInstrument counts one instrument for a step, split by outcome
func (m *PipelineMetrics) RecordInstrument(ctx context.Context, step string, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("step", step))
	if err != nil {
		m.InstrumentsFailed.Add(ctx, 1, attrs)
		return
	}
	m.InstrumentsProcessed.Add(ctx, 1, attrs)
}

// RecordRejected counts rejected input rows for a step
func (m *PipelineMetrics) RecordRejected(ctx context.Context, step string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RowsRejected.Add(ctx, int64(n), metric.WithAttributes(attribute.String("step", step)))
}

// HTTPMetrics holds the query server's request instruments
type HTTPMetrics struct {
	RequestsTotal   metric.Int64Counter
	RequestDuration metric.Float64Histogram
	ActiveRequests  metric.Int64UpDownCounter
}

// CreateHTTPMetrics registers the HTTP instruments on meter
func CreateHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	requestsTotal, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{
		RequestsTotal:   requestsTotal,
		RequestDuration: requestDuration,
		ActiveRequests:  activeRequests,
	}, nil
}
