package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "bovespacli/internal/errors"
	"bovespacli/internal/infrastructure"
)

// Manager runs the registered steps of the pipeline in dependency order
type Manager struct {
	registry     *Registry
	config       *Config
	tracer       *OperationTracer
	errLog       *apperrors.ErrorLog
	logger       *slog.Logger
	manifestPath string
}

// NewManager creates a manager. A nil config uses NewConfig, a nil tracer the global provider.
func NewManager(registry *Registry, cfg *Config, tracer *OperationTracer, errLog *apperrors.ErrorLog, logger *slog.Logger) *Manager {
	if cfg == nil {
		cfg = NewConfig()
	}
	if tracer == nil {
		tracer = NewOperationTracer(nil, nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		registry: registry,
		config:   cfg,
		tracer:   tracer,
		errLog:   errLog,
		logger:   infrastructure.WithComponent(logger, "operation_manager"),
	}
}

// SetManifestPath makes Execute write a RunManifest to path when the run ends
func (m *Manager) SetManifestPath(path string) {
	m.manifestPath = path
}

// Execute runs the requested steps and their dependencies.
// A returned error means the run could not start or was halted by a fatal step error.
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	id := req.ID
	if id == "" {
		id = "run-" + uuid.New().String()
	}
	ctx = infrastructure.WithTraceID(ctx, id)

	plan, err := m.registry.Plan(req.Steps)
	if err != nil {
		return nil, err
	}
	order := make([]string, len(plan))
	for i, step := range plan {
		order[i] = step.ID()
	}

	state := NewOperationState(id)
	for _, step := range plan {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	ctx, span := m.tracer.TraceOperation(ctx, id, order)
	m.logOperationStart(ctx, id, order)
	state.Start()

	var (
		runErr error
		failed []string
	)
	for i, step := range plan {
		if err := ctx.Err(); err != nil {
			runErr = NewCancellationError(step.ID())
			m.skipRemaining(ctx, state, order[i:], "operation cancelled")
			break
		}

		stepState := state.GetStage(step.ID())
		if dep, ok := m.unmetDependency(state, step); !ok {
			reason := fmt.Sprintf("dependency %s did not complete", dep)
			stepState.Skip(reason)
			m.logStepSkipped(ctx, id, step.ID(), reason)
			continue
		}

		if err := step.Validate(state); err != nil {
			stepState.Skip(err.Error())
			m.logStepSkipped(ctx, id, step.ID(), err.Error())
			continue
		}

		err := m.runStep(ctx, id, step, state)
		if err == nil {
			continue
		}

		failed = append(failed, step.ID())
		if IsFatal(err) || !m.config.ContinueOnError || errors.Is(err, context.Canceled) {
			runErr = err
			m.skipRemaining(ctx, state, order[i+1:], "operation halted after "+step.ID()+" failed")
			break
		}
	}

	switch {
	case errors.Is(runErr, context.Canceled) || GetErrorType(runErr) == ErrorTypeCancellation:
		state.Cancel()
	case runErr != nil:
		state.Fail(runErr)
	case len(failed) > 0:
		state.Fail(fmt.Errorf("steps failed: %v", failed))
	default:
		state.Complete()
	}

	errorCount := 0
	errorLogPath := ""
	if m.errLog != nil {
		errorCount = m.errLog.Count()
		errorLogPath = m.errLog.Path()
	}

	if m.manifestPath != "" {
		manifest := NewRunManifest(state, order, errorCount, errorLogPath)
		if err := manifest.Write(m.manifestPath); err != nil {
			m.logger.WarnContext(ctx, "failed to write run manifest",
				slog.String("path", m.manifestPath),
				slog.String("error", err.Error()))
		}
	}

	status := state.GetStatus()
	duration := state.Duration()
	m.tracer.RecordOperationCompletion(span, status, duration, errorCount)
	m.logOperationComplete(ctx, id, duration, status, errorCount)

	resp := &OperationResponse{
		ID:         id,
		Status:     status,
		Duration:   duration,
		Steps:      state.Steps,
		ErrorCount: errorCount,
	}
	if state.Error != nil {
		resp.Error = state.Error.Error()
	}
	if IsFatal(runErr) {
		return resp, runErr
	}
	return resp, nil
}

// runStep executes one step with its timeout, retrying retryable failures
func (m *Manager) runStep(ctx context.Context, opID string, step Step, state *OperationState) error {
	stepState := state.GetStage(step.ID())
	retry := m.config.RetryConfig
	maxAttempts := retry.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		stepState.Start()
		m.logStepStart(ctx, opID, step.ID(), attempt)

		lastErr = m.attempt(ctx, opID, step, state, attempt)
		if lastErr == nil {
			stepState.Complete()
			m.logStepComplete(ctx, opID, step.ID(), stepState.Duration())
			return nil
		}

		m.logStepError(ctx, opID, step.ID(), lastErr)
		if attempt == maxAttempts || !IsRetryable(lastErr) || IsFatal(lastErr) {
			break
		}

		select {
		case <-ctx.Done():
			lastErr = ctx.Err()
			attempt = maxAttempts
		case <-time.After(retry.retryDelay(attempt)):
		}
	}

	stepState.Fail(lastErr)
	return lastErr
}

func (m *Manager) attempt(ctx context.Context, opID string, step Step, state *OperationState, n int) error {
	timeout := m.config.GetStepTimeout(step.ID())
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stepCtx, span := m.tracer.TraceStep(stepCtx, opID, step.ID(), n)
	start := time.Now()
	err := step.Execute(stepCtx, state)
	if err == nil && errors.Is(stepCtx.Err(), context.DeadlineExceeded) {
		err = stepCtx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		err = NewTimeoutError(step.ID(), timeout.String())
	}
	m.tracer.RecordStepCompletion(ctx, span, step.ID(), time.Since(start), err)
	return err
}

func (m *Manager) unmetDependency(state *OperationState, step Step) (string, bool) {
	for _, dep := range step.GetDependencies() {
		st := state.GetStage(dep)
		if st != nil && st.GetStatus() != StepStatusCompleted {
			return dep, false
		}
	}
	return "", true
}

func (m *Manager) skipRemaining(ctx context.Context, state *OperationState, ids []string, reason string) {
	for _, id := range ids {
		st := state.GetStage(id)
		if st == nil || st.GetStatus() != StepStatusPending {
			continue
		}
		st.Skip(reason)
		m.logStepSkipped(ctx, state.ID, id, reason)
	}
}
