package operations

import (
	"encoding/json"
	"fmt"
	"time"

	"bovespacli/internal/files"
)

// RunManifest is the summary written next to the outputs after every run
type RunManifest struct {
	ID         string          `json:"id"`
	Status     string          `json:"status"`
	StartTime  time.Time       `json:"start_time"`
	EndTime    time.Time       `json:"end_time"`
	Duration   string          `json:"duration"`
	Steps      []StepExecution `json:"steps"`
	ErrorCount int             `json:"error_count"`
	ErrorLog   string          `json:"error_log,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// StepExecution records the outcome of a single step
type StepExecution struct {
	StepID   string                 `json:"step_id"`
	StepName string                 `json:"step_name"`
	Status   string                 `json:"status"`
	Attempts int                    `json:"attempts"`
	Duration string                 `json:"duration"`
	Message  string                 `json:"message,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// NewRunManifest snapshots a finished run. order lists the planned step IDs.
func NewRunManifest(state *OperationState, order []string, errorCount int, errorLog string) *RunManifest {
	m := &RunManifest{
		ID:         state.ID,
		Status:     string(state.GetStatus()),
		StartTime:  state.StartTime,
		EndTime:    time.Now(),
		Duration:   state.Duration().Round(time.Millisecond).String(),
		ErrorCount: errorCount,
		ErrorLog:   errorLog,
	}
	if state.Error != nil {
		m.Error = state.Error.Error()
	}
	if state.EndTime != nil {
		m.EndTime = *state.EndTime
	}

	for _, id := range order {
		st := state.GetStage(id)
		if st == nil {
			continue
		}
		st.mu.RLock()
		meta := make(map[string]interface{}, len(st.Metadata))
		for k, v := range st.Metadata {
			meta[k] = v
		}
		exec := StepExecution{
			StepID:   st.ID,
			StepName: st.Name,
			Status:   string(st.Status),
			Attempts: st.Attempts,
			Message:  st.Message,
			Metadata: meta,
		}
		st.mu.RUnlock()
		exec.Duration = st.Duration().Round(time.Millisecond).String()
		m.Steps = append(m.Steps, exec)
	}
	return m
}

// Write replaces path with the indented JSON manifest
func (m *RunManifest) Write(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	return files.WriteLinesAtomic(path, []string{string(data)})
}
