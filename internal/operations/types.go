package operations

import (
	"time"
)

// Pipeline step identifiers
const (
	StepIDIngest      = "ingest"
	StepIDCalendar    = "calendar"
	StepIDMapFiles    = "mapfiles"
	StepIDFactorFiles = "factorfiles"
	StepIDBars        = "bars"
	StepIDExport      = "export"
	StepIDRenames     = "renames"
)

// Pipeline step names
const (
	StepNameIngest      = "Raw Record Ingest"
	StepNameCalendar    = "Trading Calendar"
	StepNameMapFiles    = "Map Files"
	StepNameFactorFiles = "Factor Files"
	StepNameBars        = "Bar Aggregation"
	StepNameExport      = "Adjusted Export"
	StepNameRenames     = "Rename Detection"
)

// Context keys for operation state
const (
	ContextKeyCalendar = "calendar"
)

// Metadata keys reported by steps
const (
	MetaInstruments = "instruments"
	MetaFailed      = "failed"
	MetaFiles       = "files"
	MetaRejected    = "rejected"
)

// RetryConfig defines retry behavior for steps
type RetryConfig struct {
	MaxAttempts  int           `json:"max_attempts"`
	InitialDelay time.Duration `json:"initial_delay"`
	MaxDelay     time.Duration `json:"max_delay"`
	Multiplier   float64       `json:"multiplier"`
}

// NewRetryConfig returns the default retry configuration
func NewRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  2,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// OperationRequest selects the steps of a run. No steps means the whole pipeline.
type OperationRequest struct {
	ID    string   `json:"id"`
	Steps []string `json:"steps,omitempty"`
}

// OperationResponse summarizes a finished run
type OperationResponse struct {
	ID         string                `json:"id"`
	Status     OperationStatusValue  `json:"status"`
	Duration   time.Duration         `json:"duration"`
	Steps      map[string]*StepState `json:"steps"`
	Error      string                `json:"error,omitempty"`
	ErrorCount int                   `json:"error_count"`
}
