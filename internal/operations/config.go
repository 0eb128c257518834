package operations

import (
	"strings"
	"time"

	"bovespacli/internal/config"
)

// Config represents the operation execution configuration
type Config struct {
	// Step-specific timeouts
	StepTimeouts map[string]time.Duration `json:"step_timeouts"`

	// Timeout for steps without an entry in StepTimeouts
	DefaultTimeout time.Duration `json:"default_timeout"`

	// Retry configuration for steps
	RetryConfig RetryConfig `json:"retry_config"`

	// Whether independent steps keep running after a step fails
	ContinueOnError bool `json:"continue_on_error"`

	// Instrument workers per step
	Workers int `json:"workers"`
}

// NewConfig returns the default operation configuration
func NewConfig() *Config {
	return &Config{
		StepTimeouts: map[string]time.Duration{
			StepIDCalendar: 5 * time.Minute,
		},
		DefaultTimeout:  config.DefaultStepTimeout,
		RetryConfig:     NewRetryConfig(),
		ContinueOnError: true,
		Workers:         config.DefaultWorkers,
	}
}

// FromPipeline derives the operation configuration from the pipeline settings
func FromPipeline(p config.PipelineConfig) *Config {
	c := NewConfig()
	if p.StepTimeout > 0 {
		c.DefaultTimeout = p.StepTimeout
	}
	if p.Workers > 0 {
		c.Workers = p.Workers
	}
	for id, d := range p.StepTimeouts {
		c.SetStepTimeout(strings.ToLower(id), d)
	}
	c.ContinueOnError = p.ContinueOnError
	return c
}

// GetStepTimeout returns the timeout for a specific Step
func (c *Config) GetStepTimeout(stepID string) time.Duration {
	if timeout, ok := c.StepTimeouts[stepID]; ok {
		return timeout
	}
	if c.DefaultTimeout > 0 {
		return c.DefaultTimeout
	}
	return config.DefaultStepTimeout
}

// SetStepTimeout sets the timeout for a specific Step
func (c *Config) SetStepTimeout(stepID string, timeout time.Duration) {
	if c.StepTimeouts == nil {
		c.StepTimeouts = make(map[string]time.Duration)
	}
	c.StepTimeouts[stepID] = timeout
}

// retryDelay is InitialDelay * Multiplier^(attempt-1), capped at MaxDelay
func (r RetryConfig) retryDelay(attempt int) time.Duration {
	delay := float64(r.InitialDelay)
	for i := 1; i < attempt; i++ {
		delay *= r.Multiplier
	}
	if d := time.Duration(delay); d < r.MaxDelay || r.MaxDelay <= 0 {
		return d
	}
	return r.MaxDelay
}
