package operations

import (
	"errors"
	"fmt"

	apperrors "bovespacli/internal/errors"
)

// ErrorType represents the type of operation error
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeDependency   ErrorType = "dependency"
	ErrorTypeExecution    ErrorType = "execution"
	ErrorTypeTimeout      ErrorType = "timeout"
	ErrorTypeCancellation ErrorType = "cancellation"
	ErrorTypeFatal        ErrorType = "fatal"
	ErrorTypeNotFound     ErrorType = "not_found"
)

// OperationError is a step-level failure
type OperationError struct {
	Type      ErrorType              `json:"type"`
	Step      string                 `json:"step,omitempty"`
	Message   string                 `json:"message"`
	Cause     error                  `json:"-"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Retryable bool                   `json:"retryable"`
}

// Error implements the error interface
func (e *OperationError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Step != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Type, e.Step, msg)
	}
	return fmt.Sprintf("[%s] %s", e.Type, msg)
}

// Unwrap returns the underlying error
func (e *OperationError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new validation error
func NewValidationError(step, message string) *OperationError {
	return &OperationError{Type: ErrorTypeValidation, Step: step, Message: message}
}

// NewDependencyError creates a new dependency error
func NewDependencyError(step, dependsOn, message string) *OperationError {
	return &OperationError{
		Type:    ErrorTypeDependency,
		Step:    step,
		Message: message,
		Context: map[string]interface{}{"depends_on": dependsOn},
	}
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(step string, timeout string) *OperationError {
	return &OperationError{
		Type:      ErrorTypeTimeout,
		Step:      step,
		Message:   fmt.Sprintf("step exceeded timeout of %s", timeout),
		Context:   map[string]interface{}{"timeout": timeout},
		Retryable: true,
	}
}

// NewCancellationError creates a new cancellation error
func NewCancellationError(step string) *OperationError {
	return &OperationError{Type: ErrorTypeCancellation, Step: step, Message: "operation was cancelled"}
}

// NewFatalError creates an error that halts the run regardless of continue-on-error
func NewFatalError(message string, cause error) *OperationError {
	return &OperationError{Type: ErrorTypeFatal, Message: message, Cause: cause}
}

// NewNotFoundError reports an unknown step ID
func NewNotFoundError(step string) *OperationError {
	return &OperationError{Type: ErrorTypeNotFound, Step: step, Message: "step not registered"}
}

// IsRetryable reports whether a failed step may be attempted again.
// Storage and network failures are transient; everything else is not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Retryable
	}
	switch apperrors.TypeOf(err) {
	case apperrors.ErrTypeStorage, apperrors.ErrTypeNetworkFetch:
		return true
	}
	return false
}

// IsFatal reports whether err must stop the whole run
func IsFatal(err error) bool {
	var opErr *OperationError
	if errors.As(err, &opErr) && opErr.Type == ErrorTypeFatal {
		return true
	}
	return apperrors.IsFatal(err)
}

// GetErrorType returns the type of the error
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ""
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Type
	}
	return ErrorTypeExecution
}

