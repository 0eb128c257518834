package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeMissingInput   ErrorType = "MISSING_INPUT_FILE"
	ErrTypeMalformed      ErrorType = "MALFORMED_RECORD"
	ErrTypeInvalidRatio   ErrorType = "INVALID_RATIO"
	ErrTypeNonPositive    ErrorType = "NON_POSITIVE_VALUE"
	ErrTypeNetworkFetch   ErrorType = "NETWORK_FETCH"
	ErrTypeConfigInvalid  ErrorType = "CONFIGURATION_INVALID"
	ErrTypeStorage        ErrorType = "STORAGE"
	ErrTypeNotFound       ErrorType = "NOT_FOUND"
	ErrTypeNotImplemented ErrorType = "NOT_IMPLEMENTED"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Source returns the "source" context value, or "" when unset
func (e *AppError) Source() string {
	if s, ok := e.Context["source"].(string); ok {
		return s
	}
	return ""
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewMissingInputError reports an absent input file. Non-fatal: the instrument or edge is skipped.
func NewMissingInputError(path string, cause error) *AppError {
	return NewAppError(ErrTypeMissingInput, fmt.Sprintf("input file %s not found", path), cause).
		WithContext("source", path)
}

// NewMalformedRecordError reports a row that could not be decoded
func NewMalformedRecordError(source string, message string, cause error) *AppError {
	return NewAppError(ErrTypeMalformed, message, cause).WithContext("source", source)
}

// NewInvalidRatioError reports a structural event whose ratio could not be used
func NewInvalidRatioError(source string, ratio string) *AppError {
	return NewAppError(ErrTypeInvalidRatio, fmt.Sprintf("invalid ratio %q", ratio), nil).
		WithContext("source", source)
}

// NewNonPositiveError reports a value that must be strictly positive
func NewNonPositiveError(source, field string, value interface{}) *AppError {
	return NewAppError(ErrTypeNonPositive, fmt.Sprintf("%s must be positive, got %v", field, value), nil).
		WithContext("source", source)
}

// NewNetworkFetchError reports a failed collaborator fetch
func NewNetworkFetchError(source string, cause error) *AppError {
	return NewAppError(ErrTypeNetworkFetch, "fetch failed", cause).WithContext("source", source)
}

// NewConfigError creates a configuration error. These halt the run.
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfigInvalid, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// TypeOf returns the ErrorType of the first AppError in err's chain, or "" when there is none
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsType reports whether err's chain carries an AppError of the given type
func IsType(err error, t ErrorType) bool {
	return TypeOf(err) == t
}

// IsFatal reports whether err must halt the run before any output is touched
func IsFatal(err error) bool {
	return IsType(err, ErrTypeConfigInvalid)
}
