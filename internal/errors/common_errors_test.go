package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewAppError(ErrTypeInvalidRatio, "invalid ratio \"0\"", nil),
			want: "[INVALID_RATIO] invalid ratio \"0\"",
		},
		{
			name: "with cause",
			err:  NewStorageError("write failed", fmt.Errorf("disk full")),
			want: "[STORAGE] write failed: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := NewNetworkFetchError("issuer 9512", cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, "issuer 9512", err.Source())
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		want   ErrorType
		source string
	}{
		{"missing input", NewMissingInputError("daily/ABCD3.csv", nil), ErrTypeMissingInput, "daily/ABCD3.csv"},
		{"malformed", NewMalformedRecordError("cotahist:12", "short line", nil), ErrTypeMalformed, "cotahist:12"},
		{"invalid ratio", NewInvalidRatioError("9512", "x/y"), ErrTypeInvalidRatio, "9512"},
		{"non positive", NewNonPositiveError("9512", "reference price", "0"), ErrTypeNonPositive, "9512"},
		{"config", NewConfigError("bad dates", nil), ErrTypeConfigInvalid, ""},
		{"not found", NewNotFoundError("factor file"), ErrTypeNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Type)
			assert.Equal(t, tt.source, tt.err.Source())
		})
	}
}

func TestTypeOfAndIsFatal(t *testing.T) {
	wrapped := fmt.Errorf("loading: %w", NewConfigError("end date before start date", nil))
	require.Equal(t, ErrTypeConfigInvalid, TypeOf(wrapped))
	assert.True(t, IsFatal(wrapped))

	assert.False(t, IsFatal(NewMalformedRecordError("x", "y", nil)))
	assert.False(t, IsFatal(fmt.Errorf("plain")))
	assert.Equal(t, ErrorType(""), TypeOf(nil))
}

func TestAppError_WithContext(t *testing.T) {
	err := &AppError{Type: ErrTypeStorage, Message: "x"}
	err.WithContext("symbol", "PETR4").WithContext("rows", 3)

	assert.Equal(t, "PETR4", err.Context["symbol"])
	assert.Equal(t, 3, err.Context["rows"])
}
