package domain

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrValidation,
		ErrNetwork,
		ErrDecode,
		ErrStorage,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.NotErrorIs(t, a, b,
					"sentinels should be distinct: %v vs %v", a, b)
			}
		}
	}
}

func TestNotFoundError(t *testing.T) {
	tests := []struct {
		name        string
		entity      string
		id          string
		expectedMsg string
	}{
		{
			name:        "with entity and ID",
			entity:      "quote",
			id:          "01J9Z",
			expectedMsg: `quote with id "01J9Z" not found`,
		},
		{
			name:        "with entity only",
			entity:      "last quote",
			expectedMsg: "last quote not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewNotFoundError(tt.entity, tt.id)

			assert.Equal(t, tt.expectedMsg, err.Error())
			require.ErrorIs(t, err, ErrNotFound)

			var notFound *NotFoundError
			require.ErrorAs(t, err, &notFound)
			assert.Equal(t, tt.entity, notFound.Entity)
			assert.Equal(t, tt.id, notFound.ID)
		})
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		expectedMsg string
		value       any
	}{
		{
			name:        "with field",
			err:         NewValidationError("text", "is required"),
			expectedMsg: "validation failed for text: is required",
		},
		{
			name:        "without field",
			err:         NewValidationError("", "root must be an array"),
			expectedMsg: "validation failed: root must be an array",
		},
		{
			name:        "with value",
			err:         NewValidationErrorWithValue("limit", "must be positive", -1),
			expectedMsg: "validation failed for limit: must be positive",
			value:       -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedMsg, tt.err.Error())
			require.ErrorIs(t, tt.err, ErrValidation)

			var validation *ValidationError
			require.ErrorAs(t, tt.err, &validation)
			assert.Equal(t, tt.value, validation.Value)
		})
	}
}

func TestNetworkError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		expectedMsg string
		status      int
	}{
		{
			name:        "transport failure",
			err:         NewNetworkError("remote-quotes", "fetch", "connection refused"),
			expectedMsg: "remote-quotes: fetch failed: connection refused",
		},
		{
			name:        "status failure",
			err:         NewNetworkStatusError("remote-quotes", "push", 503),
			expectedMsg: "remote-quotes: push failed with status 503",
			status:      503,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedMsg, tt.err.Error())
			require.ErrorIs(t, tt.err, ErrNetwork)

			var netErr *NetworkError
			require.ErrorAs(t, tt.err, &netErr)
			assert.Equal(t, tt.status, netErr.StatusCode)
		})
	}
}

func TestDecodeError(t *testing.T) {
	err := NewDecodeError("remote response", "unexpected end of JSON input")

	assert.Equal(t, "decoding remote response: unexpected end of JSON input", err.Error())
	require.ErrorIs(t, err, ErrDecode)
	assert.False(t, IsNetwork(err))
}

func TestStorageError(t *testing.T) {
	cause := fs.ErrPermission
	err := NewStorageError("quotes", "write", cause)

	assert.Equal(t, `storage write "quotes": permission denied`, err.Error())
	require.ErrorIs(t, err, ErrStorage)
	require.ErrorIs(t, err, fs.ErrPermission)

	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "quotes", storageErr.Slot)
	assert.Equal(t, "write", storageErr.Op)
}

func TestStorageError_NilCause(t *testing.T) {
	err := NewStorageError("quotes", "read", nil)

	assert.Equal(t, `storage read "quotes" failed`, err.Error())
	assert.True(t, IsStorage(err))
}

func TestWrappedErrors_PreserveKind(t *testing.T) {
	wrapped := fmt.Errorf("sync: %w", NewNetworkError("remote-quotes", "fetch", "timeout"))

	assert.True(t, IsNetwork(wrapped))
	assert.False(t, IsDecode(wrapped))
	assert.False(t, IsStorage(wrapped))
}

func TestKind(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil", err: nil, expected: ""},
		{name: "validation", err: NewValidationError("text", "is required"), expected: "validation"},
		{name: "not found", err: NewNotFoundError("quote", "1"), expected: "not_found"},
		{name: "network", err: NewNetworkStatusError("remote", "fetch", 500), expected: "network"},
		{name: "decode", err: NewDecodeError("import", "bad json"), expected: "decode"},
		{name: "storage", err: NewStorageError("quotes", "write", errors.New("disk full")), expected: "storage"},
		{name: "wrapped", err: fmt.Errorf("outer: %w", ErrDecode), expected: "decode"},
		{name: "unknown", err: errors.New("boom"), expected: "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Kind(tt.err))
		})
	}
}
