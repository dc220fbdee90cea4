// Package domain contains business logic types and errors.
// Domain errors represent business-level failures, NOT HTTP errors.
// They are infrastructure-agnostic and can be mapped to HTTP/CLI output by adapters.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates business rule validation failed.
	ErrValidation = errors.New("validation failed")

	// ErrNetwork indicates a remote read or write did not complete.
	ErrNetwork = errors.New("network failure")

	// ErrDecode indicates a remote or imported payload could not be decoded.
	ErrDecode = errors.New("decode failure")

	// ErrStorage indicates the durable slot could not be read or written.
	ErrStorage = errors.New("storage failure")
)

// NotFoundError provides context for not found errors.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
	}

	return e.Entity + " not found"
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a not found error with context.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ValidationError provides context for validation errors.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}

	return "validation failed: " + e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a validation error with context.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewValidationErrorWithValue creates a validation error including the invalid value.
func NewValidationErrorWithValue(field, message string, value any) error {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// NetworkError describes a failed exchange with a remote service.
// StatusCode is zero when no response was received.
type NetworkError struct {
	Service    string
	Operation  string
	StatusCode int
	Reason     string
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	msg := fmt.Sprintf("%s: %s failed", e.Service, e.Operation)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" with status %d", e.StatusCode)
	}

	if e.Reason != "" {
		msg += ": " + e.Reason
	}

	return msg
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *NetworkError) Unwrap() error {
	return ErrNetwork
}

// NewNetworkError creates a network error for a failure without a response.
func NewNetworkError(service, operation, reason string) error {
	return &NetworkError{Service: service, Operation: operation, Reason: reason}
}

// NewNetworkStatusError creates a network error for an unexpected response status.
func NewNetworkStatusError(service, operation string, status int) error {
	return &NetworkError{Service: service, Operation: operation, StatusCode: status}
}

// DecodeError describes a payload that could not be decoded.
type DecodeError struct {
	Source string
	Reason string
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %s", e.Source, e.Reason)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *DecodeError) Unwrap() error {
	return ErrDecode
}

// NewDecodeError creates a decode error with context.
func NewDecodeError(source, reason string) error {
	return &DecodeError{Source: source, Reason: reason}
}

// StorageError describes a failed read or write of a storage slot.
type StorageError struct {
	Slot string
	Op   string
	Err  error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("storage %s %q: %v", e.Op, e.Slot, e.Err)
	}

	return fmt.Sprintf("storage %s %q failed", e.Op, e.Slot)
}

// Is reports ErrStorage as well as the wrapped cause.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// Unwrap returns the underlying cause.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a storage error for the given slot operation.
func NewStorageError(slot, op string, err error) error {
	return &StorageError{Slot: slot, Op: op, Err: err}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNetwork checks if an error is a network error.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsDecode checks if an error is a decode error.
func IsDecode(err error) bool {
	return errors.Is(err, ErrDecode)
}

// IsStorage checks if an error is a storage error.
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}

// Kind returns a short machine-readable label for a domain error.
// Unknown errors return "internal".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsValidation(err):
		return "validation"
	case IsNotFound(err):
		return "not_found"
	case IsNetwork(err):
		return "network"
	case IsDecode(err):
		return "decode"
	case IsStorage(err):
		return "storage"
	default:
		return "internal"
	}
}
