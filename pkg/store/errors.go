package store

import "errors"

// StoreError represents a domain error from data access operations.
//
// These are business outcomes (record not found, duplicate key) or
// infrastructure failures (pool exhausted, backend down) expressed in a
// backend-neutral form. The RPC layer translates ErrorCode to gRPC status
// codes; any error crossing that boundary without a code is a bug.
type StoreError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Constraint is the violated database constraint name, if applicable
	Constraint string

	// Cause is the underlying error, if any
	Cause error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Constraint != "" {
		return e.Message + " (constraint " + e.Constraint + ")"
	}
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// ErrorCode represents the category of a store error.
type ErrorCode int

const (
	// ErrNotFound indicates the requested record doesn't exist
	ErrNotFound ErrorCode = iota

	// ErrAlreadyExists indicates a record with the same unique key exists
	ErrAlreadyExists

	// ErrInvalidArgument indicates invalid parameters were provided
	// Examples: empty id, missing required field
	ErrInvalidArgument

	// ErrUnavailable indicates the backend cannot currently serve requests
	// Used for pool exhaustion, closed pools, and connection failures
	ErrUnavailable

	// ErrBackend indicates an unexpected backend failure
	// The catch-all for errors with no more specific category
	ErrBackend
)

// String returns the snake_case name of the code, used in logs.
func (c ErrorCode) String() string {
	switch c {
	case ErrNotFound:
		return "not_found"
	case ErrAlreadyExists:
		return "already_exists"
	case ErrInvalidArgument:
		return "invalid_argument"
	case ErrUnavailable:
		return "unavailable"
	case ErrBackend:
		return "backend"
	default:
		return "unknown"
	}
}

// CodeOf extracts the ErrorCode from err. Errors that are not a *StoreError
// report ErrBackend, so unclassified failures never masquerade as business
// outcomes.
func CodeOf(err error) ErrorCode {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrBackend
}

// NewNotFoundError creates a StoreError for a missing record.
func NewNotFoundError(entity string) *StoreError {
	return &StoreError{
		Code:    ErrNotFound,
		Message: entity + " not found",
	}
}

// NewAlreadyExistsError creates a StoreError for a unique key collision.
func NewAlreadyExistsError(entity, constraint string) *StoreError {
	return &StoreError{
		Code:       ErrAlreadyExists,
		Message:    entity + " already exists",
		Constraint: constraint,
	}
}

// NewInvalidArgumentError creates a StoreError for invalid parameters.
func NewInvalidArgumentError(message string) *StoreError {
	return &StoreError{
		Code:    ErrInvalidArgument,
		Message: message,
	}
}

// NewUnavailableError creates a StoreError for a backend that cannot serve.
func NewUnavailableError(message string, cause error) *StoreError {
	return &StoreError{
		Code:    ErrUnavailable,
		Message: message,
		Cause:   cause,
	}
}

// NewBackendError creates a StoreError for an unexpected backend failure.
func NewBackendError(message string, cause error) *StoreError {
	return &StoreError{
		Code:    ErrBackend,
		Message: message,
		Cause:   cause,
	}
}
