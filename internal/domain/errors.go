// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Error kinds shared by every layer. Specific errors wrap one of these so
// callers can classify failures with errors.Is.
var (
	// ErrValidation is returned when input or an entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a match, profile or slot does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the actor does not own the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict is returned when a state transition is not valid for the
	// current state of the resource.
	ErrConflict = errors.New("conflict")

	// ErrCapacityExhausted is the conflict raised when a provider has no
	// remaining capacity. It is surfaced distinctly on the accept path.
	ErrCapacityExhausted = fmt.Errorf("%w: provider capacity exhausted", ErrConflict)

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrUnauthorized is returned when no authenticated user is present.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error. A ValidationError always unwraps to
// ErrValidation when no more specific cause is given.
func (e *ValidationError) Unwrap() error {
	if e.Err == nil {
		return ErrValidation
	}
	return e.Err
}

// Is reports ErrValidation as a match so that every ValidationError can be
// classified even when it wraps a more specific cause.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
