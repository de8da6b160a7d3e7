package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrMatchNotFound, ErrSlotNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a second profile for the same owner).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransient is returned when the database aborted the statement because
	// of a serialization failure or deadlock. The operation is safe to retry.
	ErrTransient = errors.New("transient store failure")

	// Entity-specific "not found" errors

	// ErrRequesterNotFound indicates that the requested requester profile does not exist.
	ErrRequesterNotFound = fmt.Errorf("%w: requester profile", ErrNotFound)

	// ErrProviderNotFound indicates that the requested provider profile does not exist.
	ErrProviderNotFound = fmt.Errorf("%w: provider profile", ErrNotFound)

	// ErrMatchNotFound indicates that the requested match does not exist.
	ErrMatchNotFound = fmt.Errorf("%w: match", ErrNotFound)

	// ErrSlotNotFound indicates that the requested availability slot does not exist.
	ErrSlotNotFound = fmt.Errorf("%w: availability slot", ErrNotFound)

	// ErrIntentNotFound indicates that the requested notification intent does not exist.
	ErrIntentNotFound = fmt.Errorf("%w: notification intent", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrProfileExists indicates that the owner already has a profile of that kind.
	ErrProfileExists = fmt.Errorf("%w: profile for owner", ErrDuplicate)

	// ErrAcceptedMatchExists indicates that the requester already has an
	// accepted match. Backed by a partial unique index in SQL stores.
	ErrAcceptedMatchExists = fmt.Errorf("%w: accepted match for requester", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
// All entity-specific not found errors wrap ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// IsTransientError reports whether the operation may succeed when retried.
func IsTransientError(err error) bool {
	return errors.Is(err, ErrTransient)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "match", "slot")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
