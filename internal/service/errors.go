package service

import (
	"errors"
	"fmt"

	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/dutrus/MESALIB/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// Each one wraps a domain error kind so that callers, and the API layer in
// particular, can classify failures with errors.Is without knowing every
// specific sentinel.
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in ServiceError with the failing operation
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps error kinds to HTTP status codes
var (
	// ErrRequesterNotFound indicates that the requester profile does not exist.
	ErrRequesterNotFound = fmt.Errorf("%w: requester profile", domain.ErrNotFound)

	// ErrProviderNotFound indicates that the provider profile does not exist.
	ErrProviderNotFound = fmt.Errorf("%w: provider profile", domain.ErrNotFound)

	// ErrMatchNotFound indicates that the match does not exist.
	ErrMatchNotFound = fmt.Errorf("%w: match", domain.ErrNotFound)

	// ErrSlotNotFound indicates that the availability slot does not exist.
	ErrSlotNotFound = fmt.Errorf("%w: availability slot", domain.ErrNotFound)

	// ErrNotMatchProvider indicates that the acting provider is not the
	// provider of the match.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotMatchProvider = fmt.Errorf("%w: match belongs to another provider", domain.ErrForbidden)

	// ErrNotSlotOwner indicates that the slot is owned by a different provider.
	ErrNotSlotOwner = fmt.Errorf("%w: slot belongs to another provider", domain.ErrForbidden)

	// ErrMatchAlreadyDeclined indicates an accept on a declined match.
	ErrMatchAlreadyDeclined = fmt.Errorf("%w: match already declined", domain.ErrConflict)

	// ErrMatchAlreadyAccepted indicates a decline on an accepted match.
	ErrMatchAlreadyAccepted = fmt.Errorf("%w: match already accepted", domain.ErrConflict)

	// ErrMatchClosed indicates a transition on a completed match.
	ErrMatchClosed = fmt.Errorf("%w: match is completed", domain.ErrConflict)

	// ErrRequesterAlreadyMatched indicates an accept for a requester who
	// already has an accepted match with another provider.
	ErrRequesterAlreadyMatched = fmt.Errorf("%w: requester already has an accepted match", domain.ErrConflict)

	// ErrPendingCapReached indicates a manual proposal for a requester who
	// already holds the maximum number of pending matches.
	ErrPendingCapReached = fmt.Errorf("%w: requester has too many pending matches", domain.ErrConflict)

	// ErrPairAlreadyMatched indicates a manual proposal for a requester and
	// provider that were paired before, whatever that match's status.
	ErrPairAlreadyMatched = fmt.Errorf("%w: requester and provider were already paired", domain.ErrConflict)

	// ErrSlotOverlap indicates that a slot overlaps another slot of the
	// same provider.
	ErrSlotOverlap = fmt.Errorf("%w: availability slots overlap", domain.ErrConflict)

	// ErrProfileLocked indicates an update to a requester profile that
	// already has an accepted match.
	ErrProfileLocked = fmt.Errorf("%w: profile cannot change after a match was accepted", domain.ErrConflict)

	// ErrMaxLoadBelowLoad indicates a provider update lowering max_load
	// below the number of requesters already accepted.
	ErrMaxLoadBelowLoad = fmt.Errorf("%w: max_load cannot be below current load", domain.ErrConflict)
)

// ServiceError wraps errors from the services with context.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "accept_match", "publish_availability")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
// Errors that already carry a domain kind (not found, forbidden, conflict,
// validation) are returned directly without wrapping; store-level not found
// errors are mapped to the service sentinels first.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if mapped := mapStoreError(err); mapped != nil {
		return mapped
	}

	if isClassified(err) {
		return err
	}

	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// mapStoreError translates store sentinels into service sentinels. It
// returns nil for errors it does not know.
func mapStoreError(err error) error {
	switch {
	case errors.Is(err, store.ErrRequesterNotFound):
		return ErrRequesterNotFound
	case errors.Is(err, store.ErrProviderNotFound):
		return ErrProviderNotFound
	case errors.Is(err, store.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, store.ErrSlotNotFound):
		return ErrSlotNotFound
	case errors.Is(err, store.ErrAcceptedMatchExists):
		return ErrRequesterAlreadyMatched
	}
	return nil
}

func isClassified(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrForbidden) ||
		errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, domain.ErrValidation)
}
