package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dutrus/MESALIB/internal/api/shared"
	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/dutrus/MESALIB/internal/service"
	"github.com/dutrus/MESALIB/internal/service/auth"
	"github.com/dutrus/MESALIB/internal/store"
	"github.com/go-playground/validator/v10"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error kind. Specific sentinels wrap a domain kind, so the
// kinds are enough here.
func MapErrorToStatusCode(err error) int {
	var verrs validator.ValidationErrors

	switch {
	case err == nil:
		return http.StatusOK

	// Token errors wrap ErrUnauthorized
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, domain.ErrNotFound),
		store.IsNotFoundError(err):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrConflict),
		store.IsDuplicateError(err):
		return http.StatusConflict

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, shared.ErrEmptyBody),
		errors.As(err, &verrs):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var verr *domain.ValidationError
	var verrs validator.ValidationErrors

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case MapErrorToStatusCode(err) == http.StatusUnauthorized:
		return "Invalid token"

	// Forbidden
	case errors.Is(err, service.ErrNotMatchProvider):
		return "Match belongs to another provider"
	case errors.Is(err, service.ErrNotSlotOwner):
		return "Availability slot belongs to another provider"

	// Not found
	case errors.Is(err, service.ErrRequesterNotFound):
		return "Requester profile not found"
	case errors.Is(err, service.ErrProviderNotFound):
		return "Provider profile not found"
	case errors.Is(err, service.ErrMatchNotFound):
		return "Match not found"
	case errors.Is(err, service.ErrSlotNotFound):
		return "Availability slot not found"

	// Conflicts
	case errors.Is(err, domain.ErrCapacityExhausted):
		return "Provider has no remaining capacity"
	case errors.Is(err, service.ErrMatchAlreadyDeclined):
		return "Match was already declined"
	case errors.Is(err, service.ErrMatchAlreadyAccepted):
		return "Match was already accepted"
	case errors.Is(err, service.ErrMatchClosed):
		return "Match is completed"
	case errors.Is(err, service.ErrRequesterAlreadyMatched):
		return "Requester already has an accepted match"
	case errors.Is(err, service.ErrPendingCapReached):
		return "Requester already has the maximum number of pending matches"
	case errors.Is(err, service.ErrPairAlreadyMatched):
		return "Requester and provider were already matched"
	case errors.Is(err, service.ErrSlotOverlap):
		return "Availability slots overlap"
	case errors.Is(err, service.ErrProfileLocked):
		return "Profile cannot change after a match was accepted"
	case errors.Is(err, service.ErrMaxLoadBelowLoad):
		return "max_load cannot be below current load"
	case store.IsDuplicateError(err):
		return "Resource already exists"

	// Validation
	case errors.As(err, &verrs):
		return SanitizeValidationError(err)
	case errors.As(err, &verr):
		return "Invalid " + verr.Error()
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Validation error"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator errors into a message naming the
// first failing field by its JSON name.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}

	first := verrs[0]
	field := first.Field()
	if ns := first.Namespace(); strings.Contains(ns, ".") {
		_, field, _ = strings.Cut(ns, ".")
	}
	return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(first.Tag()))
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte", "gt":
		return "too small"
	case "max", "lte", "lt":
		return "too large"
	case "oneof":
		return "invalid value"
	case "datetime":
		return "invalid date"
	case "dive":
		return "invalid entry"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the response for err: its mapped status code and a
// safe message. A non-empty fallback replaces the generic message of
// unexpected errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	if errors.Is(err, domain.ErrCapacityExhausted) {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// HandleDecodeError writes a 400 response for a body that could not be decoded.
func HandleDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	message := "Invalid request format"
	if errors.Is(err, shared.ErrEmptyBody) {
		message = "Request body is required"
	}
	shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, message, err)
}
