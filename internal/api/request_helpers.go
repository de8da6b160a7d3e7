package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dutrus/MESALIB/internal/api/shared"
	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// dateLayout is the layout of the date query parameter.
const dateLayout = "2006-01-02"

// getUserIDFromContext extracts the authenticated owner's user ID placed in
// the context by the authentication middleware.
func getUserIDFromContext(r *http.Request) (uuid.UUID, bool) {
	return shared.UserID(r.Context())
}

// requireUserID returns the authenticated user ID or writes a 401 response.
func requireUserID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return uuid.Nil, false
	}
	return userID, true
}

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", nil)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}

// handleUserIDAndPathUUID extracts both the user ID from context and a UUID
// from the path. It writes an error response if either extraction fails.
func handleUserIDAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	log *slog.Logger,
) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	pathID, err := getPathUUID(r, paramName)
	if err != nil {
		log.Warn("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return uuid.Nil, uuid.Nil, false
	}

	return userID, pathID, true
}

// decodeAndValidate decodes the JSON body into req and validates it,
// writing a 400 response on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		HandleDecodeError(w, r, err)
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err, "")
		return false
	}
	return true
}

// availabilityWindow is the time filter of an availability listing. Day is
// set for date=YYYY-MM-DD queries; otherwise From and To bound the range.
type availabilityWindow struct {
	Day      time.Time
	From, To time.Time
}

// parseAvailabilityWindow reads the availability window from the query:
// either date=YYYY-MM-DD or from and to as RFC 3339 timestamps. A date takes
// precedence over a range.
func parseAvailabilityWindow(r *http.Request) (availabilityWindow, error) {
	q := r.URL.Query()

	if date := q.Get("date"); date != "" {
		day, err := time.Parse(dateLayout, date)
		if err != nil {
			return availabilityWindow{}, domain.NewValidationError("date", "must be formatted as YYYY-MM-DD", nil)
		}
		return availabilityWindow{Day: day}, nil
	}

	fromRaw, toRaw := q.Get("from"), q.Get("to")
	if fromRaw == "" || toRaw == "" {
		return availabilityWindow{}, domain.NewValidationError("date", "or both from and to are required", nil)
	}
	from, err := time.Parse(time.RFC3339, fromRaw)
	if err != nil {
		return availabilityWindow{}, domain.NewValidationError("from", "must be an RFC 3339 timestamp", nil)
	}
	to, err := time.Parse(time.RFC3339, toRaw)
	if err != nil {
		return availabilityWindow{}, domain.NewValidationError("to", "must be an RFC 3339 timestamp", nil)
	}
	return availabilityWindow{From: from, To: to}, nil
}
