package domain

import (
	"time"

	"github.com/google/uuid"
)

// AvailabilitySlot is a time window a provider offers for sessions.
// Start and End are stored in UTC; Timezone records how the provider
// expressed the slot.
type AvailabilitySlot struct {
	ID         uuid.UUID `json:"id"`
	ProviderID uuid.UUID `json:"provider_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Timezone   string    `json:"timezone"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewAvailabilitySlot creates a slot for providerID.
func NewAvailabilitySlot(providerID uuid.UUID, start, end time.Time, timezone string) (*AvailabilitySlot, error) {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	s := &AvailabilitySlot{
		ID:         uuid.New(),
		ProviderID: providerID,
		Start:      start.UTC(),
		End:        end.UTC(),
		Timezone:   timezone,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks if the slot has valid data. End must be strictly after Start.
func (s *AvailabilitySlot) Validate() error {
	if s.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if s.ProviderID == uuid.Nil {
		return NewValidationError("provider_id", "cannot be empty", ErrInvalidID)
	}
	if s.Start.IsZero() || s.End.IsZero() {
		return NewValidationError("start", "and end are required", nil)
	}
	if !s.End.After(s.Start) {
		return NewValidationError("end", "must be after start", nil)
	}
	return ValidateTimezone("timezone", s.Timezone)
}

// Overlaps reports whether two slots share any instant. Slots are half-open,
// so one ending exactly when the other starts does not overlap.
func (s *AvailabilitySlot) Overlaps(other *AvailabilitySlot) bool {
	return s.Start.Before(other.End) && other.Start.Before(s.End)
}

// DayBounds returns [00:00, next 00:00) in UTC for the calendar day of t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
