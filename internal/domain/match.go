package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MatchStatus represents the lifecycle state of a match.
type MatchStatus string

// Possible match status values
const (
	MatchPending   MatchStatus = "pending"
	MatchAccepted  MatchStatus = "accepted"
	MatchDeclined  MatchStatus = "declined"
	MatchCompleted MatchStatus = "completed"
)

// Valid reports whether s is a known match status.
func (s MatchStatus) Valid() bool {
	switch s {
	case MatchPending, MatchAccepted, MatchDeclined, MatchCompleted:
		return true
	}
	return false
}

// Terminal reports whether no lifecycle transition leaves s.
func (s MatchStatus) Terminal() bool {
	return s != MatchPending
}

// CanTransition reports whether the lifecycle allows from -> to.
// Only pending matches move, and only to accepted or declined.
func CanTransition(from, to MatchStatus) bool {
	return from == MatchPending && (to == MatchAccepted || to == MatchDeclined)
}

// Match pairs one requester with one provider.
type Match struct {
	ID          uuid.UUID   `json:"id"`
	RequesterID uuid.UUID   `json:"requester_id"`
	ProviderID  uuid.UUID   `json:"provider_id"`
	Status      MatchStatus `json:"status"`
	Score       int         `json:"score"`
	CreatedAt   time.Time   `json:"created_at"`
	AcceptedAt  *time.Time  `json:"accepted_at,omitempty"`
	DeclinedAt  *time.Time  `json:"declined_at,omitempty"`
}

// NewMatch creates a pending match between a requester and a provider.
func NewMatch(requesterID, providerID uuid.UUID, score int) (*Match, error) {
	m := &Match{
		ID:          uuid.New(),
		RequesterID: requesterID,
		ProviderID:  providerID,
		Status:      MatchPending,
		Score:       score,
		CreatedAt:   time.Now().UTC(),
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks if the Match has valid data.
func (m *Match) Validate() error {
	if m.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if m.RequesterID == uuid.Nil {
		return NewValidationError("requester_id", "cannot be empty", ErrInvalidID)
	}
	if m.ProviderID == uuid.Nil {
		return NewValidationError("provider_id", "cannot be empty", ErrInvalidID)
	}
	if !m.Status.Valid() {
		return NewValidationError("status", fmt.Sprintf("%q is not a valid match status", m.Status), nil)
	}
	if m.Score < 0 || m.Score > 100 {
		return NewValidationError("score", "must be between 0 and 100", nil)
	}
	return nil
}

// Transition moves the match to status to, stamping the matching timestamp.
// It returns ErrConflict when the lifecycle forbids the move.
func (m *Match) Transition(to MatchStatus, at time.Time) error {
	if !CanTransition(m.Status, to) {
		return fmt.Errorf("%w: cannot move match from %s to %s", ErrConflict, m.Status, to)
	}
	at = at.UTC()
	m.Status = to
	switch to {
	case MatchAccepted:
		m.AcceptedAt = &at
	case MatchDeclined:
		m.DeclinedAt = &at
	}
	return nil
}
