package store

import (
	"context"
	"time"

	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/google/uuid"
)

// MatchStore defines the interface for match persistence.
// Status changes are conditional writes: they apply only when the stored
// row is still in the expected state.
type MatchStore interface {
	// Create inserts a new match. It reports false, without error, when the
	// requester/provider pair already has a match row.
	// Returns ErrAcceptedMatchExists if the insert would give the requester a
	// second accepted match.
	Create(ctx context.Context, match *domain.Match) (bool, error)

	// GetByID retrieves a match by its ID.
	// Returns ErrMatchNotFound if the match does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Match, error)

	// Transition moves a match from status from to status to, stamping the
	// timestamp for to, but only if the stored status equals from and the
	// match belongs to providerID. It returns the updated row, or nil when
	// no row matched the guard.
	Transition(
		ctx context.Context,
		id, providerID uuid.UUID,
		from, to domain.MatchStatus,
		at time.Time,
	) (*domain.Match, error)

	// DeclineOtherPending declines every pending match of the requester
	// except keepID and returns the declined rows.
	DeclineOtherPending(
		ctx context.Context,
		requesterID, keepID uuid.UUID,
		at time.Time,
	) ([]*domain.Match, error)

	// CountByRequester returns how many matches of the requester have status.
	CountByRequester(ctx context.Context, requesterID uuid.UUID, status domain.MatchStatus) (int, error)

	// ListByRequester returns all matches of a requester, newest first.
	ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]*domain.Match, error)

	// ListByProvider returns the matches of a provider with status, newest first.
	ListByProvider(ctx context.Context, providerID uuid.UUID, status domain.MatchStatus) ([]*domain.Match, error)

	// ProviderIDsForRequester returns every provider already paired with the
	// requester, whatever the status.
	ProviderIDsForRequester(ctx context.Context, requesterID uuid.UUID) ([]uuid.UUID, error)

	// RequesterIDsForProvider returns every requester already paired with the
	// provider, whatever the status.
	RequesterIDsForProvider(ctx context.Context, providerID uuid.UUID) ([]uuid.UUID, error)
}
