package store

import (
	"context"

	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/google/uuid"
)

// RequesterStore defines the interface for requester profile persistence.
type RequesterStore interface {
	// Create saves a new requester profile.
	// Returns ErrProfileExists if the owner already has one.
	Create(ctx context.Context, profile *domain.RequesterProfile) error

	// GetByID retrieves a requester profile by its ID.
	// Returns ErrRequesterNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RequesterProfile, error)

	// GetByOwner retrieves the requester profile of an owner user.
	// Returns ErrRequesterNotFound if the owner has none.
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.RequesterProfile, error)

	// LockByID retrieves a requester profile and locks it until the
	// surrounding transaction ends. Proposals for the same requester
	// serialize on this lock.
	LockByID(ctx context.Context, id uuid.UUID) (*domain.RequesterProfile, error)

	// Update saves the owner-editable fields of a requester profile.
	// Returns ErrRequesterNotFound if it does not exist.
	Update(ctx context.Context, profile *domain.RequesterProfile) error

	// ListUnmatched returns every requester without an accepted match,
	// oldest first.
	ListUnmatched(ctx context.Context) ([]*domain.RequesterProfile, error)
}

// ProviderStore defines the interface for provider profile persistence.
// It also carries the conditional load writes of the capacity ledger.
type ProviderStore interface {
	// Create saves a new provider profile.
	// Returns ErrProfileExists if the owner already has one.
	Create(ctx context.Context, profile *domain.ProviderProfile) error

	// GetByID retrieves a provider profile by its ID.
	// Returns ErrProviderNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ProviderProfile, error)

	// GetByOwner retrieves the provider profile of an owner user.
	// Returns ErrProviderNotFound if the owner has none.
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.ProviderProfile, error)

	// LockByID retrieves a provider profile and locks it until the
	// surrounding transaction ends.
	LockByID(ctx context.Context, id uuid.UUID) (*domain.ProviderProfile, error)

	// Update saves the owner-editable fields of a provider profile. It never
	// writes current_load, and it only applies when the new max_load is not
	// below the stored current_load; otherwise it reports false.
	// Returns ErrProviderNotFound if it does not exist.
	Update(ctx context.Context, profile *domain.ProviderProfile) (bool, error)

	// ListWithSpareCapacity returns providers with current_load < max_load.
	ListWithSpareCapacity(ctx context.Context) ([]*domain.ProviderProfile, error)

	// List returns every provider, newest first.
	List(ctx context.Context) ([]*domain.ProviderProfile, error)

	// IncrementLoad adds one to current_load only while current_load < max_load,
	// as a single conditional write. It reports whether a row changed.
	IncrementLoad(ctx context.Context, id uuid.UUID) (bool, error)

	// DecrementLoad subtracts one from current_load only while it is above
	// zero. It reports whether a row changed.
	DecrementLoad(ctx context.Context, id uuid.UUID) (bool, error)
}
