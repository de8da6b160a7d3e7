package store

import (
	"context"
	"time"

	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/google/uuid"
)

// SlotStore defines the interface for availability slot persistence.
type SlotStore interface {
	// Upsert inserts a slot, or replaces start, end and timezone of an
	// existing slot with the same ID owned by the same provider.
	// Returns ErrSlotNotFound if the ID exists but belongs to another provider.
	Upsert(ctx context.Context, slot *domain.AvailabilitySlot) error

	// GetByID retrieves a slot by its ID.
	// Returns ErrSlotNotFound if the slot does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.AvailabilitySlot, error)

	// ListByProviderRange returns the provider's slots whose start falls in
	// [from, to), ordered by start.
	ListByProviderRange(ctx context.Context, providerID uuid.UUID, from, to time.Time) ([]*domain.AvailabilitySlot, error)

	// FindOverlapping returns the provider's slots that overlap [start, end),
	// ignoring the slots listed in exclude.
	FindOverlapping(
		ctx context.Context,
		providerID uuid.UUID,
		start, end time.Time,
		exclude []uuid.UUID,
	) ([]*domain.AvailabilitySlot, error)

	// Delete removes a slot owned by providerID.
	// Returns ErrSlotNotFound if no such slot exists for that provider.
	Delete(ctx context.Context, id, providerID uuid.UUID) error
}
