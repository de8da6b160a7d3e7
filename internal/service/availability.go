package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/dutrus/MESALIB/internal/platform/logger"
	"github.com/dutrus/MESALIB/internal/store"
	"github.com/google/uuid"
)

// SlotInput is one slot in a publish request. A nil ID creates a new slot;
// an ID of an existing slot of the same provider replaces its window.
type SlotInput struct {
	ID       *uuid.UUID
	Start    time.Time
	End      time.Time
	Timezone string
}

// AvailabilityService manages the time windows providers offer.
// Slots of one provider never overlap; this is checked at write time.
type AvailabilityService struct {
	backend store.Backend
	logger  *slog.Logger
}

// NewAvailabilityService creates an AvailabilityService.
// It returns an error if backend is nil.
func NewAvailabilityService(backend store.Backend, logger *slog.Logger) (*AvailabilityService, error) {
	if backend == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "backend cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AvailabilityService{
		backend: backend,
		logger:  logger.With("component", "availability_service"),
	}, nil
}

// Publish validates and stores a batch of slots for providerID in one
// transaction with the provider locked. The batch is rejected as a whole if
// any slot is invalid or overlaps another slot of the batch or a stored one.
func (s *AvailabilityService) Publish(
	ctx context.Context,
	providerID uuid.UUID,
	inputs []SlotInput,
) ([]*domain.AvailabilitySlot, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	slots, err := buildSlots(providerID, inputs)
	if err != nil {
		return nil, err
	}

	batchIDs := make([]uuid.UUID, 0, len(slots))
	for _, slot := range slots {
		batchIDs = append(batchIDs, slot.ID)
	}

	err = s.backend.WithinTx(ctx, func(ctx context.Context, st store.Stores) error {
		if _, err := st.Providers.LockByID(ctx, providerID); err != nil {
			return err
		}

		for i, slot := range slots {
			if inputs[i].ID != nil {
				existing, err := st.Slots.GetByID(ctx, slot.ID)
				if err != nil {
					return err
				}
				if existing.ProviderID != providerID {
					return ErrNotSlotOwner
				}
				slot.CreatedAt = existing.CreatedAt
			}

			overlapping, err := st.Slots.FindOverlapping(ctx, providerID, slot.Start, slot.End, batchIDs)
			if err != nil {
				return err
			}
			if len(overlapping) > 0 {
				return fmt.Errorf("%w: %s-%s collides with slot %s",
					ErrSlotOverlap,
					slot.Start.Format(time.RFC3339),
					slot.End.Format(time.RFC3339),
					overlapping[0].ID)
			}
		}

		for _, slot := range slots {
			if err := st.Slots.Upsert(ctx, slot); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, NewServiceError("publish_availability", "failed to publish availability", err)
	}

	log.Info("availability published",
		"provider_id", providerID,
		"slots", len(slots))

	sort.Slice(slots, func(i, j int) bool { return slots[i].Start.Before(slots[j].Start) })
	return slots, nil
}

// List returns the provider's slots starting in [from, to), ordered by start.
func (s *AvailabilityService) List(
	ctx context.Context,
	providerID uuid.UUID,
	from, to time.Time,
) ([]*domain.AvailabilitySlot, error) {
	if !to.After(from) {
		return nil, domain.NewValidationError("to", "must be after from", nil)
	}

	slots, err := s.backend.Stores().Slots.ListByProviderRange(ctx, providerID, from.UTC(), to.UTC())
	if err != nil {
		return nil, NewServiceError("list_availability", "failed to list availability", err)
	}
	return slots, nil
}

// ListForDay returns the provider's slots starting on the UTC calendar day
// of day.
func (s *AvailabilityService) ListForDay(
	ctx context.Context,
	providerID uuid.UUID,
	day time.Time,
) ([]*domain.AvailabilitySlot, error) {
	from, to := domain.DayBounds(day)
	return s.List(ctx, providerID, from, to)
}

// Delete removes a slot. It returns ErrSlotNotFound when the slot does not
// exist and ErrNotSlotOwner when it belongs to another provider.
func (s *AvailabilityService) Delete(ctx context.Context, slotID, providerID uuid.UUID) error {
	err := s.backend.WithinTx(ctx, func(ctx context.Context, st store.Stores) error {
		slot, err := st.Slots.GetByID(ctx, slotID)
		if err != nil {
			return err
		}
		if slot.ProviderID != providerID {
			return ErrNotSlotOwner
		}
		return st.Slots.Delete(ctx, slotID, providerID)
	})
	if err != nil {
		return NewServiceError("delete_availability", "failed to delete slot", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("availability slot deleted",
		"slot_id", slotID,
		"provider_id", providerID)
	return nil
}

// buildSlots validates a publish batch on its own: every slot, unique IDs
// and no overlap inside the batch. The result keeps the input order.
func buildSlots(providerID uuid.UUID, inputs []SlotInput) ([]*domain.AvailabilitySlot, error) {
	if len(inputs) == 0 {
		return nil, domain.NewValidationError("slots", "cannot be empty", nil)
	}

	slots := make([]*domain.AvailabilitySlot, 0, len(inputs))
	seen := make(map[uuid.UUID]struct{}, len(inputs))

	for i, in := range inputs {
		slot, err := domain.NewAvailabilitySlot(providerID, in.Start, in.End, in.Timezone)
		if err != nil {
			return nil, domain.NewValidationError(fmt.Sprintf("slots[%d]", i), err.Error(), err)
		}
		if in.ID != nil {
			if *in.ID == uuid.Nil {
				return nil, domain.NewValidationError(fmt.Sprintf("slots[%d].id", i), "cannot be empty", domain.ErrInvalidID)
			}
			slot.ID = *in.ID
		}
		if _, dup := seen[slot.ID]; dup {
			return nil, domain.NewValidationError(fmt.Sprintf("slots[%d].id", i), "appears more than once", nil)
		}
		seen[slot.ID] = struct{}{}
		slots = append(slots, slot)
	}

	ordered := make([]*domain.AvailabilitySlot, len(slots))
	copy(ordered, slots)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Start.Before(ordered[j].Start) })
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].Overlaps(ordered[i]) {
			return nil, fmt.Errorf("%w: slots in the request overlap", ErrSlotOverlap)
		}
	}

	return slots, nil
}
