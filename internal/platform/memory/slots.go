package memory

import (
	"context"
	"slices"
	"time"

	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/dutrus/MESALIB/internal/store"
	"github.com/google/uuid"
)

// SlotStore implements store.SlotStore in memory.
type SlotStore struct {
	h *handle
}

var _ store.SlotStore = (*SlotStore)(nil)

// Upsert implements store.SlotStore.Upsert
func (s *SlotStore) Upsert(ctx context.Context, slot *domain.AvailabilitySlot) error {
	if err := slot.Validate(); err != nil {
		return err
	}
	return s.h.do(ctx, func(d *dataset) error {
		if existing, ok := d.slots[slot.ID]; ok {
			if existing.ProviderID != slot.ProviderID {
				return store.ErrSlotNotFound
			}
			existing.Start = slot.Start.UTC()
			existing.End = slot.End.UTC()
			existing.Timezone = slot.Timezone
			return nil
		}
		c := copySlot(slot)
		c.Start = c.Start.UTC()
		c.End = c.End.UTC()
		d.slots[slot.ID] = c
		return nil
	})
}

// GetByID implements store.SlotStore.GetByID
func (s *SlotStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.AvailabilitySlot, error) {
	var out *domain.AvailabilitySlot
	err := s.h.do(ctx, func(d *dataset) error {
		slot, ok := d.slots[id]
		if !ok {
			return store.ErrSlotNotFound
		}
		out = copySlot(slot)
		return nil
	})
	return out, err
}

// ListByProviderRange implements store.SlotStore.ListByProviderRange
func (s *SlotStore) ListByProviderRange(
	ctx context.Context,
	providerID uuid.UUID,
	from, to time.Time,
) ([]*domain.AvailabilitySlot, error) {
	return s.filter(ctx, func(slot *domain.AvailabilitySlot) bool {
		return slot.ProviderID == providerID && !slot.Start.Before(from) && slot.Start.Before(to)
	})
}

// FindOverlapping implements store.SlotStore.FindOverlapping
func (s *SlotStore) FindOverlapping(
	ctx context.Context,
	providerID uuid.UUID,
	start, end time.Time,
	exclude []uuid.UUID,
) ([]*domain.AvailabilitySlot, error) {
	window := &domain.AvailabilitySlot{Start: start, End: end}
	return s.filter(ctx, func(slot *domain.AvailabilitySlot) bool {
		return slot.ProviderID == providerID &&
			!slices.Contains(exclude, slot.ID) &&
			slot.Overlaps(window)
	})
}

// Delete implements store.SlotStore.Delete
func (s *SlotStore) Delete(ctx context.Context, id, providerID uuid.UUID) error {
	return s.h.do(ctx, func(d *dataset) error {
		slot, ok := d.slots[id]
		if !ok || slot.ProviderID != providerID {
			return store.ErrSlotNotFound
		}
		delete(d.slots, id)
		return nil
	})
}

func (s *SlotStore) filter(
	ctx context.Context,
	keep func(slot *domain.AvailabilitySlot) bool,
) ([]*domain.AvailabilitySlot, error) {
	var out []*domain.AvailabilitySlot
	err := s.h.do(ctx, func(d *dataset) error {
		for _, slot := range d.slots {
			if keep(slot) {
				out = append(out, copySlot(slot))
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *domain.AvailabilitySlot) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})
	return out, err
}
