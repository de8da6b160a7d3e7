package memory

import (
	"context"
	"slices"
	"time"

	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/dutrus/MESALIB/internal/store"
	"github.com/google/uuid"
)

// IntentStore implements store.IntentStore in memory.
type IntentStore struct {
	h *handle
}

var _ store.IntentStore = (*IntentStore)(nil)

// Save implements store.IntentStore.Save
func (s *IntentStore) Save(ctx context.Context, intent *domain.NotificationIntent) error {
	return s.h.do(ctx, func(d *dataset) error {
		if _, ok := d.intents[intent.ID]; ok {
			return store.ErrDuplicate
		}
		d.intents[intent.ID] = copyIntent(intent)
		return nil
	})
}

// GetByID implements store.IntentStore.GetByID
func (s *IntentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.NotificationIntent, error) {
	var out *domain.NotificationIntent
	err := s.h.do(ctx, func(d *dataset) error {
		intent, ok := d.intents[id]
		if !ok {
			return store.ErrIntentNotFound
		}
		out = copyIntent(intent)
		return nil
	})
	return out, err
}

// UpdateStatus implements store.IntentStore.UpdateStatus
func (s *IntentStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.IntentStatus,
	attempts int,
	lastError string,
) error {
	return s.h.do(ctx, func(d *dataset) error {
		intent, ok := d.intents[id]
		if !ok {
			return store.ErrIntentNotFound
		}
		intent.Status = status
		intent.Attempts = attempts
		intent.LastError = lastError
		intent.UpdatedAt = time.Now().UTC()
		return nil
	})
}

// ListPending implements store.IntentStore.ListPending
func (s *IntentStore) ListPending(
	ctx context.Context,
	olderThan time.Time,
	limit int,
) ([]*domain.NotificationIntent, error) {
	var out []*domain.NotificationIntent
	err := s.h.do(ctx, func(d *dataset) error {
		for _, intent := range d.intents {
			if intent.Status == domain.IntentPending && intent.UpdatedAt.Before(olderThan) {
				out = append(out, copyIntent(intent))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(out, func(a, b *domain.NotificationIntent) int {
		if c := a.UpdatedAt.Compare(b.UpdatedAt); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
