package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/dutrus/MESALIB/internal/store"
	"github.com/google/uuid"
)

// MatchStore implements store.MatchStore in memory.
type MatchStore struct {
	h *handle
}

var _ store.MatchStore = (*MatchStore)(nil)

// Create implements store.MatchStore.Create
func (s *MatchStore) Create(ctx context.Context, m *domain.Match) (bool, error) {
	if err := m.Validate(); err != nil {
		return false, err
	}
	created := false
	err := s.h.do(ctx, func(d *dataset) error {
		if _, ok := d.requesters[m.RequesterID]; !ok {
			return fmt.Errorf("%w: requester %s does not exist", store.ErrInvalidEntity, m.RequesterID)
		}
		if _, ok := d.providers[m.ProviderID]; !ok {
			return fmt.Errorf("%w: provider %s does not exist", store.ErrInvalidEntity, m.ProviderID)
		}
		for _, existing := range d.matches {
			if existing.RequesterID == m.RequesterID && existing.ProviderID == m.ProviderID {
				return nil
			}
		}
		if m.Status == domain.MatchAccepted && hasAccepted(d, m.RequesterID) {
			return store.ErrAcceptedMatchExists
		}
		d.matches[m.ID] = copyMatch(m)
		created = true
		return nil
	})
	return created, err
}

// GetByID implements store.MatchStore.GetByID
func (s *MatchStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Match, error) {
	var out *domain.Match
	err := s.h.do(ctx, func(d *dataset) error {
		m, ok := d.matches[id]
		if !ok {
			return store.ErrMatchNotFound
		}
		out = copyMatch(m)
		return nil
	})
	return out, err
}

// Transition implements store.MatchStore.Transition
func (s *MatchStore) Transition(
	ctx context.Context,
	id, providerID uuid.UUID,
	from, to domain.MatchStatus,
	at time.Time,
) (*domain.Match, error) {
	if !domain.CanTransition(from, to) {
		return nil, fmt.Errorf("%w: cannot move match from %s to %s", domain.ErrConflict, from, to)
	}

	var out *domain.Match
	err := s.h.do(ctx, func(d *dataset) error {
		m, ok := d.matches[id]
		if !ok || m.ProviderID != providerID || m.Status != from {
			return nil
		}
		if to == domain.MatchAccepted && hasAccepted(d, m.RequesterID) {
			return store.ErrAcceptedMatchExists
		}
		if err := m.Transition(to, at); err != nil {
			return err
		}
		out = copyMatch(m)
		return nil
	})
	return out, err
}

// DeclineOtherPending implements store.MatchStore.DeclineOtherPending
func (s *MatchStore) DeclineOtherPending(
	ctx context.Context,
	requesterID, keepID uuid.UUID,
	at time.Time,
) ([]*domain.Match, error) {
	var out []*domain.Match
	err := s.h.do(ctx, func(d *dataset) error {
		for id, m := range d.matches {
			if m.RequesterID != requesterID || id == keepID || m.Status != domain.MatchPending {
				continue
			}
			if err := m.Transition(domain.MatchDeclined, at); err != nil {
				return err
			}
			out = append(out, copyMatch(m))
		}
		return nil
	})
	sortNewestFirst(out)
	return out, err
}

// CountByRequester implements store.MatchStore.CountByRequester
func (s *MatchStore) CountByRequester(
	ctx context.Context,
	requesterID uuid.UUID,
	status domain.MatchStatus,
) (int, error) {
	count := 0
	err := s.h.do(ctx, func(d *dataset) error {
		for _, m := range d.matches {
			if m.RequesterID == requesterID && m.Status == status {
				count++
			}
		}
		return nil
	})
	return count, err
}

// ListByRequester implements store.MatchStore.ListByRequester
func (s *MatchStore) ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]*domain.Match, error) {
	return s.filter(ctx, func(m *domain.Match) bool {
		return m.RequesterID == requesterID
	})
}

// ListByProvider implements store.MatchStore.ListByProvider
func (s *MatchStore) ListByProvider(
	ctx context.Context,
	providerID uuid.UUID,
	status domain.MatchStatus,
) ([]*domain.Match, error) {
	return s.filter(ctx, func(m *domain.Match) bool {
		return m.ProviderID == providerID && m.Status == status
	})
}

// ProviderIDsForRequester implements store.MatchStore.ProviderIDsForRequester
func (s *MatchStore) ProviderIDsForRequester(ctx context.Context, requesterID uuid.UUID) ([]uuid.UUID, error) {
	matches, err := s.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ProviderID)
	}
	return ids, nil
}

// RequesterIDsForProvider implements store.MatchStore.RequesterIDsForProvider
func (s *MatchStore) RequesterIDsForProvider(ctx context.Context, providerID uuid.UUID) ([]uuid.UUID, error) {
	matches, err := s.filter(ctx, func(m *domain.Match) bool {
		return m.ProviderID == providerID
	})
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.RequesterID)
	}
	return ids, nil
}

func (s *MatchStore) filter(ctx context.Context, keep func(m *domain.Match) bool) ([]*domain.Match, error) {
	var out []*domain.Match
	err := s.h.do(ctx, func(d *dataset) error {
		for _, m := range d.matches {
			if keep(m) {
				out = append(out, copyMatch(m))
			}
		}
		return nil
	})
	sortNewestFirst(out)
	return out, err
}

func hasAccepted(d *dataset, requesterID uuid.UUID) bool {
	for _, m := range d.matches {
		if m.RequesterID == requesterID && m.Status == domain.MatchAccepted {
			return true
		}
	}
	return false
}

func sortNewestFirst(matches []*domain.Match) {
	slices.SortFunc(matches, func(a, b *domain.Match) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})
}
