package memory

import (
	"context"
	"slices"
	"time"

	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/dutrus/MESALIB/internal/store"
	"github.com/google/uuid"
)

// RequesterStore implements store.RequesterStore in memory.
type RequesterStore struct {
	h *handle
}

var _ store.RequesterStore = (*RequesterStore)(nil)

// Create implements store.RequesterStore.Create
func (s *RequesterStore) Create(ctx context.Context, p *domain.RequesterProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.h.do(ctx, func(d *dataset) error {
		for _, existing := range d.requesters {
			if existing.OwnerID == p.OwnerID {
				return store.ErrProfileExists
			}
		}
		if _, ok := d.requesters[p.ID]; ok {
			return store.ErrDuplicate
		}
		d.requesters[p.ID] = copyRequester(p)
		return nil
	})
}

// GetByID implements store.RequesterStore.GetByID
func (s *RequesterStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.RequesterProfile, error) {
	var out *domain.RequesterProfile
	err := s.h.do(ctx, func(d *dataset) error {
		r, ok := d.requesters[id]
		if !ok {
			return store.ErrRequesterNotFound
		}
		out = copyRequester(r)
		return nil
	})
	return out, err
}

// GetByOwner implements store.RequesterStore.GetByOwner
func (s *RequesterStore) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.RequesterProfile, error) {
	var out *domain.RequesterProfile
	err := s.h.do(ctx, func(d *dataset) error {
		for _, r := range d.requesters {
			if r.OwnerID == ownerID {
				out = copyRequester(r)
				return nil
			}
		}
		return store.ErrRequesterNotFound
	})
	return out, err
}

// LockByID implements store.RequesterStore.LockByID
// Transactions are already serialized, so this is a plain read.
func (s *RequesterStore) LockByID(ctx context.Context, id uuid.UUID) (*domain.RequesterProfile, error) {
	return s.GetByID(ctx, id)
}

// Update implements store.RequesterStore.Update
func (s *RequesterStore) Update(ctx context.Context, p *domain.RequesterProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.h.do(ctx, func(d *dataset) error {
		current, ok := d.requesters[p.ID]
		if !ok {
			return store.ErrRequesterNotFound
		}
		updated := copyRequester(p)
		updated.OwnerID = current.OwnerID
		updated.CreatedAt = current.CreatedAt
		d.requesters[p.ID] = updated
		return nil
	})
}

// ListUnmatched implements store.RequesterStore.ListUnmatched
func (s *RequesterStore) ListUnmatched(ctx context.Context) ([]*domain.RequesterProfile, error) {
	var out []*domain.RequesterProfile
	err := s.h.do(ctx, func(d *dataset) error {
		accepted := make(map[uuid.UUID]bool)
		for _, m := range d.matches {
			if m.Status == domain.MatchAccepted {
				accepted[m.RequesterID] = true
			}
		}
		for _, r := range d.requesters {
			if !accepted[r.ID] {
				out = append(out, copyRequester(r))
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *domain.RequesterProfile) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})
	return out, err
}

// ProviderStore implements store.ProviderStore in memory.
type ProviderStore struct {
	h *handle
}

var _ store.ProviderStore = (*ProviderStore)(nil)

// Create implements store.ProviderStore.Create
func (s *ProviderStore) Create(ctx context.Context, p *domain.ProviderProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.h.do(ctx, func(d *dataset) error {
		for _, existing := range d.providers {
			if existing.OwnerID == p.OwnerID {
				return store.ErrProfileExists
			}
		}
		if _, ok := d.providers[p.ID]; ok {
			return store.ErrDuplicate
		}
		d.providers[p.ID] = copyProvider(p)
		return nil
	})
}

// GetByID implements store.ProviderStore.GetByID
func (s *ProviderStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProviderProfile, error) {
	var out *domain.ProviderProfile
	err := s.h.do(ctx, func(d *dataset) error {
		p, ok := d.providers[id]
		if !ok {
			return store.ErrProviderNotFound
		}
		out = copyProvider(p)
		return nil
	})
	return out, err
}

// GetByOwner implements store.ProviderStore.GetByOwner
func (s *ProviderStore) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.ProviderProfile, error) {
	var out *domain.ProviderProfile
	err := s.h.do(ctx, func(d *dataset) error {
		for _, p := range d.providers {
			if p.OwnerID == ownerID {
				out = copyProvider(p)
				return nil
			}
		}
		return store.ErrProviderNotFound
	})
	return out, err
}

// LockByID implements store.ProviderStore.LockByID
func (s *ProviderStore) LockByID(ctx context.Context, id uuid.UUID) (*domain.ProviderProfile, error) {
	return s.GetByID(ctx, id)
}

// Update implements store.ProviderStore.Update
func (s *ProviderStore) Update(ctx context.Context, p *domain.ProviderProfile) (bool, error) {
	applied := false
	err := s.h.do(ctx, func(d *dataset) error {
		current, ok := d.providers[p.ID]
		if !ok {
			return store.ErrProviderNotFound
		}
		if p.MaxLoad < current.CurrentLoad {
			return nil
		}
		updated := copyProvider(p)
		updated.OwnerID = current.OwnerID
		updated.CurrentLoad = current.CurrentLoad
		updated.CreatedAt = current.CreatedAt
		d.providers[p.ID] = updated
		applied = true
		return nil
	})
	return applied, err
}

// ListWithSpareCapacity implements store.ProviderStore.ListWithSpareCapacity
func (s *ProviderStore) ListWithSpareCapacity(ctx context.Context) ([]*domain.ProviderProfile, error) {
	var out []*domain.ProviderProfile
	err := s.h.do(ctx, func(d *dataset) error {
		for _, p := range d.providers {
			if p.HasSpareCapacity() {
				out = append(out, copyProvider(p))
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *domain.ProviderProfile) int {
		return compareIDs(a.ID, b.ID)
	})
	return out, err
}

// List implements store.ProviderStore.List
func (s *ProviderStore) List(ctx context.Context) ([]*domain.ProviderProfile, error) {
	var out []*domain.ProviderProfile
	err := s.h.do(ctx, func(d *dataset) error {
		for _, p := range d.providers {
			out = append(out, copyProvider(p))
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *domain.ProviderProfile) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})
	return out, err
}

// IncrementLoad implements store.ProviderStore.IncrementLoad
func (s *ProviderStore) IncrementLoad(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.adjust(ctx, id, func(p *domain.ProviderProfile) bool {
		if p.CurrentLoad >= p.MaxLoad {
			return false
		}
		p.CurrentLoad++
		return true
	})
}

// DecrementLoad implements store.ProviderStore.DecrementLoad
func (s *ProviderStore) DecrementLoad(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.adjust(ctx, id, func(p *domain.ProviderProfile) bool {
		if p.CurrentLoad <= 0 {
			return false
		}
		p.CurrentLoad--
		return true
	})
}

func (s *ProviderStore) adjust(ctx context.Context, id uuid.UUID, apply func(p *domain.ProviderProfile) bool) (bool, error) {
	changed := false
	err := s.h.do(ctx, func(d *dataset) error {
		p, ok := d.providers[id]
		if !ok {
			return nil
		}
		if apply(p) {
			p.UpdatedAt = time.Now().UTC()
			changed = true
		}
		return nil
	})
	return changed, err
}
