//go:build integration

package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/dutrus/MESALIB/internal/domain/matching"
	"github.com/dutrus/MESALIB/internal/platform/postgres"
	"github.com/dutrus/MESALIB/internal/testdb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_ParallelAcceptsForLastSlot(t *testing.T) {
	const callers = 6

	db := testdb.NewPostgres(t)
	backend := postgres.NewBackend(db, nil)
	ctx := context.Background()
	s := backend.Stores()

	emitter := &recordingEmitter{}
	lc, err := NewMatchLifecycleService(backend, matching.NewDefaultService(), emitter, nil, LifecycleConfig{}, nil)
	require.NoError(t, err)

	p, err := domain.NewProviderProfile(uuid.New(), domain.ProviderFields{
		DisplayName: "Dr. Ruiz",
		Kind:        domain.KindPsychologist,
		PriceTier:   domain.PriceFree,
		MaxLoad:     2,
	})
	require.NoError(t, err)
	require.NoError(t, s.Providers.Create(ctx, p))
	ok, err := s.Providers.IncrementLoad(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, ok)

	matchIDs := make([]uuid.UUID, callers)
	for i := range matchIDs {
		r, err := domain.NewRequesterProfile(uuid.New(), domain.RequesterFields{
			DisplayName: "Ana",
			MainReason:  "stress",
			Country:     "AR",
		})
		require.NoError(t, err)
		require.NoError(t, s.Requesters.Create(ctx, r))

		m, err := domain.NewMatch(r.ID, p.ID, 40)
		require.NoError(t, err)
		created, err := s.Matches.Create(ctx, m)
		require.NoError(t, err)
		require.True(t, created)
		matchIDs[i] = m.ID
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		exhausted int
	)
	for _, id := range matchIDs {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := lc.Accept(ctx, id, p.ID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrCapacityExhausted):
				exhausted++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, callers-1, exhausted)

	got, err := s.Providers.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CurrentLoad)

	accepted, err := s.Matches.ListByProvider(ctx, p.ID, domain.MatchAccepted)
	require.NoError(t, err)
	assert.Len(t, accepted, 1)
}

func TestIntegration_AcceptDeclinesSiblingsAndRematches(t *testing.T) {
	db := testdb.NewPostgres(t)
	backend := postgres.NewBackend(db, nil)
	ctx := context.Background()
	s := backend.Stores()

	emitter := &recordingEmitter{}
	lc, err := NewMatchLifecycleService(backend, matching.NewDefaultService(), emitter, nil, LifecycleConfig{}, nil)
	require.NoError(t, err)
	lc.SetRematcher(NewAutoMatcher(lc, nil, nil))

	r, err := domain.NewRequesterProfile(uuid.New(), domain.RequesterFields{
		DisplayName: "Ana",
		MainReason:  "grief",
		Country:     "AR",
		Needs:       []string{"grief"},
		Budget:      domain.BudgetFree,
	})
	require.NoError(t, err)
	require.NoError(t, s.Requesters.Create(ctx, r))

	var providers []*domain.ProviderProfile
	for i := 0; i < 3; i++ {
		p, err := domain.NewProviderProfile(uuid.New(), domain.ProviderFields{
			DisplayName:     "Dr. Vega",
			Kind:            domain.KindPsychologist,
			YearsExperience: 10 - i,
			Specialties:     []string{"grief"},
			PriceTier:       domain.PriceFree,
			MaxLoad:         1,
		})
		require.NoError(t, err)
		require.NoError(t, s.Providers.Create(ctx, p))
		providers = append(providers, p)
	}

	first, err := lc.ProposeBestMatch(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, first.Created, 1)
	assert.Equal(t, providers[0].ID, first.Created[0].ProviderID)

	_, err = lc.Decline(ctx, first.Created[0].ID, providers[0].ID)
	require.NoError(t, err)

	pending, err := lc.ListPendingForProvider(ctx, providers[1].ID)
	require.NoError(t, err)
	require.Len(t, pending, 1, "decline rematches to the next best provider")

	second, err := lc.ProposeBestMatch(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, second.Created, 1)
	assert.Equal(t, providers[2].ID, second.Created[0].ProviderID)

	_, err = lc.Accept(ctx, pending[0].ID, providers[1].ID)
	require.NoError(t, err)

	n, err := s.Matches.CountByRequester(ctx, r.ID, domain.MatchPending)
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = s.Matches.CountByRequester(ctx, r.ID, domain.MatchAccepted)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestIntegration_RematchRacingAcceptLeavesNoPending(t *testing.T) {
	const rounds = 20

	db := testdb.NewPostgres(t)
	backend := postgres.NewBackend(db, nil)
	ctx := context.Background()
	s := backend.Stores()

	lc, err := NewMatchLifecycleService(backend, matching.NewDefaultService(), &recordingEmitter{}, nil, LifecycleConfig{}, nil)
	require.NoError(t, err)

	newProvider := func(name string) *domain.ProviderProfile {
		p, err := domain.NewProviderProfile(uuid.New(), domain.ProviderFields{
			DisplayName: name,
			Kind:        domain.KindPsychologist,
			Specialties: []string{"grief"},
			PriceTier:   domain.PriceFree,
			MaxLoad:     rounds,
		})
		require.NoError(t, err)
		require.NoError(t, s.Providers.Create(ctx, p))
		return p
	}
	accepting := newProvider("Dr. Ruiz")
	newProvider("Dr. Vega")

	for i := 0; i < rounds; i++ {
		r, err := domain.NewRequesterProfile(uuid.New(), domain.RequesterFields{
			DisplayName: "Ana",
			MainReason:  "grief",
			Country:     "AR",
			Needs:       []string{"grief"},
			Budget:      domain.BudgetFree,
		})
		require.NoError(t, err)
		require.NoError(t, s.Requesters.Create(ctx, r))

		m, err := domain.NewMatch(r.ID, accepting.ID, 60)
		require.NoError(t, err)
		created, err := s.Matches.Create(ctx, m)
		require.NoError(t, err)
		require.True(t, created)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := lc.Accept(ctx, m.ID, accepting.ID)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := lc.ProposeBestMatch(ctx, r.ID)
			assert.NoError(t, err)
		}()
		wg.Wait()

		accepted, err := s.Matches.CountByRequester(ctx, r.ID, domain.MatchAccepted)
		require.NoError(t, err)
		pending, err := s.Matches.CountByRequester(ctx, r.ID, domain.MatchPending)
		require.NoError(t, err)
		assert.Equal(t, 1, accepted, "round %d", i)
		assert.Zero(t, pending, "round %d", i)
	}
}
