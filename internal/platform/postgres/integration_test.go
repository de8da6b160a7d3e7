//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/dutrus/MESALIB/internal/platform/postgres"
	"github.com/dutrus/MESALIB/internal/store"
	"github.com/dutrus/MESALIB/internal/testdb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_IncrementLoadNeverExceedsMax(t *testing.T) {
	db := testdb.NewPostgres(t)
	b := postgres.NewBackend(db, nil)
	ctx := context.Background()

	p := newProvider(t, 3)
	require.NoError(t, b.Stores().Providers.Create(ctx, p))

	var (
		wg      sync.WaitGroup
		applied atomic.Int32
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := b.Stores().Providers.IncrementLoad(ctx, p.ID)
			assert.NoError(t, err)
			if ok {
				applied.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(3), applied.Load())
	got, err := b.Stores().Providers.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.CurrentLoad)
}

func TestIntegration_OneAcceptedMatchPerRequester(t *testing.T) {
	db := testdb.NewPostgres(t)
	b := postgres.NewBackend(db, nil)
	s := b.Stores()
	ctx := context.Background()

	r := newRequester(t)
	require.NoError(t, s.Requesters.Create(ctx, r))
	p1, p2 := newProvider(t, 2), newProvider(t, 2)
	require.NoError(t, s.Providers.Create(ctx, p1))
	require.NoError(t, s.Providers.Create(ctx, p2))

	m1, err := domain.NewMatch(r.ID, p1.ID, 60)
	require.NoError(t, err)
	m2, err := domain.NewMatch(r.ID, p2.ID, 50)
	require.NoError(t, err)
	for _, m := range []*domain.Match{m1, m2} {
		created, err := s.Matches.Create(ctx, m)
		require.NoError(t, err)
		require.True(t, created)
	}

	dup, err := domain.NewMatch(r.ID, p1.ID, 10)
	require.NoError(t, err)
	created, err := s.Matches.Create(ctx, dup)
	require.NoError(t, err)
	assert.False(t, created)

	accepted, err := s.Matches.Transition(ctx, m1.ID, p1.ID, domain.MatchPending, domain.MatchAccepted, fixedNow)
	require.NoError(t, err)
	require.NotNil(t, accepted)

	_, err = s.Matches.Transition(ctx, m2.ID, p2.ID, domain.MatchPending, domain.MatchAccepted, fixedNow)
	assert.ErrorIs(t, err, store.ErrAcceptedMatchExists)

	declined, err := s.Matches.DeclineOtherPending(ctx, r.ID, m1.ID, fixedNow)
	require.NoError(t, err)
	require.Len(t, declined, 1)
	assert.Equal(t, m2.ID, declined[0].ID)

	unmatched, err := s.Requesters.ListUnmatched(ctx)
	require.NoError(t, err)
	assert.Empty(t, unmatched)
}

func TestIntegration_SlotOverlapAndOwnership(t *testing.T) {
	db := testdb.NewPostgres(t)
	b := postgres.NewBackend(db, nil)
	s := b.Stores()
	ctx := context.Background()

	p := newProvider(t, 1)
	other := newProvider(t, 1)
	require.NoError(t, s.Providers.Create(ctx, p))
	require.NoError(t, s.Providers.Create(ctx, other))

	start := fixedNow
	slot, err := domain.NewAvailabilitySlot(p.ID, start, start.Add(time.Hour), "UTC")
	require.NoError(t, err)
	require.NoError(t, s.Slots.Upsert(ctx, slot))

	overlapping, err := s.Slots.FindOverlapping(ctx, p.ID, start.Add(30*time.Minute), start.Add(90*time.Minute), nil)
	require.NoError(t, err)
	assert.Len(t, overlapping, 1)

	overlapping, err = s.Slots.FindOverlapping(ctx, p.ID, start, start.Add(time.Hour), []uuid.UUID{slot.ID})
	require.NoError(t, err)
	assert.Empty(t, overlapping)

	stolen := *slot
	stolen.ProviderID = other.ID
	assert.ErrorIs(t, s.Slots.Upsert(ctx, &stolen), store.ErrSlotNotFound)

	from, to := domain.DayBounds(start)
	day, err := s.Slots.ListByProviderRange(ctx, p.ID, from, to)
	require.NoError(t, err)
	assert.Len(t, day, 1)
}
