package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/dutrus/MESALIB/internal/metrics"
	"github.com/dutrus/MESALIB/internal/store"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProviders answers IncrementLoad from a fixed script.
type scriptedProviders struct {
	store.ProviderStore
	increments []bool
	err        error
	calls      int
}

func (s *scriptedProviders) IncrementLoad(context.Context, uuid.UUID) (bool, error) {
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	ok := s.increments[0]
	s.increments = s.increments[1:]
	return ok, nil
}

func TestCapacityLedger_Reserve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		increments []bool
		wantErr    error
		wantCalls  int
		rejections float64
	}{
		{name: "first attempt", increments: []bool{true}, wantCalls: 1},
		{name: "second attempt", increments: []bool{false, true}, wantCalls: 2},
		{
			name:       "exhausted",
			increments: []bool{false, false},
			wantErr:    domain.ErrCapacityExhausted,
			wantCalls:  2,
			rejections: 1,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := metrics.NewWithRegisterer(prometheus.NewRegistry())
			providers := &scriptedProviders{increments: tt.increments}
			ledger := NewCapacityLedger(providers, m, nil)

			err := ledger.Reserve(context.Background(), uuid.New())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, providers.calls)
			assert.Equal(t, tt.rejections, testutil.ToFloat64(m.CapacityRejections))
		})
	}
}

func TestCapacityLedger_ReserveStoreFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	providers := &scriptedProviders{err: boom}
	ledger := NewCapacityLedger(providers, nil, nil)

	err := ledger.Reserve(context.Background(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrCapacityExhausted)
	assert.Equal(t, 1, providers.calls, "store failures are not retried here")
}

func TestCapacityLedger_IncrementAndDecrement(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	p := f.provider(t, 1)
	ledger := NewCapacityLedger(f.backend.Stores().Providers, f.metrics, nil)
	ctx := context.Background()

	ok, err := ledger.TryIncrement(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ledger.TryIncrement(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, ok, "load never exceeds max_load")
	assert.Equal(t, 1, f.load(t, p.ID))

	ok, err = ledger.Decrement(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ledger.Decrement(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, ok, "load never drops below zero")
	assert.Equal(t, 0, f.load(t, p.ID))
}

func TestCapacityLedger_WithStoreUsesTransaction(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	p := f.provider(t, 2)
	ledger := NewCapacityLedger(f.backend.Stores().Providers, nil, nil)
	rollback := errors.New("rollback")

	err := f.backend.WithinTx(context.Background(), func(ctx context.Context, st store.Stores) error {
		require.NoError(t, ledger.WithStore(st.Providers).Reserve(ctx, p.ID))
		return rollback
	})
	require.ErrorIs(t, err, rollback)
	assert.Equal(t, 0, f.load(t, p.ID))
}

func TestNewCapacityLedger_PanicsOnNilStore(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewCapacityLedger(nil, nil, nil) })
}
