package service

import (
	"context"
	"sync"
	"testing"

	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/dutrus/MESALIB/internal/domain/matching"
	"github.com/dutrus/MESALIB/internal/metrics"
	"github.com/dutrus/MESALIB/internal/platform/memory"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

// recordingEmitter keeps every emitted intent in order.
type recordingEmitter struct {
	mu      sync.Mutex
	intents []*domain.NotificationIntent
}

func (e *recordingEmitter) Emit(_ context.Context, intent *domain.NotificationIntent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.intents = append(e.intents, intent)
}

func (e *recordingEmitter) Types() []domain.IntentType {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.IntentType, 0, len(e.intents))
	for _, i := range e.intents {
		out = append(out, i.Type)
	}
	return out
}

func (e *recordingEmitter) All() []*domain.NotificationIntent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*domain.NotificationIntent(nil), e.intents...)
}

type fixture struct {
	backend   *memory.Backend
	metrics   *metrics.Metrics
	emitter   *recordingEmitter
	lifecycle *MatchLifecycleService
	auto      *AutoMatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	b := memory.NewBackend(nil)
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	em := &recordingEmitter{}

	lc, err := NewMatchLifecycleService(b, matching.NewDefaultService(), em, m, LifecycleConfig{}, nil)
	require.NoError(t, err)
	auto := NewAutoMatcher(lc, m, nil)
	lc.SetRematcher(auto)

	return &fixture{backend: b, metrics: m, emitter: em, lifecycle: lc, auto: auto}
}

// requester stores a low-cost requester needing help with anxiety. It does
// not fire any trigger.
func (f *fixture) requester(t *testing.T, mutate ...func(*domain.RequesterFields)) *domain.RequesterProfile {
	t.Helper()

	fields := domain.RequesterFields{
		DisplayName: "Ana",
		MainReason:  "panic attacks at work",
		Country:     "AR",
		Needs:       []string{"anxiety"},
		Budget:      domain.BudgetLowCost,
	}
	for _, fn := range mutate {
		fn(&fields)
	}

	r, err := domain.NewRequesterProfile(uuid.New(), fields)
	require.NoError(t, err)
	require.NoError(t, f.backend.Stores().Requesters.Create(context.Background(), r))
	return r
}

// provider stores a fixed-rate psychologist open to low cost, covering
// anxiety and stress. It does not fire any trigger.
func (f *fixture) provider(t *testing.T, maxLoad int, mutate ...func(*domain.ProviderFields)) *domain.ProviderProfile {
	t.Helper()

	fields := domain.ProviderFields{
		DisplayName:     "Dr. Ruiz",
		Kind:            domain.KindPsychologist,
		YearsExperience: 5,
		Specialties:     []string{"anxiety", "stress"},
		PriceTier:       domain.PriceFixedRate,
		OpenToLowCost:   true,
		MaxLoad:         maxLoad,
	}
	for _, fn := range mutate {
		fn(&fields)
	}

	p, err := domain.NewProviderProfile(uuid.New(), fields)
	require.NoError(t, err)
	require.NoError(t, f.backend.Stores().Providers.Create(context.Background(), p))
	return p
}

func (f *fixture) pendingMatch(t *testing.T, r *domain.RequesterProfile, p *domain.ProviderProfile) *domain.Match {
	t.Helper()

	m, err := domain.NewMatch(r.ID, p.ID, 50)
	require.NoError(t, err)
	created, err := f.backend.Stores().Matches.Create(context.Background(), m)
	require.NoError(t, err)
	require.True(t, created)
	return m
}

func (f *fixture) fill(t *testing.T, p *domain.ProviderProfile, units int) {
	t.Helper()
	for i := 0; i < units; i++ {
		ok, err := f.backend.Stores().Providers.IncrementLoad(context.Background(), p.ID)
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func (f *fixture) load(t *testing.T, providerID uuid.UUID) int {
	t.Helper()
	p, err := f.backend.Stores().Providers.GetByID(context.Background(), providerID)
	require.NoError(t, err)
	return p.CurrentLoad
}

func (f *fixture) match(t *testing.T, id uuid.UUID) *domain.Match {
	t.Helper()
	m, err := f.backend.Stores().Matches.GetByID(context.Background(), id)
	require.NoError(t, err)
	return m
}

func (f *fixture) count(t *testing.T, requesterID uuid.UUID, status domain.MatchStatus) int {
	t.Helper()
	n, err := f.backend.Stores().Matches.CountByRequester(context.Background(), requesterID, status)
	require.NoError(t, err)
	return n
}
