package service

import (
	"context"
	"sync"
	"testing"

	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTriggers struct {
	mu         sync.Mutex
	requesters []uuid.UUID
	providers  []uuid.UUID
}

func (r *recordingTriggers) RequesterCreated(_ context.Context, id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requesters = append(r.requesters, id)
}

func (r *recordingTriggers) ProviderCreated(_ context.Context, id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = append(r.providers, id)
}

func newProfileService(t *testing.T, f *fixture) (ProfileService, *recordingTriggers) {
	t.Helper()
	triggers := &recordingTriggers{}
	svc, err := NewProfileService(f.backend, triggers, nil)
	require.NoError(t, err)
	return svc, triggers
}

func TestNewProfileService_RequiresDependencies(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := NewProfileService(nil, &recordingTriggers{}, nil)
	assert.Error(t, err)
	_, err = NewProfileService(f.backend, nil, nil)
	assert.Error(t, err)
}

func TestCreateRequesterProfile_IdempotentPerOwner(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc, triggers := newProfileService(t, f)
	owner := uuid.New()
	fields := domain.RequesterFields{
		DisplayName: "Ana",
		MainReason:  "insomnia",
		Country:     "CL",
		Needs:       []string{" Sleep ", "sleep", ""},
	}

	first, created, err := svc.CreateRequesterProfile(context.Background(), owner, fields)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, domain.UrgencyMedium, first.Urgency)
	assert.Equal(t, domain.BudgetStandard, first.Budget)
	assert.Equal(t, domain.KindNoPreference, first.PreferredKind)
	assert.Equal(t, domain.DefaultTimezone, first.Timezone)

	fields.DisplayName = "Someone else"
	second, created, err := svc.CreateRequesterProfile(context.Background(), owner, fields)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Ana", second.DisplayName)

	assert.Equal(t, []uuid.UUID{first.ID}, triggers.requesters, "trigger fires only for a new profile")
}

func TestCreateRequesterProfile_Validation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc, triggers := newProfileService(t, f)

	_, _, err := svc.CreateRequesterProfile(context.Background(), uuid.New(), domain.RequesterFields{
		DisplayName: "Ana",
		MainReason:  "stress",
		Country:     "UY",
		Urgency:     "critical",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, triggers.requesters)
}

func TestCreateProviderProfile(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc, triggers := newProfileService(t, f)
	owner := uuid.New()
	fields := domain.ProviderFields{
		DisplayName: "Dr. Ruiz",
		Kind:        domain.KindPsychiatrist,
		PriceTier:   domain.PriceSlidingScale,
		MaxLoad:     4,
	}

	p, created, err := svc.CreateProviderProfile(context.Background(), owner, fields)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 0, p.CurrentLoad)
	assert.Equal(t, domain.SessionOnline, p.SessionFormat)

	again, created, err := svc.CreateProviderProfile(context.Background(), owner, fields)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, p.ID, again.ID)
	assert.Equal(t, []uuid.UUID{p.ID}, triggers.providers)

	byOwner, err := svc.GetProviderByOwner(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, p.ID, byOwner.ID)

	byID, err := svc.GetProvider(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, owner, byID.OwnerID)

	_, err = svc.GetProvider(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrProviderNotFound)
	_, err = svc.GetRequesterByOwner(context.Background(), owner)
	assert.ErrorIs(t, err, ErrRequesterNotFound)
}

func TestCreateProfiles_FireAutoMatch(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc, err := NewProfileService(f.backend, f.auto, nil)
	require.NoError(t, err)
	ctx := context.Background()

	p, _, err := svc.CreateProviderProfile(ctx, uuid.New(), domain.ProviderFields{
		DisplayName:   "Dr. Ruiz",
		Kind:          domain.KindPsychologist,
		Specialties:   []string{"anxiety"},
		PriceTier:     domain.PriceFixedRate,
		OpenToLowCost: true,
		MaxLoad:       1,
	})
	require.NoError(t, err)

	r, _, err := svc.CreateRequesterProfile(ctx, uuid.New(), domain.RequesterFields{
		DisplayName: "Ana",
		MainReason:  "anxiety",
		Country:     "AR",
		Needs:       []string{"anxiety"},
		Budget:      domain.BudgetLowCost,
	})
	require.NoError(t, err)

	matches, err := f.lifecycle.ListForRequester(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, p.ID, matches[0].ProviderID)
	assert.Equal(t, 80, matches[0].Score)
}

func TestUpdateRequesterProfile(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc, _ := newProfileService(t, f)
	ctx := context.Background()
	r := f.requester(t)

	updated, err := svc.UpdateRequesterProfile(ctx, r.OwnerID, domain.RequesterFields{
		DisplayName: "Ana M.",
		MainReason:  "grief",
		Country:     "AR",
		Needs:       []string{"grief"},
		Timezone:    "America/Argentina/Buenos_Aires",
	})
	require.NoError(t, err)
	assert.Equal(t, r.ID, updated.ID)
	assert.Equal(t, []string{"grief"}, updated.Needs)

	stored, err := svc.GetRequesterByOwner(ctx, r.OwnerID)
	require.NoError(t, err)
	assert.Equal(t, "Ana M.", stored.DisplayName)

	_, err = svc.UpdateRequesterProfile(ctx, r.OwnerID, domain.RequesterFields{DisplayName: ""})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.UpdateRequesterProfile(ctx, uuid.New(), domain.RequesterFields{DisplayName: "x"})
	assert.ErrorIs(t, err, ErrRequesterNotFound)
}

func TestUpdateRequesterProfile_LockedAfterAccept(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc, _ := newProfileService(t, f)
	r := f.requester(t)
	p := f.provider(t, 1)
	m := f.pendingMatch(t, r, p)
	_, err := f.lifecycle.Accept(context.Background(), m.ID, p.ID)
	require.NoError(t, err)

	_, err = svc.UpdateRequesterProfile(context.Background(), r.OwnerID, domain.RequesterFields{
		DisplayName: "Ana",
		MainReason:  "stress",
		Country:     "AR",
	})
	assert.ErrorIs(t, err, ErrProfileLocked)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUpdateProviderProfile(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc, _ := newProfileService(t, f)
	ctx := context.Background()
	p := f.provider(t, 3)
	f.fill(t, p, 2)

	fields := domain.ProviderFields{
		DisplayName: "Dr. Ruiz",
		Kind:        domain.KindPsychologist,
		PriceTier:   domain.PriceFree,
		MaxLoad:     1,
	}
	_, err := svc.UpdateProviderProfile(ctx, p.OwnerID, fields)
	assert.ErrorIs(t, err, ErrMaxLoadBelowLoad)

	fields.MaxLoad = 2
	updated, err := svc.UpdateProviderProfile(ctx, p.OwnerID, fields)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.MaxLoad)
	assert.Equal(t, 2, updated.CurrentLoad, "load is owned by the capacity ledger")
	assert.Equal(t, domain.PriceFree, updated.PriceTier)
	assert.Equal(t, 2, f.load(t, p.ID))
}

func TestProfileService_AdminListings(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc, _ := newProfileService(t, f)

	waiting := f.requester(t)
	matched := f.requester(t)
	p := f.provider(t, 2)
	full := f.provider(t, 1)
	f.fill(t, full, 1)

	m := f.pendingMatch(t, matched, p)
	_, err := f.lifecycle.Accept(context.Background(), m.ID, p.ID)
	require.NoError(t, err)

	requesters, err := svc.ListUnmatchedRequesters(context.Background())
	require.NoError(t, err)
	require.Len(t, requesters, 1)
	assert.Equal(t, waiting.ID, requesters[0].ID)

	providers, err := svc.ListProviders(context.Background())
	require.NoError(t, err)
	ids := make([]uuid.UUID, 0, len(providers))
	for _, pp := range providers {
		ids = append(ids, pp.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{p.ID, full.ID}, ids, "full providers are listed too")
}
