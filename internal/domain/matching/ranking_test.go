package matching

import (
	"testing"
	"time"

	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankProviders(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	r := requester(domain.BudgetLowCost, "anxiety", "grief")

	best := provider(domain.PriceSlidingScale, "anxiety", "grief")
	best.YearsExperience = 2

	tiedSenior := provider(domain.PriceSlidingScale, "anxiety", "grief")
	tiedSenior.YearsExperience = 15

	partial := provider(domain.PriceSlidingScale, "anxiety")
	partial.YearsExperience = 30

	full := provider(domain.PriceSlidingScale, "anxiety", "grief")
	full.CurrentLoad = full.MaxLoad

	closedFixed := provider(domain.PriceFixedRate, "anxiety", "grief")

	ranked := svc.RankProviders(r, []*domain.ProviderProfile{partial, full, best, closedFixed, tiedSenior})

	require.Len(t, ranked, 3)
	assert.Equal(t, tiedSenior.ID, ranked[0].Provider.ID, "ties broken by years of experience")
	assert.Equal(t, best.ID, ranked[1].Provider.ID)
	assert.Equal(t, partial.ID, ranked[2].Provider.ID)
	assert.Greater(t, ranked[1].Score, ranked[2].Score)
}

func TestRankProviders_DeterministicOnFullTie(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	r := requester(domain.BudgetStandard, "anxiety")

	a := provider(domain.PriceFixedRate, "anxiety")
	b := provider(domain.PriceFixedRate, "anxiety")

	first := svc.RankProviders(r, []*domain.ProviderProfile{a, b})
	second := svc.RankProviders(r, []*domain.ProviderProfile{b, a})

	require.Len(t, first, 2)
	assert.Equal(t, first[0].Provider.ID, second[0].Provider.ID)
}

func TestRankRequesters_HighUrgencyFirst(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	p := provider(domain.PriceSlidingScale, "anxiety", "grief")
	p.MaxLoad = 5

	now := time.Now().UTC()

	strong := requester(domain.BudgetStandard, "anxiety", "grief")
	strong.CreatedAt = now

	urgentWeak := requester(domain.BudgetStandard, "anxiety", "insomnia")
	urgentWeak.Urgency = domain.UrgencyHigh
	urgentWeak.CreatedAt = now

	earlierStrong := requester(domain.BudgetStandard, "anxiety", "grief")
	earlierStrong.CreatedAt = now.Add(-time.Hour)

	freeBudget := requester(domain.BudgetFree, "anxiety")

	ranked := svc.RankRequesters(p, []*domain.RequesterProfile{strong, freeBudget, earlierStrong, urgentWeak})

	require.Len(t, ranked, 3)
	assert.Equal(t, urgentWeak.ID, ranked[0].Requester.ID)
	assert.Equal(t, earlierStrong.ID, ranked[1].Requester.ID)
	assert.Equal(t, strong.ID, ranked[2].Requester.ID)
}

func TestRankRequesters_FullProviderYieldsNothing(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	p := provider(domain.PriceFree, "anxiety")
	p.CurrentLoad = 1

	ranked := svc.RankRequesters(p, []*domain.RequesterProfile{
		requester(domain.BudgetFree, "anxiety"),
		{ID: uuid.New(), Budget: domain.BudgetStandard, Urgency: domain.UrgencyHigh},
	})

	assert.Empty(t, ranked)
}
