package matching

import (
	"sort"

	"github.com/dutrus/MESALIB/internal/domain"
)

// ProviderCandidate is a provider scored against one requester.
type ProviderCandidate struct {
	Provider *domain.ProviderProfile
	Score    int
}

// RequesterCandidate is a requester scored against one provider.
type RequesterCandidate struct {
	Requester *domain.RequesterProfile
	Score     int
}

// RankProviders implements the Service interface.
// Providers that are budget-ineligible or score 0 are dropped. The rest are
// ordered by score, then years of experience, both descending, with the ID
// as the final tiebreaker so the order never depends on input order.
func (s *defaultService) RankProviders(
	requester *domain.RequesterProfile,
	providers []*domain.ProviderProfile,
) []ProviderCandidate {
	candidates := make([]ProviderCandidate, 0, len(providers))
	for _, p := range providers {
		if !BudgetEligible(requester, p) {
			continue
		}
		if sc := score(s.params, requester, p); sc > 0 {
			candidates = append(candidates, ProviderCandidate{Provider: p, Score: sc})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Provider.YearsExperience != b.Provider.YearsExperience {
			return a.Provider.YearsExperience > b.Provider.YearsExperience
		}
		return a.Provider.ID.String() < b.Provider.ID.String()
	})

	return candidates
}

// RankRequesters implements the Service interface.
// High-urgency requesters come first regardless of score; within each group
// higher scores win, then earlier profiles, then the ID.
func (s *defaultService) RankRequesters(
	provider *domain.ProviderProfile,
	requesters []*domain.RequesterProfile,
) []RequesterCandidate {
	candidates := make([]RequesterCandidate, 0, len(requesters))
	for _, r := range requesters {
		if !BudgetEligible(r, provider) {
			continue
		}
		if sc := score(s.params, r, provider); sc > 0 {
			candidates = append(candidates, RequesterCandidate{Requester: r, Score: sc})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		aHigh := a.Requester.Urgency == domain.UrgencyHigh
		bHigh := b.Requester.Urgency == domain.UrgencyHigh
		if aHigh != bHigh {
			return aHigh
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.Requester.CreatedAt.Equal(b.Requester.CreatedAt) {
			return a.Requester.CreatedAt.Before(b.Requester.CreatedAt)
		}
		return a.Requester.ID.String() < b.Requester.ID.String()
	})

	return candidates
}
