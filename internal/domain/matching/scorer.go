package matching

import (
	"math"
	"strings"

	"github.com/dutrus/MESALIB/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Service defines the compatibility scoring and ranking operations.
// Implementations are pure: no I/O and no shared mutable state.
type Service interface {
	// Score returns the compatibility of requester and provider in [0, MaxScore].
	Score(requester *domain.RequesterProfile, provider *domain.ProviderProfile) int

	// BudgetEligible reports whether provider's pricing is admissible for
	// requester at all, before scoring.
	BudgetEligible(requester *domain.RequesterProfile, provider *domain.ProviderProfile) bool

	// RankProviders scores eligible providers for requester, best first.
	RankProviders(requester *domain.RequesterProfile, providers []*domain.ProviderProfile) []ProviderCandidate

	// RankRequesters scores eligible requesters for provider, high urgency
	// first and best score next.
	RankRequesters(provider *domain.ProviderProfile, requesters []*domain.RequesterProfile) []RequesterCandidate
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scoring service with default weights
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new scoring service with custom weights
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{
		params: params,
	}
}

// Score computes the compatibility score with the default weights.
func Score(requester *domain.RequesterProfile, provider *domain.ProviderProfile) int {
	return score(NewDefaultParams(), requester, provider)
}

// Score implements the Service interface
func (s *defaultService) Score(requester *domain.RequesterProfile, provider *domain.ProviderProfile) int {
	return score(s.params, requester, provider)
}

// BudgetEligible implements the Service interface
func (s *defaultService) BudgetEligible(requester *domain.RequesterProfile, provider *domain.ProviderProfile) bool {
	return BudgetEligible(requester, provider)
}

// BudgetEligible reports whether a provider's price tier can serve the
// requester's budget. Free requesters only see free providers; low-cost
// requesters never see fixed-rate providers closed to low cost.
func BudgetEligible(requester *domain.RequesterProfile, provider *domain.ProviderProfile) bool {
	if requester == nil || provider == nil {
		return false
	}
	switch requester.Budget {
	case domain.BudgetFree:
		return provider.PriceTier == domain.PriceFree
	case domain.BudgetLowCost:
		return provider.PriceTier != domain.PriceFixedRate || provider.OpenToLowCost
	default:
		return true
	}
}

func score(params *Params, requester *domain.RequesterProfile, provider *domain.ProviderProfile) int {
	if requester == nil || provider == nil {
		return 0
	}

	// A full provider is never a valid target.
	if !provider.HasSpareCapacity() {
		return 0
	}

	total := needsPoints(params.NeedsWeight, requester.Needs, provider.Specialties)

	if sharesLanguage(requester.Languages, provider.Languages) {
		total += params.LanguageWeight
	}

	total += budgetPoints(params.BudgetRules, requester, provider)

	if kindAccepted(requester.PreferredKind, provider.Kind) {
		total += params.KindWeight
	}

	total += params.CapacityWeight

	if total > params.MaxScore {
		return params.MaxScore
	}
	if total < 0 {
		return 0
	}
	return total
}

func needsPoints(weight int, needs, specialties []string) int {
	normNeeds := normalizeAll(needs)
	normSpecs := normalizeAll(specialties)
	if len(normNeeds) == 0 || len(normSpecs) == 0 {
		return 0
	}

	matched := 0
	for _, need := range normNeeds {
		for _, specialty := range normSpecs {
			if strings.Contains(specialty, need) || strings.Contains(need, specialty) {
				matched++
				break
			}
		}
	}

	return int(math.Round(float64(weight) * float64(matched) / float64(len(normNeeds))))
}

func sharesLanguage(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	seen := make(map[string]struct{}, len(a))
	for _, lang := range normalizeAll(a) {
		seen[lang] = struct{}{}
	}
	for _, lang := range normalizeAll(b) {
		if _, ok := seen[lang]; ok {
			return true
		}
	}
	return false
}

func budgetPoints(rules []BudgetRule, requester *domain.RequesterProfile, provider *domain.ProviderProfile) int {
	for _, rule := range rules {
		if rule.Budget == requester.Budget && rule.Applies(provider) {
			return rule.Points
		}
	}
	return 0
}

func kindAccepted(preferred, kind domain.ProviderKind) bool {
	return preferred == "" || preferred == domain.KindNoPreference || preferred == kind
}

// normalizeAll folds case and composes accents so that "Estrés" and
// "estrés" compare equal. Blank tags are dropped.
func normalizeAll(tags []string) []string {
	// cases.Caser is stateful, so one per call.
	caser := cases.Fold()
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		out = append(out, caser.String(norm.NFC.String(tag)))
	}
	return out
}
