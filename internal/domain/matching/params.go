package matching

import (
	"github.com/dutrus/MESALIB/internal/domain"
)

// BudgetRule awards Points when a requester with Budget meets a provider
// accepted by Applies.
type BudgetRule struct {
	Budget  domain.BudgetTier
	Applies func(p *domain.ProviderProfile) bool
	Points  int
}

// Params defines every weight of the compatibility score.
type Params struct {
	// Proportional share for need/specialty overlap
	NeedsWeight int

	// Binary components
	LanguageWeight int
	KindWeight     int
	CapacityWeight int

	// Ordered budget table, first matching rule wins
	BudgetRules []BudgetRule

	MaxScore int
}

// ParamsConfig allows overriding the default weights when creating a new
// Params instance. Zero values keep the default.
type ParamsConfig struct {
	NeedsWeight    int
	LanguageWeight int
	KindWeight     int
	CapacityWeight int
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		NeedsWeight:    40,
		LanguageWeight: 20,
		KindWeight:     10,
		CapacityWeight: 10,
		BudgetRules:    DefaultBudgetRules(),
		MaxScore:       100,
	}
}

// NewParams creates a new Params instance with custom overrides.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.NeedsWeight > 0 {
		params.NeedsWeight = config.NeedsWeight
	}
	if config.LanguageWeight > 0 {
		params.LanguageWeight = config.LanguageWeight
	}
	if config.KindWeight > 0 {
		params.KindWeight = config.KindWeight
	}
	if config.CapacityWeight > 0 {
		params.CapacityWeight = config.CapacityWeight
	}

	return params
}

// DefaultBudgetRules returns the budget compatibility table. The
// standard/sliding-scale rule is shadowed by standard/anything-but-free and
// is kept so the table reads as the pricing policy is written.
func DefaultBudgetRules() []BudgetRule {
	return []BudgetRule{
		{
			Budget:  domain.BudgetFree,
			Applies: func(p *domain.ProviderProfile) bool { return p.PriceTier == domain.PriceFree },
			Points:  20,
		},
		{
			Budget: domain.BudgetLowCost,
			Applies: func(p *domain.ProviderProfile) bool {
				return p.OpenToLowCost || p.PriceTier == domain.PriceSlidingScale
			},
			Points: 20,
		},
		{
			Budget:  domain.BudgetLowCost,
			Applies: func(p *domain.ProviderProfile) bool { return p.PriceTier == domain.PriceFree },
			Points:  15,
		},
		{
			Budget:  domain.BudgetStandard,
			Applies: func(p *domain.ProviderProfile) bool { return p.PriceTier != domain.PriceFree },
			Points:  20,
		},
		{
			Budget:  domain.BudgetStandard,
			Applies: func(p *domain.ProviderProfile) bool { return p.PriceTier == domain.PriceSlidingScale },
			Points:  18,
		},
	}
}
