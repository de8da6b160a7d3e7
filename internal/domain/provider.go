package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProviderKind is the profession of a provider. Requesters use the same type
// to express a preference, where KindNoPreference is also allowed.
type ProviderKind string

// Possible provider kinds
const (
	KindPsychologist ProviderKind = "psychologist"
	KindPsychiatrist ProviderKind = "psychiatrist"
	KindOther        ProviderKind = "other"
	KindNoPreference ProviderKind = "no-preference"
)

// Valid reports whether k describes a provider's profession.
func (k ProviderKind) Valid() bool {
	switch k {
	case KindPsychologist, KindPsychiatrist, KindOther:
		return true
	}
	return false
}

// ValidPreference reports whether k is acceptable as a requester preference.
func (k ProviderKind) ValidPreference() bool {
	switch k {
	case KindPsychologist, KindPsychiatrist, KindNoPreference:
		return true
	}
	return false
}

// PriceTier is how a provider charges.
type PriceTier string

// Possible price tiers
const (
	PriceFree         PriceTier = "free"
	PriceSlidingScale PriceTier = "sliding-scale"
	PriceFixedRate    PriceTier = "fixed-rate"
)

// Valid reports whether t is a known price tier.
func (t PriceTier) Valid() bool {
	switch t {
	case PriceFree, PriceSlidingScale, PriceFixedRate:
		return true
	}
	return false
}

// SessionFormat is how a provider meets requesters.
type SessionFormat string

// Possible session formats
const (
	SessionOnline   SessionFormat = "online"
	SessionInPerson SessionFormat = "in-person"
	SessionHybrid   SessionFormat = "hybrid"
)

// Valid reports whether f is a known session format.
func (f SessionFormat) Valid() bool {
	switch f {
	case SessionOnline, SessionInPerson, SessionHybrid:
		return true
	}
	return false
}

// ProviderFields holds the owner-editable part of a provider profile.
// CurrentLoad is deliberately absent: only the capacity ledger changes it.
type ProviderFields struct {
	DisplayName     string
	Kind            ProviderKind
	LicenseNumber   string
	YearsExperience int
	Country         string
	Timezone        string
	Languages       []string
	Specialties     []string
	Modalities      []string
	SessionFormat   SessionFormat
	PriceTier       PriceTier
	OpenToLowCost   bool
	MaxLoad         int
}

// ProviderProfile is a care-giver accepting a bounded number of requesters.
type ProviderProfile struct {
	ID              uuid.UUID     `json:"id"`
	OwnerID         uuid.UUID     `json:"owner_id"`
	DisplayName     string        `json:"display_name"`
	Kind            ProviderKind  `json:"kind"`
	LicenseNumber   string        `json:"license_number"`
	YearsExperience int           `json:"years_experience"`
	Country         string        `json:"country"`
	Timezone        string        `json:"timezone"`
	Languages       []string      `json:"languages"`
	Specialties     []string      `json:"specialties"`
	Modalities      []string      `json:"modalities"`
	SessionFormat   SessionFormat `json:"session_format"`
	PriceTier       PriceTier     `json:"price_tier"`
	OpenToLowCost   bool          `json:"open_to_low_cost"`
	MaxLoad         int           `json:"max_load"`
	CurrentLoad     int           `json:"current_load"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// NewProviderProfile creates a provider profile owned by ownerID with an
// empty load.
func NewProviderProfile(ownerID uuid.UUID, fields ProviderFields) (*ProviderProfile, error) {
	now := time.Now().UTC()
	p := &ProviderProfile{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		CreatedAt: now,
	}
	p.apply(fields, now)

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// ApplyUpdate replaces the owner-editable fields and validates the result.
// The receiver is left untouched when validation fails.
func (p *ProviderProfile) ApplyUpdate(fields ProviderFields) error {
	updated := *p
	updated.apply(fields, time.Now().UTC())
	if err := updated.Validate(); err != nil {
		return err
	}
	*p = updated
	return nil
}

func (p *ProviderProfile) apply(fields ProviderFields, now time.Time) {
	p.DisplayName = fields.DisplayName
	p.Kind = fields.Kind
	p.LicenseNumber = fields.LicenseNumber
	p.YearsExperience = fields.YearsExperience
	p.Country = fields.Country
	p.Timezone = fields.Timezone
	p.Languages = CleanTags(fields.Languages)
	p.Specialties = CleanTags(fields.Specialties)
	p.Modalities = CleanTags(fields.Modalities)
	p.SessionFormat = fields.SessionFormat
	p.PriceTier = fields.PriceTier
	p.OpenToLowCost = fields.OpenToLowCost
	p.MaxLoad = fields.MaxLoad
	p.UpdatedAt = now

	if p.Timezone == "" {
		p.Timezone = DefaultTimezone
	}
	if p.SessionFormat == "" {
		p.SessionFormat = SessionOnline
	}
}

// Validate checks if the ProviderProfile has valid data, including the
// load invariant 0 <= current_load <= max_load.
func (p *ProviderProfile) Validate() error {
	if p.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if p.OwnerID == uuid.Nil {
		return NewValidationError("owner_id", "cannot be empty", ErrInvalidID)
	}
	if err := requireText("display_name", p.DisplayName); err != nil {
		return err
	}
	if !p.Kind.Valid() {
		return NewValidationError("kind", "must be psychologist, psychiatrist or other", nil)
	}
	if p.YearsExperience < 0 {
		return NewValidationError("years_experience", "cannot be negative", nil)
	}
	if !p.SessionFormat.Valid() {
		return NewValidationError("session_format", "must be online, in-person or hybrid", nil)
	}
	if !p.PriceTier.Valid() {
		return NewValidationError("price_tier", "must be free, sliding-scale or fixed-rate", nil)
	}
	if p.MaxLoad < 0 {
		return NewValidationError("max_load", "cannot be negative", nil)
	}
	if p.CurrentLoad < 0 || p.CurrentLoad > p.MaxLoad {
		return NewValidationError("current_load", "must be between 0 and max_load", nil)
	}
	return ValidateTimezone("timezone", p.Timezone)
}

// HasSpareCapacity reports whether the provider can take another requester.
func (p *ProviderProfile) HasSpareCapacity() bool {
	return p.CurrentLoad < p.MaxLoad
}

// SpareCapacity returns max_load - current_load, never below zero.
func (p *ProviderProfile) SpareCapacity() int {
	if p.CurrentLoad >= p.MaxLoad {
		return 0
	}
	return p.MaxLoad - p.CurrentLoad
}
