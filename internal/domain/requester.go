package domain

import (
	"time"

	"github.com/google/uuid"
)

// Urgency expresses how soon a requester needs care.
type Urgency string

// Possible urgency values
const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Valid reports whether u is a known urgency.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return true
	}
	return false
}

// BudgetTier is what a requester can afford.
type BudgetTier string

// Possible budget tiers
const (
	BudgetFree     BudgetTier = "free"
	BudgetLowCost  BudgetTier = "low-cost"
	BudgetStandard BudgetTier = "standard"
)

// Valid reports whether b is a known budget tier.
func (b BudgetTier) Valid() bool {
	switch b {
	case BudgetFree, BudgetLowCost, BudgetStandard:
		return true
	}
	return false
}

// RequesterFields holds the owner-editable part of a requester profile.
type RequesterFields struct {
	DisplayName   string
	MainReason    string
	Country       string
	Timezone      string
	Needs         []string
	Urgency       Urgency
	PreferredKind ProviderKind
	Languages     []string
	Budget        BudgetTier
}

// RequesterProfile is a care-seeker looking for a provider.
type RequesterProfile struct {
	ID            uuid.UUID    `json:"id"`
	OwnerID       uuid.UUID    `json:"owner_id"`
	DisplayName   string       `json:"display_name"`
	MainReason    string       `json:"main_reason"`
	Country       string       `json:"country"`
	Timezone      string       `json:"timezone"`
	Needs         []string     `json:"needs"`
	Urgency       Urgency      `json:"urgency"`
	PreferredKind ProviderKind `json:"preferred_kind"`
	Languages     []string     `json:"languages"`
	Budget        BudgetTier   `json:"budget"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// NewRequesterProfile creates a requester profile owned by ownerID.
// Unset urgency, preference, budget and timezone fall back to medium,
// no-preference, standard and UTC.
func NewRequesterProfile(ownerID uuid.UUID, fields RequesterFields) (*RequesterProfile, error) {
	now := time.Now().UTC()
	p := &RequesterProfile{
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
func (p *RequesterProfile) ApplyUpdate(fields RequesterFields) error {
	updated := *p
	updated.apply(fields, time.Now().UTC())
	if err := updated.Validate(); err != nil {
		return err
	}
	*p = updated
	return nil
}

func (p *RequesterProfile) apply(fields RequesterFields, now time.Time) {
	p.DisplayName = fields.DisplayName
	p.MainReason = fields.MainReason
	p.Country = fields.Country
	p.Timezone = fields.Timezone
	p.Needs = CleanTags(fields.Needs)
	p.Urgency = fields.Urgency
	p.PreferredKind = fields.PreferredKind
	p.Languages = CleanTags(fields.Languages)
	p.Budget = fields.Budget
	p.UpdatedAt = now

	if p.Timezone == "" {
		p.Timezone = DefaultTimezone
	}
	if p.Urgency == "" {
		p.Urgency = UrgencyMedium
	}
	if p.PreferredKind == "" {
		p.PreferredKind = KindNoPreference
	}
	if p.Budget == "" {
		p.Budget = BudgetStandard
	}
}

// Validate checks if the RequesterProfile has valid data.
func (p *RequesterProfile) Validate() error {
	if p.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if p.OwnerID == uuid.Nil {
		return NewValidationError("owner_id", "cannot be empty", ErrInvalidID)
	}
	if err := requireText("display_name", p.DisplayName); err != nil {
		return err
	}
	if err := requireText("main_reason", p.MainReason); err != nil {
		return err
	}
	if err := requireText("country", p.Country); err != nil {
		return err
	}
	if !p.Urgency.Valid() {
		return NewValidationError("urgency", "must be one of low, medium, high", nil)
	}
	if !p.PreferredKind.ValidPreference() {
		return NewValidationError("preferred_kind", "must be psychologist, psychiatrist or no-preference", nil)
	}
	if !p.Budget.Valid() {
		return NewValidationError("budget", "must be one of free, low-cost, standard", nil)
	}
	return ValidateTimezone("timezone", p.Timezone)
}
