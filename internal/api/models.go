package api

import (
	"time"

	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/dutrus/MESALIB/internal/service"
	"github.com/google/uuid"
)

// RequesterRequest defines the payload for creating or replacing a
// requester profile.
type RequesterRequest struct {
	DisplayName   string   `json:"display_name"   validate:"required,max=120"`
	MainReason    string   `json:"main_reason"    validate:"required,max=500"`
	Country       string   `json:"country"        validate:"required,max=80"`
	Timezone      string   `json:"timezone"       validate:"omitempty,max=64"`
	Needs         []string `json:"needs"          validate:"max=20,dive,max=60"`
	Urgency       string   `json:"urgency"        validate:"omitempty,oneof=low medium high"`
	PreferredKind string   `json:"preferred_kind" validate:"omitempty,oneof=psychologist psychiatrist no-preference"`
	Languages     []string `json:"languages"      validate:"max=10,dive,max=40"`
	Budget        string   `json:"budget"         validate:"omitempty,oneof=free low-cost standard"`
}

// Fields converts the request into the domain's editable fields.
func (r RequesterRequest) Fields() domain.RequesterFields {
	return domain.RequesterFields{
		DisplayName:   r.DisplayName,
		MainReason:    r.MainReason,
		Country:       r.Country,
		Timezone:      r.Timezone,
		Needs:         r.Needs,
		Urgency:       domain.Urgency(r.Urgency),
		PreferredKind: domain.ProviderKind(r.PreferredKind),
		Languages:     r.Languages,
		Budget:        domain.BudgetTier(r.Budget),
	}
}

// ProviderRequest defines the payload for creating or replacing a provider
// profile. current_load is not accepted; it only changes through matches.
type ProviderRequest struct {
	DisplayName     string   `json:"display_name"     validate:"required,max=120"`
	Kind            string   `json:"kind"             validate:"required,oneof=psychologist psychiatrist other"`
	LicenseNumber   string   `json:"license_number"   validate:"max=60"`
	YearsExperience int      `json:"years_experience" validate:"gte=0,lte=80"`
	Country         string   `json:"country"          validate:"max=80"`
	Timezone        string   `json:"timezone"         validate:"omitempty,max=64"`
	Languages       []string `json:"languages"        validate:"max=10,dive,max=40"`
	Specialties     []string `json:"specialties"      validate:"max=30,dive,max=60"`
	Modalities      []string `json:"modalities"       validate:"max=20,dive,max=60"`
	SessionFormat   string   `json:"session_format"   validate:"omitempty,oneof=online in-person hybrid"`
	PriceTier       string   `json:"price_tier"       validate:"required,oneof=free sliding-scale fixed-rate"`
	OpenToLowCost   bool     `json:"open_to_low_cost"`
	MaxLoad         int      `json:"max_load"         validate:"gte=0,lte=500"`
}

// Fields converts the request into the domain's editable fields.
func (r ProviderRequest) Fields() domain.ProviderFields {
	return domain.ProviderFields{
		DisplayName:     r.DisplayName,
		Kind:            domain.ProviderKind(r.Kind),
		LicenseNumber:   r.LicenseNumber,
		YearsExperience: r.YearsExperience,
		Country:         r.Country,
		Timezone:        r.Timezone,
		Languages:       r.Languages,
		Specialties:     r.Specialties,
		Modalities:      r.Modalities,
		SessionFormat:   domain.SessionFormat(r.SessionFormat),
		PriceTier:       domain.PriceTier(r.PriceTier),
		OpenToLowCost:   r.OpenToLowCost,
		MaxLoad:         r.MaxLoad,
	}
}

// SlotRequest is one slot of a publish request. An id replaces an existing
// slot; without one a new slot is created.
type SlotRequest struct {
	ID       *uuid.UUID `json:"id,omitempty"`
	Start    time.Time  `json:"start"              validate:"required"`
	End      time.Time  `json:"end"                validate:"required"`
	Timezone string     `json:"timezone,omitempty" validate:"omitempty,max=64"`
}

// PublishAvailabilityRequest defines the payload for PUT
// /providers/me/availability.
type PublishAvailabilityRequest struct {
	Slots []SlotRequest `json:"slots" validate:"required,min=1,max=200,dive"`
}

// Inputs converts the request into service inputs.
func (r PublishAvailabilityRequest) Inputs() []service.SlotInput {
	inputs := make([]service.SlotInput, 0, len(r.Slots))
	for _, s := range r.Slots {
		inputs = append(inputs, service.SlotInput{
			ID:       s.ID,
			Start:    s.Start,
			End:      s.End,
			Timezone: s.Timezone,
		})
	}
	return inputs
}

// CreateMatchRequest defines the payload for POST /admin/matches.
type CreateMatchRequest struct {
	RequesterID uuid.UUID `json:"requester_id" validate:"required"`
	ProviderID  uuid.UUID `json:"provider_id"  validate:"required"`
}

// RequesterResponse represents a requester profile.
type RequesterResponse struct {
	ID            string    `json:"id"`
	DisplayName   string    `json:"display_name"`
	MainReason    string    `json:"main_reason"`
	Country       string    `json:"country"`
	Timezone      string    `json:"timezone"`
	Needs         []string  `json:"needs"`
	Urgency       string    `json:"urgency"`
	PreferredKind string    `json:"preferred_kind"`
	Languages     []string  `json:"languages"`
	Budget        string    `json:"budget"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProviderResponse represents a provider profile.
type ProviderResponse struct {
	ID              string    `json:"id"`
	DisplayName     string    `json:"display_name"`
	Kind            string    `json:"kind"`
	LicenseNumber   string    `json:"license_number,omitempty"`
	YearsExperience int       `json:"years_experience"`
	Country         string    `json:"country"`
	Timezone        string    `json:"timezone"`
	Languages       []string  `json:"languages"`
	Specialties     []string  `json:"specialties"`
	Modalities      []string  `json:"modalities"`
	SessionFormat   string    `json:"session_format"`
	PriceTier       string    `json:"price_tier"`
	OpenToLowCost   bool      `json:"open_to_low_cost"`
	MaxLoad         int       `json:"max_load"`
	CurrentLoad     int       `json:"current_load"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// MatchResponse represents a match.
type MatchResponse struct {
	ID          string     `json:"id"`
	RequesterID string     `json:"requester_id"`
	ProviderID  string     `json:"provider_id"`
	Status      string     `json:"status"`
	Score       int        `json:"score"`
	CreatedAt   time.Time  `json:"created_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	DeclinedAt  *time.Time `json:"declined_at,omitempty"`
}

// SlotResponse represents an availability slot.
type SlotResponse struct {
	ID         string    `json:"id"`
	ProviderID string    `json:"provider_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Timezone   string    `json:"timezone"`
}

func requesterToResponse(p *domain.RequesterProfile) RequesterResponse {
	return RequesterResponse{
		ID:            p.ID.String(),
		DisplayName:   p.DisplayName,
		MainReason:    p.MainReason,
		Country:       p.Country,
		Timezone:      p.Timezone,
		Needs:         nonNil(p.Needs),
		Urgency:       string(p.Urgency),
		PreferredKind: string(p.PreferredKind),
		Languages:     nonNil(p.Languages),
		Budget:        string(p.Budget),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func providerToResponse(p *domain.ProviderProfile) ProviderResponse {
	return ProviderResponse{
		ID:              p.ID.String(),
		DisplayName:     p.DisplayName,
		Kind:            string(p.Kind),
		LicenseNumber:   p.LicenseNumber,
		YearsExperience: p.YearsExperience,
		Country:         p.Country,
		Timezone:        p.Timezone,
		Languages:       nonNil(p.Languages),
		Specialties:     nonNil(p.Specialties),
		Modalities:      nonNil(p.Modalities),
		SessionFormat:   string(p.SessionFormat),
		PriceTier:       string(p.PriceTier),
		OpenToLowCost:   p.OpenToLowCost,
		MaxLoad:         p.MaxLoad,
		CurrentLoad:     p.CurrentLoad,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func matchToResponse(m *domain.Match) MatchResponse {
	return MatchResponse{
		ID:          m.ID.String(),
		RequesterID: m.RequesterID.String(),
		ProviderID:  m.ProviderID.String(),
		Status:      string(m.Status),
		Score:       m.Score,
		CreatedAt:   m.CreatedAt,
		AcceptedAt:  m.AcceptedAt,
		DeclinedAt:  m.DeclinedAt,
	}
}

func matchesToResponse(matches []*domain.Match) []MatchResponse {
	out := make([]MatchResponse, 0, len(matches))
	for _, m := range matches {
		out = append(out, matchToResponse(m))
	}
	return out
}

func requestersToResponse(profiles []*domain.RequesterProfile) []RequesterResponse {
	out := make([]RequesterResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, requesterToResponse(p))
	}
	return out
}

func providersToResponse(profiles []*domain.ProviderProfile) []ProviderResponse {
	out := make([]ProviderResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, providerToResponse(p))
	}
	return out
}

func slotsToResponse(slots []*domain.AvailabilitySlot) []SlotResponse {
	out := make([]SlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, SlotResponse{
			ID:         s.ID.String(),
			ProviderID: s.ProviderID.String(),
			Start:      s.Start,
			End:        s.End,
			Timezone:   s.Timezone,
		})
	}
	return out
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
