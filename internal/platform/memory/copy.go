package memory

import (
	"bytes"
	"slices"

	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/google/uuid"
)

func copyRequester(r *domain.RequesterProfile) *domain.RequesterProfile {
	c := *r
	c.Needs = slices.Clone(r.Needs)
	c.Languages = slices.Clone(r.Languages)
	return &c
}

func copyProvider(p *domain.ProviderProfile) *domain.ProviderProfile {
	c := *p
	c.Languages = slices.Clone(p.Languages)
	c.Specialties = slices.Clone(p.Specialties)
	c.Modalities = slices.Clone(p.Modalities)
	return &c
}

func copyMatch(m *domain.Match) *domain.Match {
	c := *m
	if m.AcceptedAt != nil {
		t := *m.AcceptedAt
		c.AcceptedAt = &t
	}
	if m.DeclinedAt != nil {
		t := *m.DeclinedAt
		c.DeclinedAt = &t
	}
	return &c
}

func copySlot(s *domain.AvailabilitySlot) *domain.AvailabilitySlot {
	c := *s
	return &c
}

func copyIntent(i *domain.NotificationIntent) *domain.NotificationIntent {
	c := *i
	c.Payload = bytes.Clone(i.Payload)
	return &c
}

func compareIDs(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}
