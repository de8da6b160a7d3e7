package api

import (
	"github.com/dutrus/MESALIB/internal/api/middleware"
	"github.com/dutrus/MESALIB/internal/service/auth"
	"github.com/go-chi/chi/v5"
)

// Handlers groups the API handlers mounted under /api.
type Handlers struct {
	Profiles     *ProfileHandler
	Matches      *MatchHandler
	Availability *AvailabilityHandler

	// Admin is optional; the /admin routes are mounted only when it is set.
	Admin *AdminHandler
}

// Register mounts every authenticated route on r.
func (h *Handlers) Register(r chi.Router) {
	r.Post("/requesters", h.Profiles.CreateRequester)
	r.Get("/requesters/me", h.Profiles.GetRequester)
	r.Put("/requesters/me", h.Profiles.UpdateRequester)
	r.Get("/requesters/me/matches", h.Matches.ListRequesterMatches)

	r.Post("/providers", h.Profiles.CreateProvider)
	r.Get("/providers/me", h.Profiles.GetProvider)
	r.Put("/providers/me", h.Profiles.UpdateProvider)
	r.Get("/providers/me/matches", h.Matches.ListProviderMatches)
	r.Put("/providers/me/availability", h.Availability.Publish)
	r.Get("/providers/{id}/availability", h.Availability.List)

	r.Post("/matches/{id}/accept", h.Matches.AcceptMatch)
	r.Post("/matches/{id}/decline", h.Matches.DeclineMatch)

	r.Delete("/availability/{id}", h.Availability.Delete)

	if h.Admin != nil {
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleAdmin))
			r.Get("/requesters/unmatched", h.Admin.ListUnmatchedRequesters)
			r.Get("/providers", h.Admin.ListProviders)
			r.Post("/matches", h.Admin.CreateMatch)
		})
	}
}
