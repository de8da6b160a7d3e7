package api

import (
	"log/slog"
	"net/http"

	"github.com/dutrus/MESALIB/internal/api/shared"
	"github.com/dutrus/MESALIB/internal/platform/logger"
	"github.com/dutrus/MESALIB/internal/service"
)

// ProfileHandler handles requester and provider profile requests. Every
// route acts on the profile owned by the authenticated user.
type ProfileHandler struct {
	profiles service.ProfileService
	logger   *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profiles service.ProfileService, logger *slog.Logger) *ProfileHandler {
	if profiles == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("profiles cannot be nil for ProfileHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileHandler{
		profiles: profiles,
		logger:   logger.With(slog.String("component", "profile_handler")),
	}
}

// CreateRequester handles POST /requesters. It answers 201 with a new
// profile, or 200 with the existing one when the user already has one.
func (h *ProfileHandler) CreateRequester(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req RequesterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, created, err := h.profiles.CreateRequesterProfile(r.Context(), userID, req.Fields())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create requester profile")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	shared.RespondWithJSON(w, r, status, requesterToResponse(profile))
}

// GetRequester handles GET /requesters/me
func (h *ProfileHandler) GetRequester(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	profile, err := h.profiles.GetRequesterByOwner(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get requester profile")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, requesterToResponse(profile))
}

// UpdateRequester handles PUT /requesters/me
func (h *ProfileHandler) UpdateRequester(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req RequesterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := h.profiles.UpdateRequesterProfile(r.Context(), userID, req.Fields())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update requester profile")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, requesterToResponse(profile))
}

// CreateProvider handles POST /providers. It answers 201 with a new
// profile, or 200 with the existing one when the user already has one.
func (h *ProfileHandler) CreateProvider(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req ProviderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, created, err := h.profiles.CreateProviderProfile(r.Context(), userID, req.Fields())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create provider profile")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	shared.RespondWithJSON(w, r, status, providerToResponse(profile))
}

// GetProvider handles GET /providers/me
func (h *ProfileHandler) GetProvider(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	profile, err := h.profiles.GetProviderByOwner(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get provider profile")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, providerToResponse(profile))
}

// UpdateProvider handles PUT /providers/me
func (h *ProfileHandler) UpdateProvider(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req ProviderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := h.profiles.UpdateProviderProfile(r.Context(), userID, req.Fields())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update provider profile")
		return
	}

	log.Debug("provider profile updated", slog.String("provider_id", profile.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, providerToResponse(profile))
}
