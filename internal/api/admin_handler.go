package api

import (
	"log/slog"
	"net/http"

	"github.com/dutrus/MESALIB/internal/api/shared"
	"github.com/dutrus/MESALIB/internal/platform/logger"
	"github.com/dutrus/MESALIB/internal/service"
)

// AdminHandler serves the operator routes used to pair requesters and
// providers by hand. Callers must hold the admin role.
type AdminHandler struct {
	lifecycle service.MatchLifecycle
	profiles  service.ProfileService
	logger    *slog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	lifecycle service.MatchLifecycle,
	profiles service.ProfileService,
	logger *slog.Logger,
) *AdminHandler {
	if lifecycle == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("lifecycle cannot be nil for AdminHandler")
	}
	if profiles == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("profiles cannot be nil for AdminHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{
		lifecycle: lifecycle,
		profiles:  profiles,
		logger:    logger.With(slog.String("component", "admin_handler")),
	}
}

// ListUnmatchedRequesters handles GET /admin/requesters/unmatched
func (h *AdminHandler) ListUnmatchedRequesters(w http.ResponseWriter, r *http.Request) {
	requesters, err := h.profiles.ListUnmatchedRequesters(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list requesters")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, requestersToResponse(requesters))
}

// ListProviders handles GET /admin/providers
func (h *AdminHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := h.profiles.ListProviders(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list providers")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, providersToResponse(providers))
}

// CreateMatch handles POST /admin/matches
func (h *AdminHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req CreateMatchRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	match, err := h.lifecycle.ProposeManual(r.Context(), req.RequesterID, req.ProviderID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create match")
		return
	}

	log.Info("manual match created",
		slog.String("admin_id", userID.String()),
		slog.String("match_id", match.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, matchToResponse(match))
}
