package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dutrus/MESALIB/internal/api/shared"
	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/dutrus/MESALIB/internal/platform/logger"
	"github.com/dutrus/MESALIB/internal/service"
	"github.com/google/uuid"
)

// MatchHandler handles match listing and the provider's accept and decline
// decisions.
type MatchHandler struct {
	lifecycle service.MatchLifecycle
	profiles  service.ProfileService
	logger    *slog.Logger
}

// NewMatchHandler creates a new MatchHandler
func NewMatchHandler(
	lifecycle service.MatchLifecycle,
	profiles service.ProfileService,
	logger *slog.Logger,
) *MatchHandler {
	if lifecycle == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("lifecycle cannot be nil for MatchHandler")
	}
	if profiles == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("profiles cannot be nil for MatchHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MatchHandler{
		lifecycle: lifecycle,
		profiles:  profiles,
		logger:    logger.With(slog.String("component", "match_handler")),
	}
}

// ListRequesterMatches handles GET /requesters/me/matches
func (h *MatchHandler) ListRequesterMatches(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	requester, err := h.profiles.GetRequesterByOwner(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list matches")
		return
	}

	matches, err := h.lifecycle.ListForRequester(r.Context(), requester.ID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list matches")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, matchesToResponse(matches))
}

// ListProviderMatches handles GET /providers/me/matches?status=pending|accepted.
// The status defaults to pending.
func (h *MatchHandler) ListProviderMatches(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	status := domain.MatchStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = domain.MatchPending
	}
	if status != domain.MatchPending && status != domain.MatchAccepted {
		HandleAPIError(w, r, domain.NewValidationError("status", "must be pending or accepted", nil), "")
		return
	}

	provider, err := h.profiles.GetProviderByOwner(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list matches")
		return
	}

	var matches []*domain.Match
	if status == domain.MatchAccepted {
		matches, err = h.lifecycle.ListAcceptedForProvider(r.Context(), provider.ID)
	} else {
		matches, err = h.lifecycle.ListPendingForProvider(r.Context(), provider.ID)
	}
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list matches")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, matchesToResponse(matches))
}

// AcceptMatch handles POST /matches/{id}/accept
func (h *MatchHandler) AcceptMatch(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "accept", h.lifecycle.Accept)
}

// DeclineMatch handles POST /matches/{id}/decline
func (h *MatchHandler) DeclineMatch(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "decline", h.lifecycle.Decline)
}

// decide resolves the acting provider from the authenticated user and
// applies the decision to the match in the path.
func (h *MatchHandler) decide(
	w http.ResponseWriter,
	r *http.Request,
	action string,
	apply func(ctx context.Context, matchID, actingProviderID uuid.UUID) (*domain.Match, error),
) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, matchID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	provider, err := h.profiles.GetProviderByOwner(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to "+action+" match")
		return
	}

	match, err := apply(r.Context(), matchID, provider.ID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to "+action+" match")
		return
	}

	log.Debug("match decided",
		slog.String("action", action),
		slog.String("match_id", matchID.String()),
		slog.String("status", string(match.Status)))
	shared.RespondWithJSON(w, r, http.StatusOK, matchToResponse(match))
}
