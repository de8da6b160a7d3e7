package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dutrus/MESALIB/internal/api/shared"
	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/dutrus/MESALIB/internal/platform/logger"
	"github.com/dutrus/MESALIB/internal/service"
	"github.com/google/uuid"
)

// AvailabilityManager is the part of the availability service used by the API.
type AvailabilityManager interface {
	Publish(ctx context.Context, providerID uuid.UUID, inputs []service.SlotInput) ([]*domain.AvailabilitySlot, error)
	List(ctx context.Context, providerID uuid.UUID, from, to time.Time) ([]*domain.AvailabilitySlot, error)
	ListForDay(ctx context.Context, providerID uuid.UUID, day time.Time) ([]*domain.AvailabilitySlot, error)
	Delete(ctx context.Context, slotID, providerID uuid.UUID) error
}

var _ AvailabilityManager = (*service.AvailabilityService)(nil)

// AvailabilityHandler handles availability slot requests.
type AvailabilityHandler struct {
	availability AvailabilityManager
	profiles     service.ProfileService
	logger       *slog.Logger
}

// NewAvailabilityHandler creates a new AvailabilityHandler
func NewAvailabilityHandler(
	availability AvailabilityManager,
	profiles service.ProfileService,
	logger *slog.Logger,
) *AvailabilityHandler {
	if availability == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("availability cannot be nil for AvailabilityHandler")
	}
	if profiles == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("profiles cannot be nil for AvailabilityHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AvailabilityHandler{
		availability: availability,
		profiles:     profiles,
		logger:       logger.With(slog.String("component", "availability_handler")),
	}
}

// Publish handles PUT /providers/me/availability
func (h *AvailabilityHandler) Publish(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req PublishAvailabilityRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	provider, err := h.profiles.GetProviderByOwner(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to publish availability")
		return
	}

	slots, err := h.availability.Publish(r.Context(), provider.ID, req.Inputs())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to publish availability")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, slotsToResponse(slots))
}

// List handles GET /providers/{id}/availability with either
// ?date=YYYY-MM-DD or ?from=...&to=... (RFC 3339).
func (h *AvailabilityHandler) List(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	_, providerID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	window, err := parseAvailabilityWindow(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if _, err := h.profiles.GetProvider(r.Context(), providerID); err != nil {
		HandleAPIError(w, r, err, "Failed to list availability")
		return
	}

	var slots []*domain.AvailabilitySlot
	if !window.Day.IsZero() {
		slots, err = h.availability.ListForDay(r.Context(), providerID, window.Day)
	} else {
		slots, err = h.availability.List(r.Context(), providerID, window.From, window.To)
	}
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list availability")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, slotsToResponse(slots))
}

// Delete handles DELETE /availability/{id}
func (h *AvailabilityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, slotID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	provider, err := h.profiles.GetProviderByOwner(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete availability")
		return
	}

	if err := h.availability.Delete(r.Context(), slotID, provider.ID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete availability")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
