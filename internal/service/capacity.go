package service

import (
	"context"
	"log/slog"

	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/dutrus/MESALIB/internal/metrics"
	"github.com/dutrus/MESALIB/internal/platform/logger"
	"github.com/dutrus/MESALIB/internal/redact"
	"github.com/dutrus/MESALIB/internal/store"
	"github.com/google/uuid"
)

// CapacityLedger owns provider load. Every change is a single conditional
// write in the provider store, so two callers racing for the last unit of
// capacity can never both succeed.
type CapacityLedger struct {
	providers store.ProviderStore
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewCapacityLedger creates a CapacityLedger writing through providers.
// It panics if providers is nil.
func NewCapacityLedger(providers store.ProviderStore, m *metrics.Metrics, logger *slog.Logger) *CapacityLedger {
	if providers == nil {
		panic("providers cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CapacityLedger{
		providers: providers,
		metrics:   m,
		logger:    logger.With("component", "capacity_ledger"),
	}
}

// WithStore returns a ledger writing through providers, typically the
// provider store of an open transaction.
func (l *CapacityLedger) WithStore(providers store.ProviderStore) *CapacityLedger {
	return &CapacityLedger{
		providers: providers,
		metrics:   l.metrics,
		logger:    l.logger,
	}
}

// TryIncrement adds one to the provider's load if it is below max_load.
// It reports whether the load changed.
func (l *CapacityLedger) TryIncrement(ctx context.Context, providerID uuid.UUID) (bool, error) {
	ok, err := l.providers.IncrementLoad(ctx, providerID)
	if err != nil {
		return false, NewServiceError("increment_load", "failed to increment provider load", err)
	}
	return ok, nil
}

// Decrement subtracts one from the provider's load if it is above zero.
// It reports whether the load changed.
func (l *CapacityLedger) Decrement(ctx context.Context, providerID uuid.UUID) (bool, error) {
	log := logger.FromContextOrDefault(ctx, l.logger)

	ok, err := l.providers.DecrementLoad(ctx, providerID)
	if err != nil {
		return false, NewServiceError("decrement_load", "failed to decrement provider load", err)
	}
	if !ok {
		log.Warn("provider load already at zero", "provider_id", providerID)
	}
	return ok, nil
}

// Reserve takes one unit of capacity, retrying the conditional write once.
// It returns domain.ErrCapacityExhausted when both attempts are refused.
func (l *CapacityLedger) Reserve(ctx context.Context, providerID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, l.logger)

	for attempt := 1; attempt <= 2; attempt++ {
		ok, err := l.TryIncrement(ctx, providerID)
		if err != nil {
			log.Error("failed to reserve capacity",
				"error", redact.Error(err),
				"provider_id", providerID,
				"attempt", attempt)
			return err
		}
		if ok {
			return nil
		}
	}

	l.metrics.IncrementCapacityRejection()
	log.Info("provider capacity exhausted", "provider_id", providerID)
	return domain.ErrCapacityExhausted
}
