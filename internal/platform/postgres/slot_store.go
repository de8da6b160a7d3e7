package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/dutrus/MESALIB/internal/platform/logger"
	"github.com/dutrus/MESALIB/internal/store"
	"github.com/google/uuid"
)

const slotColumns = `id, provider_id, start_time, end_time, timezone, created_at`

// PostgresSlotStore implements the store.SlotStore interface
// using a PostgreSQL database as the storage backend.
type PostgresSlotStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSlotStore creates a new PostgreSQL implementation of the SlotStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresSlotStore(db store.DBTX, logger *slog.Logger) *PostgresSlotStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSlotStore{
		db:     db,
		logger: logger.With(slog.String("component", "slot_store")),
	}
}

// Ensure PostgresSlotStore implements store.SlotStore interface
var _ store.SlotStore = (*PostgresSlotStore)(nil)

// Upsert implements store.SlotStore.Upsert
func (s *PostgresSlotStore) Upsert(ctx context.Context, slot *domain.AvailabilitySlot) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := slot.Validate(); err != nil {
		return err
	}

	// The conflict update only fires for the owning provider; for any other
	// provider the statement touches no row.
	query := `
		INSERT INTO availability_slots (` + slotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			timezone = EXCLUDED.timezone
		WHERE availability_slots.provider_id = EXCLUDED.provider_id
	`
	result, err := s.db.ExecContext(ctx, query,
		slot.ID,
		slot.ProviderID,
		slot.Start.UTC(),
		slot.End.UTC(),
		slot.Timezone,
		slot.CreatedAt,
	)
	if err != nil {
		log.Error("failed to upsert availability slot",
			slog.String("error", err.Error()),
			slog.String("slot_id", slot.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrSlotNotFound); err != nil {
		log.Warn("slot id belongs to another provider",
			slog.String("slot_id", slot.ID.String()),
			slog.String("provider_id", slot.ProviderID.String()))
		return err
	}

	log.Debug("availability slot saved",
		slog.String("slot_id", slot.ID.String()),
		slog.String("provider_id", slot.ProviderID.String()))
	return nil
}

// GetByID implements store.SlotStore.GetByID
func (s *PostgresSlotStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.AvailabilitySlot, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + slotColumns + ` FROM availability_slots WHERE id = $1`
	slot, err := scanSlot(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSlotNotFound
		}
		log.Error("failed to get availability slot",
			slog.String("error", err.Error()),
			slog.String("slot_id", id.String()))
		return nil, MapError(err)
	}
	return slot, nil
}

// ListByProviderRange implements store.SlotStore.ListByProviderRange
func (s *PostgresSlotStore) ListByProviderRange(
	ctx context.Context,
	providerID uuid.UUID,
	from, to time.Time,
) ([]*domain.AvailabilitySlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM availability_slots
		WHERE provider_id = $1 AND start_time >= $2 AND start_time < $3
		ORDER BY start_time ASC, id ASC
	`
	return s.list(ctx, query, providerID, from.UTC(), to.UTC())
}

// FindOverlapping implements store.SlotStore.FindOverlapping
func (s *PostgresSlotStore) FindOverlapping(
	ctx context.Context,
	providerID uuid.UUID,
	start, end time.Time,
	exclude []uuid.UUID,
) ([]*domain.AvailabilitySlot, error) {
	excluded := make([]string, 0, len(exclude))
	for _, id := range exclude {
		excluded = append(excluded, id.String())
	}
	excludedJSON, err := encodeTags(excluded)
	if err != nil {
		return nil, err
	}

	// Half-open ranges: touching slots do not overlap.
	query := `
		SELECT ` + slotColumns + `
		FROM availability_slots
		WHERE provider_id = $1 AND start_time < $3 AND end_time > $2
			AND NOT (id::text IN (SELECT jsonb_array_elements_text($4::jsonb)))
		ORDER BY start_time ASC
	`
	return s.list(ctx, query, providerID, start.UTC(), end.UTC(), excludedJSON)
}

// Delete implements store.SlotStore.Delete
func (s *PostgresSlotStore) Delete(ctx context.Context, id, providerID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM availability_slots WHERE id = $1 AND provider_id = $2`,
		id, providerID)
	if err != nil {
		log.Error("failed to delete availability slot",
			slog.String("error", err.Error()),
			slog.String("slot_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrSlotNotFound); err != nil {
		return err
	}

	log.Info("availability slot deleted",
		slog.String("slot_id", id.String()),
		slog.String("provider_id", providerID.String()))
	return nil
}

func (s *PostgresSlotStore) list(ctx context.Context, query string, args ...any) ([]*domain.AvailabilitySlot, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list availability slots",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.AvailabilitySlot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, store.NewStoreError("availability_slot", "scan", "failed to scan row", err)
		}
		out = append(out, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return out, nil
}

func scanSlot(row rowScanner) (*domain.AvailabilitySlot, error) {
	var slot domain.AvailabilitySlot
	if err := row.Scan(
		&slot.ID,
		&slot.ProviderID,
		&slot.Start,
		&slot.End,
		&slot.Timezone,
		&slot.CreatedAt,
	); err != nil {
		return nil, err
	}
	slot.Start = slot.Start.UTC()
	slot.End = slot.End.UTC()
	return &slot, nil
}
