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

const intentColumns = `id, type, recipient_id, payload, status, attempts, last_error, created_at, updated_at`

// PostgresIntentStore implements the store.IntentStore interface
// using a PostgreSQL database as the storage backend.
type PostgresIntentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresIntentStore creates a new PostgreSQL implementation of the IntentStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresIntentStore(db store.DBTX, logger *slog.Logger) *PostgresIntentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresIntentStore{
		db:     db,
		logger: logger.With(slog.String("component", "intent_store")),
	}
}

// Ensure PostgresIntentStore implements store.IntentStore interface
var _ store.IntentStore = (*PostgresIntentStore)(nil)

// Save implements store.IntentStore.Save
func (s *PostgresIntentStore) Save(ctx context.Context, intent *domain.NotificationIntent) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	payload := []byte(intent.Payload)
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	query := `
		INSERT INTO notification_intents (` + intentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		intent.ID,
		intent.Type,
		intent.RecipientID,
		payload,
		intent.Status,
		intent.Attempts,
		intent.LastError,
		intent.CreatedAt,
		intent.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to save notification intent",
			slog.String("error", err.Error()),
			slog.String("intent_id", intent.ID.String()),
			slog.String("type", string(intent.Type)))
		return MapError(err)
	}

	log.Debug("notification intent saved",
		slog.String("intent_id", intent.ID.String()),
		slog.String("type", string(intent.Type)))
	return nil
}

// GetByID implements store.IntentStore.GetByID
func (s *PostgresIntentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.NotificationIntent, error) {
	query := `SELECT ` + intentColumns + ` FROM notification_intents WHERE id = $1`
	intent, err := scanIntent(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrIntentNotFound
		}
		return nil, MapError(err)
	}
	return intent, nil
}

// UpdateStatus implements store.IntentStore.UpdateStatus
func (s *PostgresIntentStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.IntentStatus,
	attempts int,
	lastError string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE notification_intents
		SET status = $1, attempts = $2, last_error = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := s.db.ExecContext(ctx, query, status, attempts, lastError, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update notification intent",
			slog.String("error", err.Error()),
			slog.String("intent_id", id.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrIntentNotFound)
}

// ListPending implements store.IntentStore.ListPending
func (s *PostgresIntentStore) ListPending(
	ctx context.Context,
	olderThan time.Time,
	limit int,
) ([]*domain.NotificationIntent, error) {
	query := `
		SELECT ` + intentColumns + `
		FROM notification_intents
		WHERE status = 'pending' AND updated_at < $1
		ORDER BY updated_at ASC, id ASC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, olderThan.UTC(), limit)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list pending intents",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.NotificationIntent
	for rows.Next() {
		intent, err := scanIntent(rows)
		if err != nil {
			return nil, store.NewStoreError("notification_intent", "scan", "failed to scan row", err)
		}
		out = append(out, intent)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return out, nil
}

func scanIntent(row rowScanner) (*domain.NotificationIntent, error) {
	var (
		intent       domain.NotificationIntent
		kind, status string
		payload      []byte
	)
	if err := row.Scan(
		&intent.ID,
		&kind,
		&intent.RecipientID,
		&payload,
		&status,
		&intent.Attempts,
		&intent.LastError,
		&intent.CreatedAt,
		&intent.UpdatedAt,
	); err != nil {
		return nil, err
	}
	intent.Type = domain.IntentType(kind)
	intent.Status = domain.IntentStatus(status)
	intent.Payload = payload
	return &intent, nil
}
