package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/dutrus/MESALIB/internal/platform/logger"
	"github.com/dutrus/MESALIB/internal/store"
	"github.com/google/uuid"
)

const matchColumns = `id, requester_id, provider_id, status, score, created_at, accepted_at, declined_at`

// PostgresMatchStore implements the store.MatchStore interface
// using a PostgreSQL database as the storage backend.
type PostgresMatchStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMatchStore creates a new PostgreSQL implementation of the MatchStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresMatchStore(db store.DBTX, logger *slog.Logger) *PostgresMatchStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresMatchStore{
		db:     db,
		logger: logger.With(slog.String("component", "match_store")),
	}
}

// Ensure PostgresMatchStore implements store.MatchStore interface
var _ store.MatchStore = (*PostgresMatchStore)(nil)

// Create implements store.MatchStore.Create
// A second row for the same pair is silently skipped.
func (s *PostgresMatchStore) Create(ctx context.Context, m *domain.Match) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := m.Validate(); err != nil {
		log.Warn("match validation failed during create",
			slog.String("error", err.Error()),
			slog.String("match_id", m.ID.String()))
		return false, err
	}

	query := `
		INSERT INTO matches (` + matchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT ON CONSTRAINT ` + matchPairConstraint + ` DO NOTHING
	`
	result, err := s.db.ExecContext(ctx, query,
		m.ID,
		m.RequesterID,
		m.ProviderID,
		m.Status,
		m.Score,
		m.CreatedAt,
		m.AcceptedAt,
		m.DeclinedAt,
	)
	if err != nil {
		log.Error("failed to create match",
			slog.String("error", err.Error()),
			slog.String("match_id", m.ID.String()))
		return false, MapError(err)
	}

	created, err := rowsChanged(result)
	if err != nil {
		return false, err
	}
	if !created {
		log.Debug("match for pair already exists",
			slog.String("requester_id", m.RequesterID.String()),
			slog.String("provider_id", m.ProviderID.String()))
		return false, nil
	}

	log.Info("match created",
		slog.String("match_id", m.ID.String()),
		slog.String("requester_id", m.RequesterID.String()),
		slog.String("provider_id", m.ProviderID.String()),
		slog.Int("score", m.Score))
	return true, nil
}

// GetByID implements store.MatchStore.GetByID
func (s *PostgresMatchStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Match, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	m, err := scanMatch(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("match not found", slog.String("match_id", id.String()))
			return nil, store.ErrMatchNotFound
		}
		log.Error("failed to get match",
			slog.String("error", err.Error()),
			slog.String("match_id", id.String()))
		return nil, MapError(err)
	}
	return m, nil
}

// Transition implements store.MatchStore.Transition
func (s *PostgresMatchStore) Transition(
	ctx context.Context,
	id, providerID uuid.UUID,
	from, to domain.MatchStatus,
	at time.Time,
) (*domain.Match, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !domain.CanTransition(from, to) {
		return nil, fmt.Errorf("%w: cannot move match from %s to %s", domain.ErrConflict, from, to)
	}

	stamp := "accepted_at"
	if to == domain.MatchDeclined {
		stamp = "declined_at"
	}

	query := `
		UPDATE matches
		SET status = $1, ` + stamp + ` = $2
		WHERE id = $3 AND provider_id = $4 AND status = $5
		RETURNING ` + matchColumns
	m, err := scanMatch(s.db.QueryRowContext(ctx, query, to, at.UTC(), id, providerID, from))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("match transition guard did not match",
				slog.String("match_id", id.String()),
				slog.String("from", string(from)),
				slog.String("to", string(to)))
			return nil, nil
		}
		mapped := MapError(err)
		log.Error("failed to transition match",
			slog.String("error", err.Error()),
			slog.String("match_id", id.String()))
		return nil, mapped
	}

	log.Info("match transitioned",
		slog.String("match_id", id.String()),
		slog.String("from", string(from)),
		slog.String("to", string(to)))
	return m, nil
}

// DeclineOtherPending implements store.MatchStore.DeclineOtherPending
func (s *PostgresMatchStore) DeclineOtherPending(
	ctx context.Context,
	requesterID, keepID uuid.UUID,
	at time.Time,
) ([]*domain.Match, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE matches
		SET status = 'declined', declined_at = $1
		WHERE requester_id = $2 AND id <> $3 AND status = 'pending'
		RETURNING ` + matchColumns
	rows, err := s.db.QueryContext(ctx, query, at.UTC(), requesterID, keepID)
	if err != nil {
		log.Error("failed to decline sibling matches",
			slog.String("error", err.Error()),
			slog.String("requester_id", requesterID.String()))
		return nil, MapError(err)
	}

	declined, err := collectMatches(rows)
	if err != nil {
		return nil, err
	}

	log.Debug("declined sibling matches",
		slog.String("requester_id", requesterID.String()),
		slog.Int("count", len(declined)))
	return declined, nil
}

// CountByRequester implements store.MatchStore.CountByRequester
func (s *PostgresMatchStore) CountByRequester(
	ctx context.Context,
	requesterID uuid.UUID,
	status domain.MatchStatus,
) (int, error) {
	query := `SELECT COUNT(*) FROM matches WHERE requester_id = $1 AND status = $2`

	var count int
	if err := s.db.QueryRowContext(ctx, query, requesterID, status).Scan(&count); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count matches",
			slog.String("error", err.Error()),
			slog.String("requester_id", requesterID.String()))
		return 0, MapError(err)
	}
	return count, nil
}

// ListByRequester implements store.MatchStore.ListByRequester
func (s *PostgresMatchStore) ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]*domain.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE requester_id = $1
		ORDER BY created_at DESC, id ASC
	`
	return s.list(ctx, query, requesterID)
}

// ListByProvider implements store.MatchStore.ListByProvider
func (s *PostgresMatchStore) ListByProvider(
	ctx context.Context,
	providerID uuid.UUID,
	status domain.MatchStatus,
) ([]*domain.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE provider_id = $1 AND status = $2
		ORDER BY created_at DESC, id ASC
	`
	return s.list(ctx, query, providerID, status)
}

func (s *PostgresMatchStore) list(ctx context.Context, query string, args ...any) ([]*domain.Match, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list matches",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return collectMatches(rows)
}

// ProviderIDsForRequester implements store.MatchStore.ProviderIDsForRequester
func (s *PostgresMatchStore) ProviderIDsForRequester(ctx context.Context, requesterID uuid.UUID) ([]uuid.UUID, error) {
	return s.ids(ctx, `SELECT provider_id FROM matches WHERE requester_id = $1`, requesterID)
}

// RequesterIDsForProvider implements store.MatchStore.RequesterIDsForProvider
func (s *PostgresMatchStore) RequesterIDsForProvider(ctx context.Context, providerID uuid.UUID) ([]uuid.UUID, error) {
	return s.ids(ctx, `SELECT requester_id FROM matches WHERE provider_id = $1`, providerID)
}

func (s *PostgresMatchStore) ids(ctx context.Context, query string, arg uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list paired ids",
			slog.String("error", err.Error()),
			slog.String("key", arg.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, store.NewStoreError("match", "scan", "failed to scan paired id", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return out, nil
}

func collectMatches(rows *sql.Rows) ([]*domain.Match, error) {
	defer func() { _ = rows.Close() }()

	var out []*domain.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, store.NewStoreError("match", "scan", "failed to scan row", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return out, nil
}

func scanMatch(row rowScanner) (*domain.Match, error) {
	var (
		m                      domain.Match
		status                 string
		acceptedAt, declinedAt sql.NullTime
	)
	if err := row.Scan(
		&m.ID,
		&m.RequesterID,
		&m.ProviderID,
		&status,
		&m.Score,
		&m.CreatedAt,
		&acceptedAt,
		&declinedAt,
	); err != nil {
		return nil, err
	}

	m.Status = domain.MatchStatus(status)
	if acceptedAt.Valid {
		t := acceptedAt.Time
		m.AcceptedAt = &t
	}
	if declinedAt.Valid {
		t := declinedAt.Time
		m.DeclinedAt = &t
	}
	return &m, nil
}
