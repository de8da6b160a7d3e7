package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/dutrus/MESALIB/internal/platform/logger"
	"github.com/dutrus/MESALIB/internal/store"
	"github.com/google/uuid"
)

const requesterColumns = `id, owner_id, display_name, main_reason, country, timezone,
	needs, urgency, preferred_kind, languages, budget, created_at, updated_at`

// PostgresRequesterStore implements the store.RequesterStore interface
// using a PostgreSQL database as the storage backend.
type PostgresRequesterStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRequesterStore creates a new PostgreSQL implementation of the RequesterStore interface.
// It accepts a database connection or transaction that is managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresRequesterStore(db store.DBTX, logger *slog.Logger) *PostgresRequesterStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresRequesterStore{
		db:     db,
		logger: logger.With(slog.String("component", "requester_store")),
	}
}

// Ensure PostgresRequesterStore implements store.RequesterStore interface
var _ store.RequesterStore = (*PostgresRequesterStore)(nil)

// Create implements store.RequesterStore.Create
func (s *PostgresRequesterStore) Create(ctx context.Context, p *domain.RequesterProfile) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := p.Validate(); err != nil {
		log.Warn("requester validation failed during create",
			slog.String("error", err.Error()),
			slog.String("requester_id", p.ID.String()))
		return err
	}

	needs, err := encodeTags(p.Needs)
	if err != nil {
		return err
	}
	languages, err := encodeTags(p.Languages)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO requester_profiles (` + requesterColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = s.db.ExecContext(ctx, query,
		p.ID,
		p.OwnerID,
		p.DisplayName,
		p.MainReason,
		p.Country,
		p.Timezone,
		needs,
		p.Urgency,
		p.PreferredKind,
		languages,
		p.Budget,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrProfileExists) {
			log.Warn("requester profile already exists for owner",
				slog.String("owner_id", p.OwnerID.String()))
			return store.ErrProfileExists
		}
		log.Error("failed to create requester profile",
			slog.String("error", err.Error()),
			slog.String("requester_id", p.ID.String()))
		return mapped
	}

	log.Info("requester profile created",
		slog.String("requester_id", p.ID.String()),
		slog.String("owner_id", p.OwnerID.String()))
	return nil
}

// GetByID implements store.RequesterStore.GetByID
func (s *PostgresRequesterStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.RequesterProfile, error) {
	query := `SELECT ` + requesterColumns + ` FROM requester_profiles WHERE id = $1`
	return s.getOne(ctx, query, id)
}

// GetByOwner implements store.RequesterStore.GetByOwner
func (s *PostgresRequesterStore) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.RequesterProfile, error) {
	query := `SELECT ` + requesterColumns + ` FROM requester_profiles WHERE owner_id = $1`
	return s.getOne(ctx, query, ownerID)
}

// LockByID implements store.RequesterStore.LockByID
// The row lock is held until the surrounding transaction ends.
func (s *PostgresRequesterStore) LockByID(ctx context.Context, id uuid.UUID) (*domain.RequesterProfile, error) {
	query := `SELECT ` + requesterColumns + ` FROM requester_profiles WHERE id = $1 FOR NO KEY UPDATE`
	return s.getOne(ctx, query, id)
}

func (s *PostgresRequesterStore) getOne(ctx context.Context, query string, arg uuid.UUID) (*domain.RequesterProfile, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	p, err := scanRequester(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("requester profile not found", slog.String("key", arg.String()))
			return nil, store.ErrRequesterNotFound
		}
		log.Error("failed to get requester profile",
			slog.String("error", err.Error()),
			slog.String("key", arg.String()))
		return nil, MapError(err)
	}
	return p, nil
}

// Update implements store.RequesterStore.Update
func (s *PostgresRequesterStore) Update(ctx context.Context, p *domain.RequesterProfile) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := p.Validate(); err != nil {
		return err
	}

	needs, err := encodeTags(p.Needs)
	if err != nil {
		return err
	}
	languages, err := encodeTags(p.Languages)
	if err != nil {
		return err
	}

	query := `
		UPDATE requester_profiles
		SET display_name = $1, main_reason = $2, country = $3, timezone = $4,
			needs = $5, urgency = $6, preferred_kind = $7, languages = $8,
			budget = $9, updated_at = $10
		WHERE id = $11
	`
	result, err := s.db.ExecContext(ctx, query,
		p.DisplayName,
		p.MainReason,
		p.Country,
		p.Timezone,
		needs,
		p.Urgency,
		p.PreferredKind,
		languages,
		p.Budget,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		log.Error("failed to update requester profile",
			slog.String("error", err.Error()),
			slog.String("requester_id", p.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrRequesterNotFound); err != nil {
		return err
	}

	log.Debug("requester profile updated", slog.String("requester_id", p.ID.String()))
	return nil
}

// ListUnmatched implements store.RequesterStore.ListUnmatched
func (s *PostgresRequesterStore) ListUnmatched(ctx context.Context) ([]*domain.RequesterProfile, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + requesterColumns + `
		FROM requester_profiles r
		WHERE NOT EXISTS (
			SELECT 1 FROM matches m
			WHERE m.requester_id = r.id AND m.status = 'accepted'
		)
		ORDER BY r.created_at ASC, r.id ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list unmatched requesters", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.RequesterProfile
	for rows.Next() {
		p, err := scanRequester(rows)
		if err != nil {
			return nil, store.NewStoreError("requester_profile", "scan", "failed to scan row", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	log.Debug("listed unmatched requesters", slog.Int("count", len(out)))
	return out, nil
}

func scanRequester(row rowScanner) (*domain.RequesterProfile, error) {
	var (
		p                domain.RequesterProfile
		needs, languages []byte
		urgency, kind    string
		budget           string
	)
	if err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.DisplayName,
		&p.MainReason,
		&p.Country,
		&p.Timezone,
		&needs,
		&urgency,
		&kind,
		&languages,
		&budget,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if p.Needs, err = decodeTags(needs); err != nil {
		return nil, err
	}
	if p.Languages, err = decodeTags(languages); err != nil {
		return nil, err
	}
	p.Urgency = domain.Urgency(urgency)
	p.PreferredKind = domain.ProviderKind(kind)
	p.Budget = domain.BudgetTier(budget)
	return &p, nil
}
