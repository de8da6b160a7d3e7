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

const providerColumns = `id, owner_id, display_name, kind, license_number, years_experience,
	country, timezone, languages, specialties, modalities, session_format, price_tier,
	open_to_low_cost, max_load, current_load, created_at, updated_at`

// PostgresProviderStore implements the store.ProviderStore interface
// using a PostgreSQL database as the storage backend.
type PostgresProviderStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProviderStore creates a new PostgreSQL implementation of the ProviderStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresProviderStore(db store.DBTX, logger *slog.Logger) *PostgresProviderStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProviderStore{
		db:     db,
		logger: logger.With(slog.String("component", "provider_store")),
	}
}

// Ensure PostgresProviderStore implements store.ProviderStore interface
var _ store.ProviderStore = (*PostgresProviderStore)(nil)

// Create implements store.ProviderStore.Create
func (s *PostgresProviderStore) Create(ctx context.Context, p *domain.ProviderProfile) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := p.Validate(); err != nil {
		log.Warn("provider validation failed during create",
			slog.String("error", err.Error()),
			slog.String("provider_id", p.ID.String()))
		return err
	}

	tags, err := encodeProviderTags(p)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO provider_profiles (` + providerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err = s.db.ExecContext(ctx, query,
		p.ID,
		p.OwnerID,
		p.DisplayName,
		p.Kind,
		p.LicenseNumber,
		p.YearsExperience,
		p.Country,
		p.Timezone,
		tags[0],
		tags[1],
		tags[2],
		p.SessionFormat,
		p.PriceTier,
		p.OpenToLowCost,
		p.MaxLoad,
		p.CurrentLoad,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrProfileExists) {
			log.Warn("provider profile already exists for owner",
				slog.String("owner_id", p.OwnerID.String()))
			return store.ErrProfileExists
		}
		log.Error("failed to create provider profile",
			slog.String("error", err.Error()),
			slog.String("provider_id", p.ID.String()))
		return mapped
	}

	log.Info("provider profile created",
		slog.String("provider_id", p.ID.String()),
		slog.String("owner_id", p.OwnerID.String()),
		slog.Int("max_load", p.MaxLoad))
	return nil
}

// GetByID implements store.ProviderStore.GetByID
func (s *PostgresProviderStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProviderProfile, error) {
	query := `SELECT ` + providerColumns + ` FROM provider_profiles WHERE id = $1`
	return s.getOne(ctx, query, id)
}

// GetByOwner implements store.ProviderStore.GetByOwner
func (s *PostgresProviderStore) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.ProviderProfile, error) {
	query := `SELECT ` + providerColumns + ` FROM provider_profiles WHERE owner_id = $1`
	return s.getOne(ctx, query, ownerID)
}

// LockByID implements store.ProviderStore.LockByID
func (s *PostgresProviderStore) LockByID(ctx context.Context, id uuid.UUID) (*domain.ProviderProfile, error) {
	query := `SELECT ` + providerColumns + ` FROM provider_profiles WHERE id = $1 FOR NO KEY UPDATE`
	return s.getOne(ctx, query, id)
}

func (s *PostgresProviderStore) getOne(ctx context.Context, query string, arg uuid.UUID) (*domain.ProviderProfile, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	p, err := scanProvider(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("provider profile not found", slog.String("key", arg.String()))
			return nil, store.ErrProviderNotFound
		}
		log.Error("failed to get provider profile",
			slog.String("error", err.Error()),
			slog.String("key", arg.String()))
		return nil, MapError(err)
	}
	return p, nil
}

// Update implements store.ProviderStore.Update
// current_load is never written here; the max_load guard keeps the stored
// load within the new limit.
func (s *PostgresProviderStore) Update(ctx context.Context, p *domain.ProviderProfile) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	tags, err := encodeProviderTags(p)
	if err != nil {
		return false, err
	}

	query := `
		UPDATE provider_profiles
		SET display_name = $1, kind = $2, license_number = $3, years_experience = $4,
			country = $5, timezone = $6, languages = $7, specialties = $8, modalities = $9,
			session_format = $10, price_tier = $11, open_to_low_cost = $12, max_load = $13,
			updated_at = $14
		WHERE id = $15 AND current_load <= $13
	`
	result, err := s.db.ExecContext(ctx, query,
		p.DisplayName,
		p.Kind,
		p.LicenseNumber,
		p.YearsExperience,
		p.Country,
		p.Timezone,
		tags[0],
		tags[1],
		tags[2],
		p.SessionFormat,
		p.PriceTier,
		p.OpenToLowCost,
		p.MaxLoad,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		log.Error("failed to update provider profile",
			slog.String("error", err.Error()),
			slog.String("provider_id", p.ID.String()))
		return false, MapError(err)
	}

	changed, err := rowsChanged(result)
	if err != nil {
		return false, err
	}
	if changed {
		log.Debug("provider profile updated", slog.String("provider_id", p.ID.String()))
		return true, nil
	}

	// Either the row is gone or the guard refused the new max_load.
	if _, err := s.GetByID(ctx, p.ID); err != nil {
		return false, err
	}
	log.Warn("provider update refused: max_load below current load",
		slog.String("provider_id", p.ID.String()),
		slog.Int("max_load", p.MaxLoad))
	return false, nil
}

// ListWithSpareCapacity implements store.ProviderStore.ListWithSpareCapacity
func (s *PostgresProviderStore) ListWithSpareCapacity(ctx context.Context) ([]*domain.ProviderProfile, error) {
	query := `
		SELECT ` + providerColumns + `
		FROM provider_profiles
		WHERE current_load < max_load
		ORDER BY id ASC
	`
	return s.list(ctx, query, "spare_capacity")
}

// List implements store.ProviderStore.List
func (s *PostgresProviderStore) List(ctx context.Context) ([]*domain.ProviderProfile, error) {
	query := `
		SELECT ` + providerColumns + `
		FROM provider_profiles
		ORDER BY created_at DESC, id ASC
	`
	return s.list(ctx, query, "all")
}

func (s *PostgresProviderStore) list(ctx context.Context, query, filter string) ([]*domain.ProviderProfile, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list providers",
			slog.String("error", err.Error()),
			slog.String("filter", filter))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.ProviderProfile
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, store.NewStoreError("provider_profile", "scan", "failed to scan row", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return out, nil
}

// IncrementLoad implements store.ProviderStore.IncrementLoad
func (s *PostgresProviderStore) IncrementLoad(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE provider_profiles
		SET current_load = current_load + 1, updated_at = $1
		WHERE id = $2 AND current_load < max_load
	`
	return s.adjustLoad(ctx, query, id, "increment")
}

// DecrementLoad implements store.ProviderStore.DecrementLoad
func (s *PostgresProviderStore) DecrementLoad(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE provider_profiles
		SET current_load = current_load - 1, updated_at = $1
		WHERE id = $2 AND current_load > 0
	`
	return s.adjustLoad(ctx, query, id, "decrement")
}

func (s *PostgresProviderStore) adjustLoad(ctx context.Context, query string, id uuid.UUID, op string) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to adjust provider load",
			slog.String("error", err.Error()),
			slog.String("operation", op),
			slog.String("provider_id", id.String()))
		return false, MapError(err)
	}

	changed, err := rowsChanged(result)
	if err != nil {
		return false, err
	}
	log.Debug("provider load adjusted",
		slog.String("operation", op),
		slog.String("provider_id", id.String()),
		slog.Bool("applied", changed))
	return changed, nil
}

func encodeProviderTags(p *domain.ProviderProfile) ([3][]byte, error) {
	var out [3][]byte
	for i, tags := range [][]string{p.Languages, p.Specialties, p.Modalities} {
		b, err := encodeTags(tags)
		if err != nil {
			return out, err
		}
		out[i] = b
	}
	return out, nil
}

func scanProvider(row rowScanner) (*domain.ProviderProfile, error) {
	var (
		p                                  domain.ProviderProfile
		languages, specialties, modalities []byte
		kind, format, price                string
	)
	if err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.DisplayName,
		&kind,
		&p.LicenseNumber,
		&p.YearsExperience,
		&p.Country,
		&p.Timezone,
		&languages,
		&specialties,
		&modalities,
		&format,
		&price,
		&p.OpenToLowCost,
		&p.MaxLoad,
		&p.CurrentLoad,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if p.Languages, err = decodeTags(languages); err != nil {
		return nil, err
	}
	if p.Specialties, err = decodeTags(specialties); err != nil {
		return nil, err
	}
	if p.Modalities, err = decodeTags(modalities); err != nil {
		return nil, err
	}
	p.Kind = domain.ProviderKind(kind)
	p.SessionFormat = domain.SessionFormat(format)
	p.PriceTier = domain.PriceTier(price)
	return &p, nil
}
