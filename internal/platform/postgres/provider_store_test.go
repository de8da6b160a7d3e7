package postgres_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/dutrus/MESALIB/internal/platform/postgres"
	"github.com/dutrus/MESALIB/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProvider(t *testing.T, maxLoad int) *domain.ProviderProfile {
	t.Helper()

	p, err := domain.NewProviderProfile(uuid.New(), domain.ProviderFields{
		DisplayName:     "Dr. Lima",
		Kind:            domain.KindPsychologist,
		YearsExperience: 8,
		Languages:       []string{"pt", "en"},
		Specialties:     []string{"anxiety"},
		PriceTier:       domain.PriceSlidingScale,
		MaxLoad:         maxLoad,
	})
	require.NoError(t, err)
	return p
}

func providerRow(rows *sqlmock.Rows, id uuid.UUID, maxLoad, load int) *sqlmock.Rows {
	return rows.AddRow(
		id.String(), uuid.NewString(), "Dr. Lima", "psychologist", "CRP-1", 8,
		"BR", "UTC", []byte(`["pt"]`), []byte(`["anxiety"]`), []byte(`[]`), "online",
		"free", true, maxLoad, load, fixedNow, fixedNow)
}

func TestPostgresProviderStore_Create(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := postgres.NewPostgresProviderStore(db, nil)

		mock.ExpectExec("INSERT INTO provider_profiles").WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Create(context.Background(), newProvider(t, 3)))
	})

	t.Run("duplicate owner", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := postgres.NewPostgresProviderStore(db, nil)

		mock.ExpectExec("INSERT INTO provider_profiles").
			WillReturnError(newPgError("23505", "provider_profiles_owner_key"))

		err := s.Create(context.Background(), newProvider(t, 3))
		assert.ErrorIs(t, err, store.ErrProfileExists)
	})
}

func TestPostgresProviderStore_GetByOwner(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := postgres.NewPostgresProviderStore(db, nil)
	id := uuid.New()

	mock.ExpectQuery("FROM provider_profiles WHERE owner_id").
		WillReturnRows(providerRow(sqlmock.NewRows(providerCols), id, 4, 1))

	p, err := s.GetByOwner(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, domain.KindPsychologist, p.Kind)
	assert.Equal(t, domain.PriceFree, p.PriceTier)
	assert.True(t, p.OpenToLowCost)
	assert.Equal(t, 4, p.MaxLoad)
	assert.Equal(t, 1, p.CurrentLoad)
	assert.Equal(t, 3, p.SpareCapacity())
	assert.Equal(t, []string{}, p.Modalities)
}

func TestPostgresProviderStore_IncrementLoad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{"below max", 1, true},
		{"at max", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			db, mock := newMock(t)
			s := postgres.NewPostgresProviderStore(db, nil)
			id := uuid.New()

			mock.ExpectExec("SET current_load = current_load \\+ 1").
				WithArgs(sqlmock.AnyArg(), id).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			ok, err := s.IncrementLoad(context.Background(), id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestPostgresProviderStore_DecrementLoad(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := postgres.NewPostgresProviderStore(db, nil)

	mock.ExpectExec("SET current_load = current_load - 1(.+)current_load > 0").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := s.DecrementLoad(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPostgresProviderStore_Update(t *testing.T) {
	t.Parallel()

	t.Run("applied", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := postgres.NewPostgresProviderStore(db, nil)

		mock.ExpectExec("UPDATE provider_profiles(.+)current_load <= \\$13").
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := s.Update(context.Background(), newProvider(t, 2))
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("max load below current load", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := postgres.NewPostgresProviderStore(db, nil)
		p := newProvider(t, 1)

		mock.ExpectExec("UPDATE provider_profiles").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("FROM provider_profiles WHERE id").
			WillReturnRows(providerRow(sqlmock.NewRows(providerCols), p.ID, 3, 2))

		ok, err := s.Update(context.Background(), p)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("missing provider", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := postgres.NewPostgresProviderStore(db, nil)

		mock.ExpectExec("UPDATE provider_profiles").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("FROM provider_profiles WHERE id").
			WillReturnRows(sqlmock.NewRows(providerCols))

		_, err := s.Update(context.Background(), newProvider(t, 1))
		assert.ErrorIs(t, err, store.ErrProviderNotFound)
	})
}

func TestPostgresProviderStore_ListWithSpareCapacity(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := postgres.NewPostgresProviderStore(db, nil)

	rows := sqlmock.NewRows(providerCols)
	providerRow(rows, uuid.New(), 3, 0)
	providerRow(rows, uuid.New(), 2, 1)
	mock.ExpectQuery("WHERE current_load < max_load").WillReturnRows(rows)

	list, err := s.ListWithSpareCapacity(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
	for _, p := range list {
		assert.True(t, p.HasSpareCapacity())
	}
}

func TestPostgresProviderStore_List(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := postgres.NewPostgresProviderStore(db, nil)

	rows := sqlmock.NewRows(providerCols)
	providerRow(rows, uuid.New(), 2, 2)
	providerRow(rows, uuid.New(), 3, 0)
	mock.ExpectQuery("FROM provider_profiles\\s+ORDER BY created_at DESC").WillReturnRows(rows)

	list, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.False(t, list[0].HasSpareCapacity(), "full providers are listed too")
}
