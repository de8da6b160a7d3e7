package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dutrus/MESALIB/internal/platform/postgres"
	"github.com/dutrus/MESALIB/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackend_WithinTx(t *testing.T) {
	t.Parallel()

	t.Run("commit", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		b := postgres.NewBackend(db, nil)

		mock.ExpectBegin()
		mock.ExpectExec("SET current_load = current_load \\+ 1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := b.WithinTx(context.Background(), func(ctx context.Context, s store.Stores) error {
			ok, err := s.Providers.IncrementLoad(ctx, uuid.New())
			require.True(t, ok)
			return err
		})
		require.NoError(t, err)
	})

	t.Run("rollback on error", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		b := postgres.NewBackend(db, nil)
		sentinel := errors.New("capacity gone")

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := b.WithinTx(context.Background(), func(ctx context.Context, s store.Stores) error {
			return sentinel
		})
		assert.ErrorIs(t, err, sentinel)
	})
}

func TestBackend_Stores(t *testing.T) {
	t.Parallel()

	db, _ := newMock(t)
	b := postgres.NewBackend(db, nil)
	s := b.Stores()

	assert.NotNil(t, s.Requesters)
	assert.NotNil(t, s.Providers)
	assert.NotNil(t, s.Matches)
	assert.NotNil(t, s.Slots)
	assert.NotNil(t, s.Intents)
	assert.Same(t, db, b.DB())
	assert.Panics(t, func() { postgres.NewBackend(nil, nil) })
}

func TestCollectMigrations(t *testing.T) {
	t.Parallel()

	migrations, err := postgres.CollectMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 3)
	for i, m := range migrations {
		assert.Equal(t, int64(i+1), m.Version)
	}
}
