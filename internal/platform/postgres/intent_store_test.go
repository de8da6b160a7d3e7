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

func TestPostgresIntentStore_Save(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := postgres.NewPostgresIntentStore(db, nil)
	intent, err := domain.NewNotificationIntent(domain.IntentMatchCreated, uuid.New(),
		domain.MatchCreatedPayload{MatchID: uuid.New(), RequesterName: "Ana", Score: 80})
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO notification_intents").
		WithArgs(intent.ID, intent.Type, intent.RecipientID, []byte(intent.Payload), intent.Status,
			0, "", intent.CreatedAt, intent.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Save(context.Background(), intent))
}

func TestPostgresIntentStore_UpdateStatus(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := postgres.NewPostgresIntentStore(db, nil)
	id := uuid.New()

	mock.ExpectExec("UPDATE notification_intents").
		WithArgs(domain.IntentFailed, 5, "sink down", sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE notification_intents").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.UpdateStatus(context.Background(), id, domain.IntentFailed, 5, "sink down"))
	err := s.UpdateStatus(context.Background(), uuid.New(), domain.IntentDelivered, 1, "")
	assert.ErrorIs(t, err, store.ErrIntentNotFound)
}

func TestPostgresIntentStore_ListPending(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := postgres.NewPostgresIntentStore(db, nil)
	id, recipient := uuid.New(), uuid.New()

	mock.ExpectQuery("WHERE status = 'pending' AND updated_at < \\$1").
		WithArgs(fixedNow, 50).
		WillReturnRows(sqlmock.NewRows(intentCols).AddRow(
			id.String(), "match_accepted", recipient.String(), []byte(`{"match_id":"x"}`),
			"pending", 2, "timeout", fixedNow, fixedNow))

	list, err := s.ListPending(context.Background(), fixedNow, 50)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.IntentMatchAccepted, list[0].Type)
	assert.Equal(t, 2, list[0].Attempts)
	assert.JSONEq(t, `{"match_id":"x"}`, string(list[0].Payload))
}

func TestPostgresIntentStore_GetByID_NotFound(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := postgres.NewPostgresIntentStore(db, nil)

	mock.ExpectQuery("FROM notification_intents WHERE id").WillReturnRows(sqlmock.NewRows(intentCols))

	_, err := s.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrIntentNotFound)
}
