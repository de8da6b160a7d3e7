package postgres_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var (
	requesterCols = []string{
		"id", "owner_id", "display_name", "main_reason", "country", "timezone",
		"needs", "urgency", "preferred_kind", "languages", "budget", "created_at", "updated_at",
	}
	providerCols = []string{
		"id", "owner_id", "display_name", "kind", "license_number", "years_experience",
		"country", "timezone", "languages", "specialties", "modalities", "session_format",
		"price_tier", "open_to_low_cost", "max_load", "current_load", "created_at", "updated_at",
	}
	matchCols = []string{
		"id", "requester_id", "provider_id", "status", "score", "created_at", "accepted_at", "declined_at",
	}
	slotCols   = []string{"id", "provider_id", "start_time", "end_time", "timezone", "created_at"}
	intentCols = []string{
		"id", "type", "recipient_id", "payload", "status", "attempts", "last_error", "created_at", "updated_at",
	}
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// newMock returns a sqlmock-backed pool whose expectations are verified
// when the test ends.
func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}
