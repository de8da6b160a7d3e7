//go:build integration

package testdb

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/dutrus/MESALIB/internal/platform/postgres"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// TestTimeout bounds container startup and schema setup.
const TestTimeout = 2 * time.Minute

// tables lists every table in dependency order, children first.
var tables = []string{
	"notification_intents",
	"availability_slots",
	"matches",
	"provider_profiles",
	"requester_profiles",
}

// GetTestDatabaseURL returns DATABASE_URL, which lets CI point the tests at
// a service container instead of starting one per package.
func GetTestDatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// NewPostgres returns a migrated database. The pool is closed and every
// table emptied when the test ends.
func NewPostgres(t *testing.T) *sql.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	dsn := GetTestDatabaseURL()
	if dsn == "" {
		container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
			tcpostgres.WithDatabase("mesalib"),
			tcpostgres.WithUsername("mesalib"),
			tcpostgres.WithPassword("mesalib"),
			tcpostgres.BasicWaitStrategies(),
		)
		if err != nil {
			t.Fatalf("failed to start postgres container: %v", err)
		}
		t.Cleanup(func() {
			if err := testcontainers.TerminateContainer(container); err != nil {
				t.Logf("failed to terminate postgres container: %v", err)
			}
		})

		dsn, err = container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			t.Fatalf("failed to get postgres connection string: %v", err)
		}
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	db.SetMaxOpenConns(20)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		t.Fatalf("failed to ping database: %v", err)
	}

	if err := postgres.Migrate(ctx, db, "up", nil); err != nil {
		_ = db.Close()
		t.Fatalf("failed to apply migrations: %v", err)
	}

	t.Cleanup(func() {
		CleanupDB(t, db)
		_ = db.Close()
	})
	return db
}

// CleanupDB empties every application table.
func CleanupDB(t *testing.T, db *sql.DB) {
	t.Helper()

	for _, table := range tables {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// WithTx runs fn inside a transaction that is always rolled back.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	fn(t, tx)
}
