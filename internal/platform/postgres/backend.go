package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/dutrus/MESALIB/internal/store"
)

// Backend implements store.Backend on a PostgreSQL connection pool.
type Backend struct {
	db     *sql.DB
	logger *slog.Logger
	stores store.Stores
}

// NewBackend creates a Backend. If logger is nil, a default logger will be used.
func NewBackend(db *sql.DB, logger *slog.Logger) *Backend {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Backend{
		db:     db,
		logger: logger,
		stores: newStores(db, logger),
	}
}

// txOptions keep the driver's READ COMMITTED level and classify commit
// failures so serialization errors surface as store.ErrTransient.
var txOptions = store.TxOptions{MapError: MapError}

// Ensure Backend implements store.Backend interface
var _ store.Backend = (*Backend)(nil)

// Stores implements store.Backend.Stores
func (b *Backend) Stores() store.Stores {
	return b.stores
}

// WithinTx implements store.Backend.WithinTx
func (b *Backend) WithinTx(ctx context.Context, fn store.StoresFn) error {
	return store.RunInTransaction(ctx, b.db, txOptions, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, newStores(tx, b.logger))
	})
}

// DB returns the underlying pool.
func (b *Backend) DB() *sql.DB {
	return b.db
}

func newStores(db store.DBTX, logger *slog.Logger) store.Stores {
	return store.Stores{
		Requesters: NewPostgresRequesterStore(db, logger),
		Providers:  NewPostgresProviderStore(db, logger),
		Matches:    NewPostgresMatchStore(db, logger),
		Slots:      NewPostgresSlotStore(db, logger),
		Intents:    NewPostgresIntentStore(db, logger),
	}
}
