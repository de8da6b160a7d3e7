package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dutrus/MESALIB/internal/platform/logger"
	"github.com/dutrus/MESALIB/internal/redact"
)

// TxFn is a function that executes within a database transaction.
// Returning an error rolls the transaction back.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// TxOptions configures RunInTransaction.
type TxOptions struct {
	// Isolation is the isolation level; the zero value is the driver default
	// (READ COMMITTED on PostgreSQL). Match invariants rest on row locks and
	// guarded updates, which hold at that level.
	Isolation sql.IsolationLevel

	// MapError classifies driver errors, including commit failures, before
	// they are returned. Nil leaves errors untouched.
	MapError func(error) error
}

// RunInTransaction runs fn inside one transaction on db. The transaction is
// committed when fn returns nil and rolled back otherwise. A panic in fn
// rolls back and is re-raised.
func RunInTransaction(ctx context.Context, db TxBeginner, opts TxOptions, fn TxFn) (err error) {
	log := logger.FromContext(ctx)
	classify := opts.MapError
	if classify == nil {
		classify = func(err error) error { return err }
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: opts.Isolation})
	if err != nil {
		log.Error("failed to begin transaction", "error", redact.Error(err))
		return fmt.Errorf("begin transaction: %w", classify(err))
	}

	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("failed to roll back transaction after panic",
				"error", redact.Error(rbErr),
				"panic", p)
		} else {
			log.Error("rolled back transaction after panic", "panic", p)
		}
		// ALLOW-PANIC: Propagating caught panic from transaction
		panic(p)
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Error("failed to roll back transaction",
				"rollback_error", redact.Error(rbErr),
				"original_error", redact.Error(err))
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		log.Debug("rolled back transaction", "error", redact.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Warn("failed to commit transaction", "error", redact.Error(err))
		return fmt.Errorf("commit transaction: %w", classify(err))
	}
	return nil
}
