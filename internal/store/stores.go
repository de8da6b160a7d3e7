package store

import (
	"context"
)

// Stores bundles the store implementations that share one connection or
// one transaction.
type Stores struct {
	Requesters RequesterStore
	Providers  ProviderStore
	Matches    MatchStore
	Slots      SlotStore
	Intents    IntentStore
}

// StoresFn is a function that executes against transaction-bound stores.
// The transaction is committed if the function returns nil, or rolled back
// if it returns an error.
type StoresFn func(ctx context.Context, stores Stores) error

// Backend is a persistence backend able to run units of work atomically.
type Backend interface {
	// Stores returns stores that run each call on its own.
	Stores() Stores

	// WithinTx runs fn with stores bound to a single transaction.
	WithinTx(ctx context.Context, fn StoresFn) error
}
