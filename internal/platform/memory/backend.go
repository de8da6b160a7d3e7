package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/dutrus/MESALIB/internal/platform/logger"
	"github.com/dutrus/MESALIB/internal/store"
	"github.com/google/uuid"
)

type dataset struct {
	requesters map[uuid.UUID]*domain.RequesterProfile
	providers  map[uuid.UUID]*domain.ProviderProfile
	matches    map[uuid.UUID]*domain.Match
	slots      map[uuid.UUID]*domain.AvailabilitySlot
	intents    map[uuid.UUID]*domain.NotificationIntent
}

func newDataset() *dataset {
	return &dataset{
		requesters: make(map[uuid.UUID]*domain.RequesterProfile),
		providers:  make(map[uuid.UUID]*domain.ProviderProfile),
		matches:    make(map[uuid.UUID]*domain.Match),
		slots:      make(map[uuid.UUID]*domain.AvailabilitySlot),
		intents:    make(map[uuid.UUID]*domain.NotificationIntent),
	}
}

// clone copies every entity so that a transaction never writes through to
// the live dataset.
func (d *dataset) clone() *dataset {
	c := newDataset()
	for id, r := range d.requesters {
		c.requesters[id] = copyRequester(r)
	}
	for id, p := range d.providers {
		c.providers[id] = copyProvider(p)
	}
	for id, m := range d.matches {
		c.matches[id] = copyMatch(m)
	}
	for id, s := range d.slots {
		c.slots[id] = copySlot(s)
	}
	for id, i := range d.intents {
		c.intents[id] = copyIntent(i)
	}
	return c
}

// Backend implements store.Backend in memory.
type Backend struct {
	mu     sync.Mutex
	data   *dataset
	logger *slog.Logger
}

// NewBackend creates an empty Backend. If logger is nil, a default logger will be used.
func NewBackend(logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		data:   newDataset(),
		logger: logger.With(slog.String("component", "memory_backend")),
	}
}

// Ensure Backend implements store.Backend interface
var _ store.Backend = (*Backend)(nil)

// Stores implements store.Backend.Stores
func (b *Backend) Stores() store.Stores {
	return b.bind(&handle{backend: b})
}

// WithinTx implements store.Backend.WithinTx
func (b *Backend) WithinTx(ctx context.Context, fn store.StoresFn) error {
	log := logger.FromContextOrDefault(ctx, b.logger)

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := b.data.clone()
	if err := fn(ctx, b.bind(&handle{backend: b, tx: work})); err != nil {
		log.Debug("rolled back transaction due to error", slog.String("error", err.Error()))
		return err
	}

	b.data = work
	log.Debug("transaction committed successfully")
	return nil
}

func (b *Backend) bind(h *handle) store.Stores {
	return store.Stores{
		Requesters: &RequesterStore{h: h},
		Providers:  &ProviderStore{h: h},
		Matches:    &MatchStore{h: h},
		Slots:      &SlotStore{h: h},
		Intents:    &IntentStore{h: h},
	}
}

// handle routes a store call either to a transaction's working copy or,
// under the backend mutex, to the live dataset.
type handle struct {
	backend *Backend
	tx      *dataset
}

func (h *handle) do(ctx context.Context, fn func(d *dataset) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if h.tx != nil {
		return fn(h.tx)
	}

	h.backend.mu.Lock()
	defer h.backend.mu.Unlock()
	return fn(h.backend.data)
}
