package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/dutrus/MESALIB/internal/metrics"
	"github.com/dutrus/MESALIB/internal/redact"
	"github.com/dutrus/MESALIB/internal/store"
	"github.com/google/uuid"
)

// Delivery outcomes recorded in metrics.
const (
	outcomeDelivered = "delivered"
	outcomeRetry     = "retry"
	outcomeFailed    = "failed"
	outcomeDropped   = "dropped"
)

// ErrAlreadyStarted is returned by Start on a running dispatcher.
var ErrAlreadyStarted = errors.New("dispatcher already started")

// DispatcherConfig holds configuration for the dispatcher
type DispatcherConfig struct {
	// WorkerCount determines how many intents are delivered concurrently
	WorkerCount int

	// QueueSize determines the buffer size of the in-memory queue
	QueueSize int

	// MaxAttempts is the number of deliveries tried before an intent is
	// marked failed
	MaxAttempts int

	// SweepInterval defines how often pending intents are looked up again
	SweepInterval time.Duration

	// StuckAfter is how long an intent stays pending, since its last
	// attempt, before a sweep queues it again
	StuckAfter time.Duration

	// DeliveryTimeout bounds a single call to the sink
	DeliveryTimeout time.Duration
}

// DefaultDispatcherConfig returns a DispatcherConfig with reasonable defaults
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		WorkerCount:     2,
		QueueSize:       256,
		MaxAttempts:     5,
		SweepInterval:   time.Minute,
		StuckAfter:      5 * time.Minute,
		DeliveryTimeout: 10 * time.Second,
	}
}

// Dispatcher persists intents and delivers them to a Sink in the background.
type Dispatcher struct {
	intents store.IntentStore
	sink    Sink
	metrics *metrics.Metrics
	config  DispatcherConfig
	logger  *slog.Logger
	now     func() time.Time

	queue chan *domain.NotificationIntent

	mu      sync.Mutex
	queued  map[uuid.UUID]struct{}
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewDispatcher creates a Dispatcher. Zero config values take the defaults.
func NewDispatcher(
	intents store.IntentStore,
	sink Sink,
	m *metrics.Metrics,
	config DispatcherConfig,
	logger *slog.Logger,
) *Dispatcher {
	if intents == nil {
		panic("intents cannot be nil")
	}
	if sink == nil {
		panic("sink cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	defaults := DefaultDispatcherConfig()
	if config.WorkerCount <= 0 {
		config.WorkerCount = defaults.WorkerCount
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.SweepInterval <= 0 {
		config.SweepInterval = defaults.SweepInterval
	}
	if config.StuckAfter <= 0 {
		config.StuckAfter = defaults.StuckAfter
	}
	if config.DeliveryTimeout <= 0 {
		config.DeliveryTimeout = defaults.DeliveryTimeout
	}

	return &Dispatcher{
		intents: intents,
		sink:    sink,
		metrics: m,
		config:  config,
		logger:  logger.With("component", "notify_dispatcher", "sink", sink.Name()),
		now:     time.Now,
		queue:   make(chan *domain.NotificationIntent, config.QueueSize),
		queued:  make(map[uuid.UUID]struct{}),
	}
}

// Emit persists the intent as pending and offers it to the queue. It never
// blocks on delivery and never fails the caller: an intent that cannot be
// queued now is picked up by a later sweep.
func (d *Dispatcher) Emit(ctx context.Context, intent *domain.NotificationIntent) {
	ctx = context.WithoutCancel(ctx)

	if err := d.intents.Save(ctx, intent); err != nil {
		d.metrics.IncrementDelivery(string(intent.Type), outcomeDropped)
		d.logger.Error("failed to persist notification intent",
			"intent_id", intent.ID,
			"type", intent.Type,
			"error", redact.Error(err))
		return
	}

	d.offer(intent)
}

// Start recovers pending intents and starts the workers and the sweeper.
// They run until Stop is called.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.started {
		d.mu.Unlock()
		return ErrAlreadyStarted
	}
	d.started = true
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	d.cancel = cancel
	d.mu.Unlock()

	recovered := d.sweep(ctx, d.now())
	d.logger.Info("recovered pending notification intents", "count", recovered)

	for i := 0; i < d.config.WorkerCount; i++ {
		d.wg.Add(1)
		go d.worker(runCtx, i)
	}

	d.wg.Add(1)
	go d.sweeper(runCtx)

	return nil
}

// Stop stops the workers and waits for in-flight deliveries to finish.
// Intents still queued stay pending in the store.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	cancel := d.cancel
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	d.wg.Wait()
}

// Run starts the dispatcher, blocks until ctx is done and then stops it.
func (d *Dispatcher) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	d.Stop()
	return nil
}

// offer queues intent unless it is already queued or the queue is full.
func (d *Dispatcher) offer(intent *domain.NotificationIntent) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.queued[intent.ID]; ok {
		return false
	}

	select {
	case d.queue <- intent:
		d.queued[intent.ID] = struct{}{}
		return true
	default:
		d.logger.Warn("notification queue is full, intent left for the next sweep",
			"intent_id", intent.ID,
			"type", intent.Type)
		return false
	}
}

func (d *Dispatcher) release(id uuid.UUID) {
	d.mu.Lock()
	delete(d.queued, id)
	d.mu.Unlock()
}

// worker delivers intents from the queue
func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()

	d.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-ctx.Done():
			d.logger.Debug("stopping worker", "worker_id", id)
			return

		case intent := <-d.queue:
			d.deliver(ctx, intent)
			d.release(intent.ID)
		}
	}
}

// deliver makes one delivery attempt and records its outcome.
func (d *Dispatcher) deliver(ctx context.Context, intent *domain.NotificationIntent) {
	log := d.logger.With("intent_id", intent.ID, "type", intent.Type)

	deliverCtx, cancel := context.WithTimeout(ctx, d.config.DeliveryTimeout)
	start := d.now()
	err := d.sink.Deliver(deliverCtx, intent)
	cancel()
	d.metrics.ObserveDeliveryLatency(d.now().Sub(start))

	attempts := intent.Attempts + 1
	status, outcome, lastError := domain.IntentDelivered, outcomeDelivered, ""
	if err != nil {
		lastError = redact.Error(err)
		status, outcome = domain.IntentPending, outcomeRetry
		if attempts >= d.config.MaxAttempts {
			status, outcome = domain.IntentFailed, outcomeFailed
		}
	}

	// Record the outcome even when the dispatcher is stopping.
	storeCtx := context.WithoutCancel(ctx)
	if updErr := d.intents.UpdateStatus(storeCtx, intent.ID, status, attempts, lastError); updErr != nil {
		log.Error("failed to record delivery outcome", "error", redact.Error(updErr))
	}
	d.metrics.IncrementDelivery(string(intent.Type), outcome)

	switch outcome {
	case outcomeDelivered:
		log.Debug("notification intent delivered", "attempts", attempts)
	case outcomeRetry:
		log.Warn("notification delivery failed, will retry",
			"attempts", attempts,
			"error", lastError)
	default:
		log.Error("notification delivery failed permanently",
			"attempts", attempts,
			"error", lastError)
	}
}

// sweeper periodically queues intents that stayed pending for too long
func (d *Dispatcher) sweeper(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := d.sweep(ctx, d.now().Add(-d.config.StuckAfter)); n > 0 {
				d.logger.Info("requeued pending notification intents", "count", n)
			}
		}
	}
}

// sweep queues pending intents last touched before olderThan and returns
// how many were queued.
func (d *Dispatcher) sweep(ctx context.Context, olderThan time.Time) int {
	pending, err := d.intents.ListPending(ctx, olderThan, d.config.QueueSize)
	if err != nil {
		d.logger.Error("failed to list pending notification intents", "error", redact.Error(err))
		return 0
	}

	queued := 0
	for _, intent := range pending {
		if d.offer(intent) {
			queued++
		}
	}
	return queued
}
