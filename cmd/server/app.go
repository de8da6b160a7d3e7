package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/dutrus/MESALIB/internal/config"
	"github.com/dutrus/MESALIB/internal/domain/matching"
	"github.com/dutrus/MESALIB/internal/metrics"
	"github.com/dutrus/MESALIB/internal/notify"
	"github.com/dutrus/MESALIB/internal/platform/memory"
	"github.com/dutrus/MESALIB/internal/platform/postgres"
	"github.com/dutrus/MESALIB/internal/platform/redis"
	"github.com/dutrus/MESALIB/internal/redact"
	"github.com/dutrus/MESALIB/internal/service"
	"github.com/dutrus/MESALIB/internal/service/auth"
	"github.com/dutrus/MESALIB/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// Infrastructure; db and redis stay nil when not configured
	db       *sql.DB
	redis    *redis.Client
	backend  store.Backend
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	// Services
	jwtService   auth.JWTService
	profiles     service.ProfileService
	lifecycle    *service.MatchLifecycleService
	autoMatcher  *service.AutoMatcher
	availability *service.AvailabilityService

	// Notification delivery
	dispatcher *notify.Dispatcher
}

// newApplication creates a new application instance with all dependencies initialized.
// Connections opened before a failing step are closed again.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config:   cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}
	if err := app.init(ctx); err != nil {
		app.cleanup()
		return nil, err
	}
	return app, nil
}

func (app *application) init(ctx context.Context) error {
	cfg, logger := app.config, app.logger

	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.NewWithRegisterer(app.registry)

	if err := app.setupBackend(ctx); err != nil {
		return err
	}

	sink, err := app.setupSink(ctx)
	if err != nil {
		return err
	}

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	app.dispatcher = notify.NewDispatcher(
		app.backend.Stores().Intents,
		sink,
		app.metrics,
		dispatcherConfig(cfg.Notify),
		logger,
	)

	scorer := matching.NewServiceWithParams(matching.NewParams(matching.ParamsConfig{
		NeedsWeight:    cfg.Matching.NeedsWeight,
		LanguageWeight: cfg.Matching.LanguageWeight,
		KindWeight:     cfg.Matching.KindWeight,
		CapacityWeight: cfg.Matching.CapacityWeight,
	}))

	app.lifecycle, err = service.NewMatchLifecycleService(
		app.backend,
		scorer,
		app.dispatcher,
		app.metrics,
		service.LifecycleConfig{MaxPendingPerRequester: cfg.Matching.MaxPendingPerRequester},
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create match lifecycle service: %w", err)
	}

	app.autoMatcher = service.NewAutoMatcher(app.lifecycle, app.metrics, logger)
	app.lifecycle.SetRematcher(app.autoMatcher)

	app.profiles, err = service.NewProfileService(app.backend, app.autoMatcher, logger)
	if err != nil {
		return fmt.Errorf("failed to create profile service: %w", err)
	}

	app.availability, err = service.NewAvailabilityService(app.backend, logger)
	if err != nil {
		return fmt.Errorf("failed to create availability service: %w", err)
	}

	logger.Info("application initialized successfully",
		"database_driver", cfg.Database.Driver,
		"notification_sink", sink.Name())
	return nil
}

// setupBackend opens the configured store backend, migrating the database
// first when asked to.
func (app *application) setupBackend(ctx context.Context) error {
	if app.config.Database.Driver == config.DriverMemory {
		app.logger.Warn("using in-memory store, data is lost on restart")
		app.backend = memory.NewBackend(nil)
		return nil
	}

	db, err := setupAppDatabase(ctx, app.config, app.logger)
	if err != nil {
		return err
	}
	app.db = db

	if app.config.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db, "up", app.logger); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	app.backend = postgres.NewBackend(db, app.logger)
	return nil
}

// setupSink picks the Redis stream when Redis is configured and the log
// sink otherwise.
func (app *application) setupSink(ctx context.Context) (notify.Sink, error) {
	client, err := redis.New(ctx, app.config.Notify)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %s", redact.Error(err))
	}
	if client == nil {
		app.logger.Warn("redis not configured, notification intents go to the log")
		return notify.NewLogSink(app.logger), nil
	}

	app.redis = client
	return notify.NewRedisStreamSink(client, app.config.Notify.Stream, app.config.Notify.StreamMaxLen), nil
}

func dispatcherConfig(cfg config.NotifyConfig) notify.DispatcherConfig {
	return notify.DispatcherConfig{
		WorkerCount:   cfg.WorkerCount,
		QueueSize:     cfg.QueueSize,
		MaxAttempts:   cfg.MaxAttempts,
		SweepInterval: time.Duration(cfg.SweepIntervalSeconds) * time.Second,
		StuckAfter:    time.Duration(cfg.StuckAfterSeconds) * time.Second,
	}
}

// Run serves HTTP and delivers notification intents until ctx is canceled,
// then shuts both down.
func (app *application) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.dispatcher.Run(gctx)
	})

	g.Go(func() error {
		app.logger.Info("starting server", "port", app.config.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info("shutting down server")

		timeout := time.Duration(app.config.Server.ShutdownTimeoutSeconds) * time.Second
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), timeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	app.logger.Info("server shutdown completed")
	return err
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis connection", "error", redact.Error(err))
		}
		app.redis = nil
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", redact.Error(err))
		}
		app.db = nil
	}
}
