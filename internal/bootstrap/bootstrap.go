// Package bootstrap builds the object graph shared by the service and the CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jsamuelsen/quote-manager/internal/adapters/clients"
	"github.com/jsamuelsen/quote-manager/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quote-manager/internal/adapters/storage"
	"github.com/jsamuelsen/quote-manager/internal/app"
	"github.com/jsamuelsen/quote-manager/internal/domain"
	"github.com/jsamuelsen/quote-manager/internal/platform/config"
	"github.com/jsamuelsen/quote-manager/internal/platform/metrics"
	"github.com/jsamuelsen/quote-manager/internal/ports"
)

// SlotBackend is a slot store that reports its health and holds resources.
type SlotBackend interface {
	ports.SlotStore
	ports.HealthChecker
	io.Closer
}

// Options configures New.
type Options struct {
	Config *config.Config
	Logger *slog.Logger

	// Notifiers receive every sync summary after the metrics recorder.
	Notifiers []ports.SyncNotifier

	// Slots overrides the backend selected by Config.Storage.
	Slots SlotBackend

	// Remote overrides the HTTP remote built from Config.Services.Remote.
	Remote ports.RemoteQuotes

	// Clock defaults to ports.SystemClock.
	Clock ports.Clock
}

// Container holds the wired components.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	Slots     SlotBackend
	Remote    ports.RemoteQuotes
	Store     *app.QuoteStore
	Quotes    *app.QuoteService
	Sync      *app.SyncService
	Scheduler *app.Scheduler

	Health  *ports.DefaultHealthRegistry
	Metrics *prometheus.Registry
}

// New opens storage, loads the collection and wires the services.
// The caller owns the container and must Close it.
func New(ctx context.Context, opts Options) (*Container, error) {
	if opts.Config == nil {
		return nil, errors.New("bootstrap: config is required")
	}

	cfg := opts.Config

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	clock := opts.Clock
	if clock == nil {
		clock = ports.SystemClock{}
	}

	slots := opts.Slots
	if slots == nil {
		var err error

		slots, err = OpenSlots(ctx, cfg.Storage)
		if err != nil {
			return nil, err
		}
	}

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Slots:   slots,
		Health:  ports.NewHealthRegistry(ports.WithHealthClock(clock)),
		Metrics: prometheus.NewRegistry(),
	}

	if err := c.wire(ctx, opts, clock); err != nil {
		_ = c.Close()
		return nil, err
	}

	return c, nil
}

func (c *Container) wire(ctx context.Context, opts Options, clock ports.Clock) error {
	cfg := c.Config

	var seeds domain.Collection
	if cfg.Storage.Seed {
		seeds = app.DefaultSeeds()
	}

	c.Store = app.NewQuoteStore(app.QuoteStoreConfig{
		Slots:  c.Slots,
		Seeds:  seeds,
		Logger: c.Logger,
	})

	if _, err := c.Store.Load(ctx); err != nil {
		return fmt.Errorf("loading quotes: %w", err)
	}

	c.Quotes = app.NewQuoteService(app.QuoteServiceConfig{
		Store:       c.Store,
		Preferences: c.Slots,
		Session:     storage.NewMemoryStore(),
		Logger:      c.Logger,
	})

	remote := opts.Remote
	if remote == nil {
		var err error

		remote, err = NewRemote(cfg, c.Logger)
		if err != nil {
			return err
		}
	}

	c.Remote = remote

	c.Metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	syncMetrics, err := metrics.NewSyncMetrics(c.Metrics)
	if err != nil {
		return fmt.Errorf("registering sync metrics: %w", err)
	}

	if err := metrics.RegisterCollectionSize(c.Metrics, c.Store.Len); err != nil {
		return fmt.Errorf("registering collection metrics: %w", err)
	}

	notifiers := append(ports.SyncNotifiers{syncMetrics}, opts.Notifiers...)

	c.Sync = app.NewSyncService(app.SyncServiceConfig{
		Store:       c.Store,
		Remote:      remote,
		Notifier:    notifiers,
		PushEnabled: cfg.Sync.PushEnabled,
		Clock:       clock,
		Logger:      c.Logger,
	})

	interval := cfg.Sync.Interval
	if !cfg.Sync.Enabled {
		interval = 0
	}

	c.Scheduler = app.NewScheduler(c.Sync, app.SchedulerConfig{
		Clock:      clock,
		Interval:   interval,
		RunOnStart: cfg.Sync.RunOnStart,
		Logger:     c.Logger,
	})

	// The remote is not a readiness dependency: the collection is served
	// locally while the remote is down.
	for _, checker := range []ports.HealthChecker{c.Slots, c.Store} {
		if err := c.Health.Register(checker); err != nil {
			return fmt.Errorf("registering health check: %w", err)
		}
	}

	return nil
}

// Close releases the slot backend.
func (c *Container) Close() error {
	if c.Slots == nil {
		return nil
	}

	if err := c.Slots.Close(); err != nil {
		return fmt.Errorf("closing %s storage: %w", c.Slots.Name(), err)
	}

	return nil
}

// OpenSlots opens the slot backend selected by cfg.Driver.
func OpenSlots(ctx context.Context, cfg config.StorageConfig) (SlotBackend, error) {
	switch cfg.Driver {
	case "memory":
		return storage.NewMemoryStore(), nil

	case "file":
		s, err := storage.NewOSFileStore(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("opening file storage: %w", err)
		}

		return s, nil

	case "sqlite":
		s, err := storage.NewSQLiteStore(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite storage: %w", err)
		}

		return s, nil

	case "postgres":
		s, err := storage.NewPostgresStore(ctx, storage.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.MaxConns,
		})
		if err != nil {
			return nil, fmt.Errorf("opening postgres storage: %w", err)
		}

		return s, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// NewRemote builds the resilient HTTP client and the remote adapter on top of it.
func NewRemote(cfg *config.Config, logger *slog.Logger) (*acl.RemoteQuotes, error) {
	remoteCfg := cfg.Services.Remote

	client, err := clients.New(&clients.Config{
		BaseURL:     remoteCfg.BaseURL,
		ServiceName: remoteCfg.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		UserAgent:   cfg.App.Name + "/" + cfg.App.Version,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating remote client: %w", err)
	}

	return acl.NewRemoteQuotes(acl.RemoteQuotesConfig{
		Client:     client,
		FetchPath:  remoteCfg.FetchPath,
		PushPath:   remoteCfg.PushPath,
		Category:   remoteCfg.Category,
		MaxRecords: remoteCfg.MaxRecords,
		Logger:     logger,
	}), nil
}
