package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/baleyard/pkg/application/services"
	"github.com/vsinha/baleyard/pkg/config"
	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/domain/repositories"
	"github.com/vsinha/baleyard/pkg/infrastructure/events"
	"github.com/vsinha/baleyard/pkg/infrastructure/logging"
	"github.com/vsinha/baleyard/pkg/infrastructure/persistence/badger"
	"github.com/vsinha/baleyard/pkg/infrastructure/persistence/postgres"
	"github.com/vsinha/baleyard/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/baleyard/pkg/infrastructure/seed"
)

// Config holds the options every command shares
type Config struct {
	ConfigPath string
	Verbose    bool
	Out        io.Writer
	// Now overrides the clock, for reproducible output
	Now func() time.Time
}

func (c Config) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c Config) clock() func() time.Time {
	if c.Now == nil {
		return time.Now
	}
	return c.Now
}

// loadConfig reads the service configuration, raising the log level when verbose
func (c Config) loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	level := cfg.Log.Level
	if c.Verbose {
		level = "debug"
	}
	logger, err := logging.NewLogger(level, cfg.Log.Format, "baleyard")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

// App is an opened yard with the resources that must be released
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Store   *memory.Store
	Events  *events.InMemoryEventStore
	Runtime services.Runtime

	closers []func() error
}

// OpenApp opens the configured store. A store without records is seeded with
// the demo yard when storage.seed_on_empty is set, and takes the configured
// process settings on first start.
func OpenApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, clock func() time.Time, opts ...memory.Option) (*App, error) {
	logger = logging.OrNop(logger)
	app := &App{Config: cfg, Logger: logger}

	persister, closer, err := openPersister(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		app.closers = append(app.closers, closer)
	}

	storeOpts := []memory.Option{memory.WithLogger(logger)}
	if persister != nil {
		storeOpts = append(storeOpts, memory.WithPersister(persister))
	}
	store, err := memory.Open(ctx, append(storeOpts, opts...)...)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = store
	app.Events = events.NewInMemoryEventStore(logger)
	app.Runtime = services.Runtime{
		Store:  store,
		Events: app.Events,
		Clock:  clock,
		IDs:    services.UUIDGenerator{},
		Logger: logger,
	}

	if isEmpty(store) {
		if err := app.initialise(ctx, clock()); err != nil {
			app.Close()
			return nil, err
		}
	}
	return app, nil
}

func (a *App) initialise(ctx context.Context, now time.Time) error {
	if a.Config.Storage.SeedOnEmpty {
		if err := seed.Load(ctx, a.Store, seed.Generate(now, uint64(now.UnixNano()))); err != nil {
			return fmt.Errorf("failed to seed demo yard: %w", err)
		}
		a.Logger.Info("seeded demo yard", zap.String("driver", a.Config.Storage.Driver))
	}
	return a.ApplyProcessConfig(ctx, a.Config.Process)
}

// ApplyProcessConfig stores cfg as the plant settings unless they already match
func (a *App) ApplyProcessConfig(ctx context.Context, cfg entities.ProcessConfig) error {
	if reflect.DeepEqual(a.Store.Config(), cfg) {
		return nil
	}
	settings := services.NewSettingsService(a.Runtime)
	if _, err := settings.ReplaceProcessConfig(ctx, "system", cfg); err != nil {
		return fmt.Errorf("failed to apply process configuration: %w", err)
	}
	return nil
}

// Close waits for pending event handlers and releases the store backend
func (a *App) Close() error {
	if a.Events != nil {
		a.Events.Wait()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func openPersister(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repositories.Persister, func() error, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return nil, nil, nil
	case config.DriverBadger:
		p, err := badger.Open(badger.Config{Path: cfg.Storage.BadgerPath, SyncWrites: true, Logger: logger})
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	case config.DriverPostgres:
		p, err := postgres.Open(ctx, postgres.Config{
			DSN:             cfg.Storage.PostgresDSN,
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			Logger:          logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func isEmpty(r repositories.Reader) bool {
	return len(r.Pyramids()) == 0 && len(r.Suppliers()) == 0 && len(r.Trucks()) == 0 && len(r.Events()) == 0
}
