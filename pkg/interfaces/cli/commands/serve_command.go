package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vsinha/baleyard/pkg/application/services"
	"github.com/vsinha/baleyard/pkg/config"
	"github.com/vsinha/baleyard/pkg/infrastructure/events"
	"github.com/vsinha/baleyard/pkg/infrastructure/metrics"
	"github.com/vsinha/baleyard/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/baleyard/pkg/interfaces/httpapi"
)

// ServeConfig holds the options of the serve command
type ServeConfig struct {
	Config
	// Addr overrides http.addr when set
	Addr string
}

// ServeCommand runs the HTTP API with its background workers
type ServeCommand struct {
	config ServeConfig
}

// NewServeCommand creates a serve command with the given configuration
func NewServeCommand(config ServeConfig) *ServeCommand {
	return &ServeCommand{config: config}
}

// Execute serves until ctx is cancelled or a worker fails
func (c *ServeCommand) Execute(ctx context.Context) error {
	cfg, logger, err := c.config.loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()
	if c.config.Addr != "" {
		cfg.HTTP.Addr = c.config.Addr
	}

	var (
		gatherer prometheus.Gatherer = prometheus.NewRegistry()
		recorder *metrics.Recorder
		opts     []memory.Option
	)
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		recorder = metrics.NewRecorder(reg)
		gatherer = reg
		opts = append(opts, memory.WithCommitHook(recorder.ObserveCommit))
	}

	app, err := OpenApp(ctx, cfg, logger, c.config.clock(), opts...)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer app.Close()

	if recorder != nil {
		if err := app.Events.Subscribe(events.AllEventTypes, recorder); err != nil {
			return err
		}
	}
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		publisher := events.NewRedisStreamPublisher(client, cfg.Redis.Stream, cfg.Redis.MaxLen, logger)
		if err := app.Events.Subscribe(events.AllEventTypes, publisher); err != nil {
			return err
		}
		logger.Info("publishing events to redis", zap.String("stream", cfg.Redis.Stream))
	}

	server := httpapi.NewServer(httpapi.Options{
		Runtime:  app.Runtime,
		Gatherer: gatherer,
		Recorder: recorder,
		Logger:   logger,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ListenAndServe(ctx, cfg.HTTP.Addr, cfg.HTTP.ShutdownTimeout)
	})
	if c.config.ConfigPath != "" {
		g.Go(func() error {
			return config.Watch(ctx, c.config.ConfigPath, logger, func(updated *config.Config) {
				if err := app.ApplyProcessConfig(ctx, updated.Process); err != nil {
					logger.Warn("failed to apply reloaded process settings", zap.Error(err))
				}
			})
		})
	}
	if cfg.Alerts.EvaluateInterval > 0 {
		g.Go(func() error {
			return evaluateAlerts(ctx, services.NewAlertService(app.Runtime), cfg.Alerts.EvaluateInterval, logger)
		})
	}

	logger.Info("baleyard started",
		zap.String("addr", cfg.HTTP.Addr),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.Bool("metrics", cfg.Metrics.Enabled),
		zap.Bool("redis", cfg.Redis.Enabled))

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("baleyard stopped")
	return nil
}

// evaluateAlerts runs the reload rule on every tick until ctx ends
func evaluateAlerts(ctx context.Context, alerts *services.AlertService, every time.Duration, logger *zap.Logger) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			raised, err := alerts.EvaluateReload(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Warn("reload evaluation failed", zap.Error(err))
				continue
			}
			for _, a := range raised {
				logger.Info("reload alert raised", zap.String("alert_id", a.AlertID), zap.String("grade", a.Meta["grade"]))
			}
		}
	}
}
