package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vsinha/baleyard/pkg/domain/entities"
)

// Storage drivers
const (
	DriverMemory   = "memory"
	DriverBadger   = "badger"
	DriverPostgres = "postgres"
)

// Config is the service configuration
type Config struct {
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	HTTP struct {
		Addr            string        `yaml:"addr"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"http"`

	Storage struct {
		Driver      string `yaml:"driver"`
		BadgerPath  string `yaml:"badger_path"`
		PostgresDSN string `yaml:"postgres_dsn"`
		// SeedOnEmpty loads the demo yard into a store that holds no records
		SeedOnEmpty bool   `yaml:"seed_on_empty"`
	} `yaml:"storage"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Stream   string `yaml:"stream"`
		MaxLen   int64  `yaml:"max_len"`
	} `yaml:"redis"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"metrics"`

	Alerts struct {
		// EvaluateInterval is how often the reload rule runs; 0 disables it
		EvaluateInterval time.Duration `yaml:"evaluate_interval"`
	} `yaml:"alerts"`

	// Process seeds the plant settings on first start and is re-applied when the file changes
	Process entities.ProcessConfig `yaml:"process"`
}

// Default returns the configuration used when no file or environment is set
func Default() *Config {
	cfg := &Config{}
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	cfg.HTTP.Addr = ":8080"
	cfg.HTTP.ShutdownTimeout = 10 * time.Second
	cfg.Storage.Driver = DriverMemory
	cfg.Storage.BadgerPath = "./data/baleyard"
	cfg.Storage.SeedOnEmpty = true
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.Stream = "baleyard:events"
	cfg.Redis.MaxLen = 100000
	cfg.Metrics.Enabled = true
	cfg.Alerts.EvaluateInterval = 5 * time.Minute
	cfg.Process = entities.DefaultProcessConfig()
	return cfg
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Log.Level = getEnv("BALEYARD_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("BALEYARD_LOG_FORMAT", cfg.Log.Format)
	cfg.HTTP.Addr = getEnv("BALEYARD_HTTP_ADDR", cfg.HTTP.Addr)
	cfg.Storage.Driver = getEnv("BALEYARD_STORAGE_DRIVER", cfg.Storage.Driver)
	cfg.Storage.BadgerPath = getEnv("BALEYARD_BADGER_PATH", cfg.Storage.BadgerPath)
	cfg.Storage.PostgresDSN = getEnv("BALEYARD_POSTGRES_DSN", cfg.Storage.PostgresDSN)
	cfg.Redis.Addr = getEnv("BALEYARD_REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("BALEYARD_REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.Stream = getEnv("BALEYARD_REDIS_STREAM", cfg.Redis.Stream)
	cfg.Storage.SeedOnEmpty = getEnv("BALEYARD_SEED_ON_EMPTY", strconv.FormatBool(cfg.Storage.SeedOnEmpty)) == "true"
	cfg.Redis.Enabled = getEnv("BALEYARD_REDIS_ENABLED", strconv.FormatBool(cfg.Redis.Enabled)) == "true"
	if v, err := strconv.Atoi(getEnv("BALEYARD_REDIS_DB", "")); err == nil {
		cfg.Redis.DB = v
	}
	cfg.Process.Timezone = getEnv("BALEYARD_TIMEZONE", cfg.Process.Timezone)
}

// Validate checks the configuration for unusable values
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverBadger:
		if c.Storage.BadgerPath == "" {
			return fmt.Errorf("storage.badger_path is required for the badger driver")
		}
	case DriverPostgres:
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr cannot be empty")
	}
	if c.Alerts.EvaluateInterval < 0 {
		return fmt.Errorf("alerts.evaluate_interval cannot be negative")
	}
	if c.Redis.Enabled && c.Redis.Stream == "" {
		return fmt.Errorf("redis.stream is required when redis is enabled")
	}
	if err := c.Process.Validate(); err != nil {
		return fmt.Errorf("process: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
