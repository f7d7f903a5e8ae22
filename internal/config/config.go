package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Database drivers.
const (
	DriverStorm  = "storm"
	DriverSQLite = "sqlite"
)

// A Config holds the values injected into the server components.
type Config struct {
	StoragePath string `env:"STORAGE_PATH" envDefault:"storage"`

	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"storm"`
	DatabasePath   string `env:"DATABASE_PATH"   envDefault:"clouddrive.db"`

	CacheSize int           `env:"CACHE_SIZE" envDefault:"1024"`
	CacheTTL  time.Duration `env:"CACHE_TTL"  envDefault:"5m"`

	CleanupSchedule string        `env:"CLEANUP_SCHEDULE" envDefault:"@every 30m"`
	StagingTTL      time.Duration `env:"STAGING_TTL"      envDefault:"0"`
}

// Load reads the optional .env files then the environment.
func Load(filenames ...string) (*Config, error) {
	// Missing .env files are fine.
	_ = godotenv.Load(filenames...)

	cfg := new(Config)
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "could not parse environment")
	}

	return cfg, cfg.Validate()
}

// Validate checks the consistency of the configuration.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverStorm, DriverSQLite:
	default:
		return errors.Errorf("unsupported database driver %q", c.DatabaseDriver)
	}

	if c.StoragePath == "" {
		return errors.New("storage path must not be empty")
	}
	if c.CacheSize < 0 {
		return errors.New("cache size must not be negative")
	}
	if c.StagingTTL < 0 {
		return errors.New("staging ttl must not be negative")
	}
	return nil
}
