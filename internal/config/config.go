package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime settings for the courtside binaries.
type Config struct {
	DatabaseDriver    string        `env:"DATABASE_DRIVER" envDefault:"postgres"`
	DatabaseURL       string        `env:"DATABASE_URL,required,notEmpty"`
	RedisURL          string        `env:"REDIS_URL"`
	RESTPort          string        `env:"REST_PORT" envDefault:"8080"`
	LogMode           string        `env:"LOG_MODE" envDefault:"development"`
	CacheTTL          time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	ESPNAPIBase       string        `env:"ESPN_API_BASE" envDefault:"https://site.api.espn.com/apis/site/v2/sports/basketball/nba"`
	ImportConcurrency int           `env:"IMPORT_CONCURRENCY" envDefault:"4"`
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings env tags cannot express.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q (want postgres or sqlite)", c.DatabaseDriver)
	}
	if c.ImportConcurrency < 1 {
		return fmt.Errorf("IMPORT_CONCURRENCY must be positive, got %d", c.ImportConcurrency)
	}
	return nil
}
