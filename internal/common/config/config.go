package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8081"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Ledger struct {
		// Base URL of the remote ledger API, e.g. http://localhost:3000/api
		BaseURL    string `env:"LEDGER_BASE_URL" envDefault:"http://localhost:3000/api"`
		TimeoutSec int    `env:"LEDGER_TIMEOUT_SEC" envDefault:"10"`
	}

	Cache struct {
		// Backend for the durable session cache: "sqlite" or "redis"
		Backend    string `env:"CACHE_BACKEND" envDefault:"sqlite"`
		SQLitePath string `env:"CACHE_SQLITE_PATH" envDefault:"banner-earn.db"`

		Redis struct {
			Host     string `env:"REDIS_HOST" envDefault:"localhost"`
			Port     int    `env:"REDIS_PORT" envDefault:"6379"`
			Password string `env:"REDIS_PASSWORD" envDefault:""`
			DB       int    `env:"REDIS_DB" envDefault:"0"`
		}
	}

	Banners struct {
		Count int `env:"BANNER_COUNT" envDefault:"6"`
	}

	Alerts struct {
		// Seconds before a notice auto-dismisses, mirroring the UI timer
		TTLSec int `env:"ALERT_TTL_SEC" envDefault:"5"`
	}
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		// Missing .env is fine; production sets variables directly
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}

	return cfg
}

// LedgerTimeout returns the configured ledger round-trip timeout.
func (c *Config) LedgerTimeout() time.Duration {
	return time.Duration(c.Ledger.TimeoutSec) * time.Second
}

// AlertTTL returns the configured alert auto-dismiss interval.
func (c *Config) AlertTTL() time.Duration {
	return time.Duration(c.Alerts.TTLSec) * time.Second
}
