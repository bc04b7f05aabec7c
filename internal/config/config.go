package config

import (
	"log/slog"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration shared by the gateway and the worker.
type Config struct {
	// Server
	Port       int    `env:"PORT" envDefault:"8080"`
	HealthPort int    `env:"HEALTH_PORT" envDefault:"8081"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	// Jitter defaults applied when an event omits a field
	Cap             float64 `env:"JITTER_CAP" envDefault:"200"`
	DefaultInterval float64 `env:"JITTER_DEFAULT_INTERVAL" envDefault:"1"`
	DefaultBackoff  float64 `env:"JITTER_DEFAULT_BACKOFF" envDefault:"2"`

	// Queue
	QueueProvider string `env:"QUEUE_PROVIDER" envDefault:"none"` // "none" or "nats"
	QueueURL      string `env:"QUEUE_URL"`
	Subject       string `env:"JITTER_SUBJECT" envDefault:"jitter.calculate"`

	// Audit store
	StoreProvider string `env:"STORE_PROVIDER" envDefault:"none"` // "none" or "postgres"
	DBURL         string `env:"DB_URL"`

	// Stats
	StatsProvider string `env:"STATS_PROVIDER" envDefault:"none"` // "none" or "redis"
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
