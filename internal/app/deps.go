package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"jitter-service/internal/config"
	"jitter-service/internal/jitter"
	"jitter-service/internal/logger"
	"jitter-service/internal/metrics"
	"jitter-service/internal/queue"
	"jitter-service/internal/retry"
	"jitter-service/internal/stats"
	"jitter-service/internal/store"
)

// Deps bundles common runtime dependencies for services.
type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Service  *jitter.Service
	Store    store.Store
	Stats    stats.Recorder
	Queue    queue.Queue // nil unless QUEUE_PROVIDER=nats
	Registry *prometheus.Registry
}

// Build loads env, config, and shared components for the named service.
func Build(service string) (Deps, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Deps{}, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg := config.Load()
	return assemble(cfg, logger.New(service, cfg.LogLevel), defaultProviders)
}

// providers opens the backing components; tests swap in fakes.
type providers struct {
	store func(config.Config, *slog.Logger) (store.Store, error)
	stats func(config.Config, *slog.Logger) (stats.Recorder, error)
	queue func(config.Config, *slog.Logger) (queue.Queue, error)
}

var defaultProviders = providers{store: buildStore, stats: buildStats, queue: buildQueue}

// assemble opens components in order and closes the ones already open
// when a later one fails.
func assemble(cfg config.Config, log *slog.Logger, p providers) (Deps, error) {
	deps := Deps{Config: cfg, Log: log}

	st, err := p.store(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	deps.Store = st

	rec, err := p.stats(cfg, log)
	if err != nil {
		deps.Close()
		return Deps{}, fmt.Errorf("failed to initialize stats: %w", err)
	}
	deps.Stats = rec

	q, err := p.queue(cfg, log)
	if err != nil {
		deps.Close()
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	deps.Queue = q

	deps.Registry = prometheus.NewRegistry()
	deps.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps.Service = jitter.NewService(log, defaultsFrom(cfg),
		jitter.WithSource(retry.NewSource()),
		jitter.WithStore(st),
		jitter.WithStats(rec),
		jitter.WithMetrics(metrics.New(deps.Registry)),
	)
	return deps, nil
}

// Close releases every backing connection, logging failures.
func (d Deps) Close() {
	if d.Queue != nil {
		if err := d.Queue.Close(); err != nil {
			d.Log.Warn("failed to close queue", "err", err)
		}
	}
	if d.Stats != nil {
		if err := d.Stats.Close(); err != nil {
			d.Log.Warn("failed to close stats", "err", err)
		}
	}
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			d.Log.Warn("failed to close store", "err", err)
		}
	}
}

func defaultsFrom(cfg config.Config) jitter.Defaults {
	return jitter.Defaults{
		Interval: cfg.DefaultInterval,
		Backoff:  cfg.DefaultBackoff,
		Cap:      cfg.Cap,
	}
}

func buildStore(cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.StoreProvider {
	case "", "none":
		return store.NoOpStore{}, nil
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when STORE_PROVIDER=postgres")
		}
		db, err := store.NewPostgres(cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres audit store")
		return db, nil
	default:
		return nil, fmt.Errorf("invalid STORE_PROVIDER: %s (valid options: none, postgres)", cfg.StoreProvider)
	}
}

func buildStats(cfg config.Config, log *slog.Logger) (stats.Recorder, error) {
	switch cfg.StatsProvider {
	case "", "none":
		return stats.NewNoOpRecorder(), nil
	case "redis":
		rec, err := stats.NewRedisRecorder(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Warn("redis unavailable, stats disabled", "addr", cfg.RedisAddr, "err", err)
			return stats.NewNoOpRecorder(), nil
		}
		log.Info("using Redis stats", "addr", cfg.RedisAddr)
		return rec, nil
	default:
		return nil, fmt.Errorf("invalid STATS_PROVIDER: %s (valid options: none, redis)", cfg.StatsProvider)
	}
}

func buildQueue(cfg config.Config, log *slog.Logger) (queue.Queue, error) {
	switch cfg.QueueProvider {
	case "", "none":
		return nil, nil
	case "nats":
		if cfg.QueueURL == "" {
			return nil, fmt.Errorf("QUEUE_URL is required when QUEUE_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.QueueURL, nats.Name("jitter-"+cfg.Subject))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS queue")
		return queue.NewNATS(log, nc, "jitter-workers"), nil
	default:
		return nil, fmt.Errorf("invalid QUEUE_PROVIDER: %s (valid options: none, nats)", cfg.QueueProvider)
	}
}
