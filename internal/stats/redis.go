package stats

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Default key prefix for the counter hashes
const defaultKeyPrefix = "jitter:stats:"

type RedisRecorder struct {
	client *redis.Client
	prefix string
}

// NewRedisRecorder connects to Redis and verifies the connection.
func NewRedisRecorder(addr, password string) (*RedisRecorder, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisRecorder{
		client: client,
		prefix: defaultKeyPrefix,
	}, nil
}

func (r *RedisRecorder) countKey() string { return r.prefix + "count" }
func (r *RedisRecorder) totalKey() string { return r.prefix + "total" }

// Record bumps both hashes in one MULTI so count and total stay paired.
func (r *RedisRecorder) Record(ctx context.Context, sample Sample) error {
	pipe := r.client.TxPipeline()
	pipe.HIncrBy(ctx, r.countKey(), sample.Strategy, 1)
	pipe.HIncrByFloat(ctx, r.totalKey(), sample.Strategy, sample.Delay)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisRecorder) Snapshot(ctx context.Context) (map[string]Summary, error) {
	pipe := r.client.Pipeline()
	countsCmd := pipe.HGetAll(ctx, r.countKey())
	totalsCmd := pipe.HGetAll(ctx, r.totalKey())
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	counts := countsCmd.Val()
	totals := totalsCmd.Val()

	out := make(map[string]Summary, len(counts))
	for strategy, raw := range counts {
		count, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad count for %s: %w", strategy, err)
		}
		var total float64
		if rawTotal, ok := totals[strategy]; ok {
			total, err = strconv.ParseFloat(rawTotal, 64)
			if err != nil {
				return nil, fmt.Errorf("bad total for %s: %w", strategy, err)
			}
		}
		out[strategy] = summarize(count, total)
	}
	return out, nil
}

// Close closes the Redis connection
func (r *RedisRecorder) Close() error {
	return r.client.Close()
}
