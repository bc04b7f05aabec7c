// Package stats keeps running per-strategy counters of issued delays.
package stats

import (
	"context"
)

// Recorder accumulates calculation samples.
type Recorder interface {
	// Record adds one computed delay to the counters for its strategy.
	Record(ctx context.Context, sample Sample) error

	// Snapshot returns the current counters keyed by strategy.
	Snapshot(ctx context.Context) (map[string]Summary, error)

	// Close releases the backing connection
	Close() error
}

// Sample is a single computed delay before rounding.
type Sample struct {
	Strategy string
	Delay    float64
}

// Summary aggregates the samples of one strategy.
type Summary struct {
	Count int64   `json:"count"`
	Total float64 `json:"total"`
	Mean  float64 `json:"mean"`
}

func summarize(count int64, total float64) Summary {
	s := Summary{Count: count, Total: total}
	if count > 0 {
		s.Mean = total / float64(count)
	}
	return s
}
