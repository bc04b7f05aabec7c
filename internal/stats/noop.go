package stats

import (
	"context"
)

// NoOpRecorder discards every sample.
// Used when STATS_PROVIDER=none or Redis is unavailable.
type NoOpRecorder struct{}

func NewNoOpRecorder() *NoOpRecorder {
	return &NoOpRecorder{}
}

func (r *NoOpRecorder) Record(ctx context.Context, sample Sample) error {
	return nil
}

// Snapshot always returns an empty map
func (r *NoOpRecorder) Snapshot(ctx context.Context) (map[string]Summary, error) {
	return map[string]Summary{}, nil
}

func (r *NoOpRecorder) Close() error {
	return nil
}
