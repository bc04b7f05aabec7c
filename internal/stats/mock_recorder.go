package stats

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockRecorder is a mock implementation of Recorder using testify/mock.
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Record(ctx context.Context, sample Sample) error {
	args := m.Called(ctx, sample)
	return args.Error(0)
}

func (m *MockRecorder) Snapshot(ctx context.Context) (map[string]Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]Summary), args.Error(1)
}

func (m *MockRecorder) Close() error {
	args := m.Called()
	return args.Error(0)
}
