package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"jitter-service/internal/app"
	"jitter-service/internal/jitter"
	"jitter-service/internal/queue"
	"jitter-service/internal/retry"
	"jitter-service/internal/stats"
	"jitter-service/internal/store"
)

func newTestDeps() app.Deps {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return app.Deps{
		Log: log,
		Service: jitter.NewService(log, jitter.Defaults{Interval: 1, Backoff: 2, Cap: 200},
			jitter.WithSource(retry.NewSeededSource(5, 5))),
	}
}

func TestCalculateHandlerReplies(t *testing.T) {
	handler := calculateHandler(newTestDeps())

	out, err := handler(context.Background(), []byte(`{"RetryCount":9,"Strategy":"exponential"}`))
	require.NoError(t, err)

	var delay int
	require.NoError(t, json.Unmarshal(out, &delay))
	assert.Equal(t, 200, delay)
}

func TestCalculateHandlerRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		kind string
	}{
		{"invalid policy", `{"Backoff":0.5}`, "InvalidPolicy"},
		{"invalid input", `{"RetryCount":-2}`, "InvalidInput"},
		{"malformed", `not json`, "InvalidInput"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := calculateHandler(newTestDeps())(context.Background(), []byte(tt.body))
			require.NoError(t, err)

			var reply queue.ErrorReply
			require.NoError(t, json.Unmarshal(out, &reply))
			assert.Equal(t, tt.kind, reply.Kind)
			assert.NotEmpty(t, reply.Error)
		})
	}
}

func TestRunWithoutQueueClosesDeps(t *testing.T) {
	st := new(store.MockStore)
	st.On("Close").Return(nil).Once()
	rec := new(stats.MockRecorder)
	rec.On("Close").Return(nil).Once()

	deps := newTestDeps()
	deps.Store = st
	deps.Stats = rec

	assert.Equal(t, 1, run(deps))
	st.AssertExpectations(t)
	rec.AssertExpectations(t)
}

func TestRunStopsWhenServeFails(t *testing.T) {
	q := new(queue.MockQueue)
	q.On("Serve", mock.Anything, "jitter.calculate", mock.Anything).Return(errors.New("subscribe failed")).Once()
	q.On("Close").Return(nil).Once()

	deps := newTestDeps()
	deps.Queue = q
	deps.Config.Subject = "jitter.calculate"
	deps.Config.HealthPort = 0
	deps.Registry = prometheus.NewRegistry()

	assert.Equal(t, 1, run(deps))
	q.AssertExpectations(t)
}
