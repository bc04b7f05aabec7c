package jitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jitter-service/internal/retry"
)

func ptr(v float64) *float64 { return &v }

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    Event
		wantErr error
	}{
		{name: "empty body", body: "", want: Event{}},
		{name: "empty object", body: "{}", want: Event{}},
		{name: "null", body: "null", want: Event{}},
		{
			name: "all fields",
			body: `{"RetryCount":3,"Interval":0.5,"Backoff":3,"Cap":60,"Strategy":"decorrelated","PreviousSleep":4}`,
			want: Event{RetryCount: ptr(3), Interval: ptr(0.5), Backoff: ptr(3), Cap: ptr(60), Strategy: StrategyDecorrelated, PreviousSleep: ptr(4)},
		},
		{name: "string retry count", body: `{"RetryCount":"abc"}`, wantErr: retry.ErrInvalidInput},
		{name: "string interval", body: `{"Interval":"fast"}`, wantErr: retry.ErrInvalidPolicy},
		{name: "string backoff", body: `{"Backoff":true}`, wantErr: retry.ErrInvalidPolicy},
		{name: "out of range cap", body: `{"Cap":1e400}`, wantErr: retry.ErrInvalidPolicy},
		{name: "array body", body: `[1,2]`, wantErr: retry.ErrInvalidInput},
		{name: "broken json", body: `{"RetryCount":`, wantErr: retry.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeEvent([]byte(tt.body))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEventValidate(t *testing.T) {
	tests := []struct {
		name    string
		event   Event
		wantErr error
		field   string
	}{
		{name: "empty", event: Event{}},
		{name: "zero retry count", event: Event{RetryCount: ptr(0)}},
		{name: "negative retry count", event: Event{RetryCount: ptr(-1)}, wantErr: retry.ErrInvalidInput, field: "RetryCount"},
		{name: "fractional retry count", event: Event{RetryCount: ptr(1.5)}, wantErr: retry.ErrInvalidInput, field: "RetryCount"},
		{name: "unknown strategy", event: Event{Strategy: "linear"}, wantErr: retry.ErrInvalidInput, field: "Strategy"},
		{name: "negative previous sleep", event: Event{PreviousSleep: ptr(-2)}, wantErr: retry.ErrInvalidInput, field: "PreviousSleep"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestEventAttempt(t *testing.T) {
	assert.Equal(t, 0, Event{}.Attempt())
	assert.Equal(t, 4, Event{RetryCount: ptr(4)}.Attempt())
	assert.Equal(t, maxRetryCount, Event{RetryCount: ptr(1e18)}.Attempt())
}

func TestErrorKind(t *testing.T) {
	_, policyErr := retry.NewPolicy(0, 2, 200)
	_, inputErr := DecodeEvent([]byte(`{"RetryCount":"x"}`))

	assert.Equal(t, "InvalidPolicy", ErrorKind(policyErr))
	assert.Equal(t, "InvalidInput", ErrorKind(inputErr))
	assert.Equal(t, "Internal", ErrorKind(assert.AnError))
}
