package retry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

func newTestCalculator(t *testing.T, base, multiplier, cap float64, src Source) *Calculator {
	t.Helper()
	p, err := NewPolicy(base, multiplier, cap)
	require.NoError(t, err)
	c, err := NewCalculator(p, src)
	require.NoError(t, err)
	return c
}

func TestExponential(t *testing.T) {
	c := newTestCalculator(t, 1, 2, 200, fixedSource(0))

	tests := []struct {
		attempt  int
		expected float64
	}{
		{0, 1},   // 1 * 2^0
		{1, 2},   // 1 * 2^1
		{3, 8},   // 1 * 2^3
		{7, 128}, // 1 * 2^7
		{8, 200}, // 256 capped
		{10, 200},
		{2000, 200}, // Pow overflows to +Inf
		{-1, 1},     // clamped to 0
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, c.Exponential(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestExponentialMonotoneAndCapped(t *testing.T) {
	c := newTestCalculator(t, 0.5, 1.7, 90, fixedSource(0))

	prev := c.Exponential(0)
	for n := 1; n < 64; n++ {
		got := c.Exponential(n)
		assert.GreaterOrEqual(t, got, prev, "attempt %d", n)
		assert.LessOrEqual(t, got, 90.0, "attempt %d", n)
		assert.Equal(t, got, c.Exponential(n), "exponential must be pure")
		prev = got
	}
}

func TestExponentialWithUnitMultiplier(t *testing.T) {
	c := newTestCalculator(t, 3, 1, 200, fixedSource(0))
	assert.Equal(t, 3.0, c.Exponential(50))
}

func TestFullJitterBounds(t *testing.T) {
	c := newTestCalculator(t, 1, 2, 200, NewSeededSource(1, 2))

	for n := 0; n < 20; n++ {
		for i := 0; i < 50; i++ {
			got := c.FullJitter(n)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, c.Exponential(n))
		}
	}
}

func TestFullJitterUsesSource(t *testing.T) {
	c := newTestCalculator(t, 1, 2, 200, fixedSource(0.5))
	assert.Equal(t, 4.0, c.FullJitter(3))

	c = newTestCalculator(t, 1, 2, 200, fixedSource(0))
	assert.Equal(t, 0.0, c.FullJitter(3))
}

func TestSeededSourceIsDeterministic(t *testing.T) {
	a := newTestCalculator(t, 1, 2, 200, NewSeededSource(42, 7))
	b := newTestCalculator(t, 1, 2, 200, NewSeededSource(42, 7))

	for n := 0; n < 10; n++ {
		assert.Equal(t, a.FullJitter(n), b.FullJitter(n))
	}
}

func TestDecorrelatedJitterBounds(t *testing.T) {
	c := newTestCalculator(t, 2, 2, 50, NewSeededSource(3, 4))

	for _, prev := range []float64{0, 0.1, 1, 2, 10, 16.6, 40, 1000} {
		for i := 0; i < 50; i++ {
			got, err := c.DecorrelatedJitter(prev)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, got, 2.0, "prev %v", prev)
			assert.LessOrEqual(t, got, 50.0, "prev %v", prev)
		}
	}
}

func TestDecorrelatedJitterRange(t *testing.T) {
	tests := []struct {
		name     string
		src      fixedSource
		prev     float64
		expected float64
	}{
		{"low end is base", 0, 10, 1},
		{"midpoint", 0.5, 10, 15.5}, // 1 + 0.5*(30-1)
		{"capped", 0.99, 1000, 200},
		{"tiny previous collapses to base", 0.7, 0.1, 1},
		{"overflowing previous with zero draw", 0, 1e308, 1},
		{"overflowing previous with high draw", 0.9, 1e308, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCalculator(t, 1, 2, 200, tt.src)
			got, err := c.DecorrelatedJitter(tt.prev)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestDecorrelatedJitterRejectsBadPreviousSleep(t *testing.T) {
	c := newTestCalculator(t, 1, 2, 200, fixedSource(0.5))

	for _, prev := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := c.DecorrelatedJitter(prev)
		assert.ErrorIs(t, err, ErrInvalidInput, "prev %v", prev)
	}
}

func TestNewCalculatorDefaultsSource(t *testing.T) {
	c, err := NewCalculator(Policy{Base: 1, Multiplier: 2, Cap: 200}, nil)
	require.NoError(t, err)
	got := c.FullJitter(0)
	assert.True(t, got >= 0 && got <= 1)
}
