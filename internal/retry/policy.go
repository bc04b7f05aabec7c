package retry

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidPolicy reports malformed backoff parameters.
	ErrInvalidPolicy = errors.New("invalid policy")
	// ErrInvalidInput reports a malformed retry count or previous sleep.
	ErrInvalidInput = errors.New("invalid input")
)

// MaxCap is the largest cap whose delays still round to an exact int64.
const MaxCap = 1 << 53

// Policy bounds a backoff calculation. All values share one time unit.
type Policy struct {
	Base       float64
	Multiplier float64
	Cap        float64
}

// NewPolicy validates the parameters and returns an immutable policy.
func NewPolicy(base, multiplier, cap float64) (Policy, error) {
	p := Policy{Base: base, Multiplier: multiplier, Cap: cap}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Validate checks 0 < Base, Multiplier >= 1 and Base <= Cap <= MaxCap.
func (p Policy) Validate() error {
	switch {
	case !finite(p.Base) || p.Base <= 0:
		return fmt.Errorf("%w: base must be a positive number, got %v", ErrInvalidPolicy, p.Base)
	case !finite(p.Multiplier) || p.Multiplier < 1:
		return fmt.Errorf("%w: multiplier must be >= 1, got %v", ErrInvalidPolicy, p.Multiplier)
	case !finite(p.Cap) || p.Cap < p.Base:
		return fmt.Errorf("%w: cap must be >= base (%v), got %v", ErrInvalidPolicy, p.Base, p.Cap)
	case p.Cap > MaxCap:
		return fmt.Errorf("%w: cap must be <= %d, got %v", ErrInvalidPolicy, int64(MaxCap), p.Cap)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
