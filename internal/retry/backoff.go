// Package retry computes backoff delays with jitter. It never sleeps or
// re-runs anything; callers own the retry loop.
package retry

import (
	"fmt"
	"math"
)

// decorrelatedSpread is the upper factor applied to the previous sleep.
const decorrelatedSpread = 3

// Calculator derives delays for one policy.
type Calculator struct {
	policy Policy
	src    Source
}

// NewCalculator validates policy and binds it to src.
func NewCalculator(policy Policy, src Source) (*Calculator, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		src = NewSource()
	}
	return &Calculator{policy: policy, src: src}, nil
}

// Policy returns the bound policy.
func (c *Calculator) Policy() Policy {
	return c.policy
}

// Exponential returns min(cap, base * multiplier^n). Negative n counts as 0.
func (c *Calculator) Exponential(n int) float64 {
	if n < 0 {
		n = 0
	}
	delay := c.policy.Base * math.Pow(c.policy.Multiplier, float64(n))
	// Pow overflows to +Inf for large n, which min folds into the cap.
	return math.Min(c.policy.Cap, delay)
}

// FullJitter returns a uniform value in [0, Exponential(n)].
func (c *Calculator) FullJitter(n int) float64 {
	return c.uniform(0, c.Exponential(n))
}

// DecorrelatedJitter draws from [base, previousSleep*3] and caps the result.
// A previous sleep below base/3 collapses the range to base.
func (c *Calculator) DecorrelatedJitter(previousSleep float64) (float64, error) {
	if !finite(previousSleep) || previousSleep < 0 {
		return 0, fmt.Errorf("%w: previous sleep must be a non-negative number, got %v", ErrInvalidInput, previousSleep)
	}
	// previousSleep*3 may overflow to +Inf; 0*Inf would make the draw NaN.
	hi := math.Min(math.MaxFloat64, math.Max(c.policy.Base, previousSleep*decorrelatedSpread))
	return math.Min(c.policy.Cap, c.uniform(c.policy.Base, hi)), nil
}

func (c *Calculator) uniform(lo, hi float64) float64 {
	return lo + c.src.Float64()*(hi-lo)
}
