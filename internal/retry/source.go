package retry

import (
	"math/rand/v2"
	"sync"
)

// Source supplies uniform values in [0, 1).
// *rand.Rand from math/rand/v2 satisfies it but is not safe for concurrent use.
type Source interface {
	Float64() float64
}

// LockedSource serializes access to a PCG generator so one source can be
// shared by concurrent requests.
type LockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSource returns a LockedSource seeded from the runtime's entropy.
func NewSource() *LockedSource {
	return NewSeededSource(rand.Uint64(), rand.Uint64())
}

// NewSeededSource returns a deterministic LockedSource.
func NewSeededSource(seed1, seed2 uint64) *LockedSource {
	return &LockedSource{r: rand.New(rand.NewPCG(seed1, seed2))}
}

func (s *LockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}
