// Package domain holds small contracts shared across modules.
package domain

import (
	"math/rand"
	"sync"
)

// SyntheticSource produces bounded synthetic estimates. The performance scorer
// and ranking engine use it for metrics that cannot be derived from history
// (response latency, no-data fallbacks). Injectable so tests can substitute a
// deterministic source.
type SyntheticSource interface {
	// Uniform returns a value drawn uniformly from [min, max).
	Uniform(min, max float64) float64
}

// RandSource is a seeded SyntheticSource backed by math/rand.
// Safe for concurrent use.
type RandSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandSource creates a RandSource with the given seed.
func NewRandSource(seed int64) *RandSource {
	return &RandSource{rng: rand.New(rand.NewSource(seed))}
}

// Uniform returns a value drawn uniformly from [min, max).
func (s *RandSource) Uniform(min, max float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return min + s.rng.Float64()*(max-min)
}

// FixedSource always returns the midpoint of the requested range.
// Deterministic stand-in for tests.
type FixedSource struct{}

// Uniform returns the midpoint of [min, max).
func (FixedSource) Uniform(min, max float64) float64 {
	return (min + max) / 2
}
