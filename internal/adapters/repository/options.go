// Package repository defines the user store interface and errors.
package repository

import (
	"math/rand"
	"time"
)

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}

// WithRandSeed seeds treap priorities deterministically; used by tests and
// benchmarks that want reproducible tree shapes.
func WithRandSeed(seed int64) Option {
	return func(s *MemoryStore) {
		s.rnd = rand.New(rand.NewSource(seed)) //nolint:gosec // treap priorities, not crypto
	}
}
