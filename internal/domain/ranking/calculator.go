// Package ranking implements tie-aware rank computation over the user store:
// single-rating rank lookups, batched rank resolution for search hits, and
// windowed rank assignment for leaderboard pages.
package ranking

import (
	"context"
	"fmt"

	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/pkg/metrics"
)

// CountStore is the subset of the store the calculator needs.
type CountStore interface {
	CountHigher(ctx context.Context, rating int) (int, error)
}

// Calculator computes the tie-aware rank of a rating value:
// rank = 1 + count(rating > X). The rating does not have to be present in
// the collection; rank is well-defined for a hypothetical record at any
// rating.
type Calculator struct {
	store CountStore
}

// NewCalculator constructs a Calculator over the given store.
func NewCalculator(store CountStore) *Calculator {
	return &Calculator{store: store}
}

// RankOf returns the 1-based tie-aware rank of rating. It issues exactly one
// aggregate count query; store failures propagate unchanged.
func (c *Calculator) RankOf(ctx context.Context, rating int) (int, error) {
	higher, err := c.store.CountHigher(ctx, rating)
	if err != nil {
		return 0, fmt.Errorf("count higher than %d: %w", rating, err)
	}
	metrics.RecordRankLookup()
	return higher + 1, nil
}

// compile-time checks that both store backends satisfy CountStore.
var (
	_ CountStore = (*repository.MemoryStore)(nil)
	_ CountStore = (*repository.MongoStore)(nil)
)
