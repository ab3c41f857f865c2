package ranking

import (
	"context"
	"fmt"

	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/types"
	"github.com/okian/podium/pkg/metrics"
)

// sentinelRating is lower than any rating a record can carry, so the first
// row of a page always starts a new tie group.
const sentinelRating = -1 << 62

// ScanStore is the subset of the store the pager needs.
type ScanStore interface {
	ListByRating(ctx context.Context, limit, offset int) ([]repository.UserRecord, error)
}

// Pager produces rank-annotated leaderboard pages from a single ordered
// scan, assigning ranks with an in-slice running tie detector instead of one
// count query per row.
type Pager struct {
	store ScanStore
}

// NewPager constructs a Pager over the given store.
func NewPager(store ScanStore) *Pager {
	return &Pager{store: store}
}

// Page returns up to limit entries starting offset records into the
// leaderboard, ordered by rating descending then username ascending. Ranks
// are tie-aware: equal ratings share a rank, and the rank after a tie group
// skips ahead (ratings 100, 90, 90, 80 rank as 1, 2, 2, 4).
//
// Rank assignment is windowed: each row's rank derives from its absolute
// position and the ratings seen so far within this page only. A tie group
// that straddles a page boundary therefore gets a fresh rank anchored at the
// later page's own offset, and the two pages disagree on the group's rank.
// Callers paging through a large tie group observe this discontinuity; it is
// the documented trade-off for issuing exactly one store round-trip per page.
//
// The pager requires limit >= 1; range validation beyond that belongs to the
// request boundary.
func (p *Pager) Page(ctx context.Context, limit, offset int) ([]types.LeaderboardEntry, error) {
	records, err := p.store.ListByRating(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list by rating: %w", err)
	}

	entries := make([]types.LeaderboardEntry, 0, len(records))
	prevRating := sentinelRating
	currentRank := 0
	for i, rec := range records {
		if rec.Rating != prevRating {
			currentRank = offset + i + 1
			prevRating = rec.Rating
		}
		entries = append(entries, types.LeaderboardEntry{
			Rank:     currentRank,
			UserID:   rec.ID,
			Username: rec.Username,
			Rating:   rec.Rating,
		})
	}

	metrics.RecordLeaderboardPage()
	return entries, nil
}

// compile-time checks that both store backends satisfy ScanStore.
var (
	_ ScanStore = (*repository.MemoryStore)(nil)
	_ ScanStore = (*repository.MongoStore)(nil)
)
