// Package search resolves username prefix queries into rank-annotated hits.
package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/ranking"
	"github.com/okian/podium/internal/domain/types"
	"github.com/okian/podium/pkg/metrics"
)

// Default search configuration constants.
const (
	defaultHitLimit = 100
)

// PrefixStore is the subset of the store the searcher needs.
type PrefixStore interface {
	SearchByPrefix(ctx context.Context, prefix string, limit int) ([]repository.UserRecord, error)
}

// Searcher finds users by username prefix and annotates every hit with its
// global leaderboard rank via batched rank resolution.
type Searcher struct {
	store    PrefixStore
	resolver *ranking.Resolver
	hitLimit int
}

// Option applies a configuration option to the Searcher.
type Option func(*Searcher)

// WithHitLimit caps the number of hits returned per query.
func WithHitLimit(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.hitLimit = n
		}
	}
}

// NewSearcher constructs a Searcher over the given store and resolver.
func NewSearcher(store PrefixStore, resolver *ranking.Resolver, opts ...Option) *Searcher {
	s := &Searcher{
		store:    store,
		resolver: resolver,
		hitLimit: defaultHitLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns hits whose username starts with prefix, sorted by global
// rank ascending. The sort is stable, but order among equal ranks is
// otherwise unspecified. An unmatched prefix yields an empty slice, never an
// error. The prefix is expected pre-normalized (trimmed, lowercased) by the
// request boundary.
func (s *Searcher) Search(ctx context.Context, prefix string) ([]types.SearchHit, error) {
	metrics.RecordSearchRequest()

	records, err := s.store.SearchByPrefix(ctx, prefix, s.hitLimit)
	if err != nil {
		return nil, fmt.Errorf("search by prefix %q: %w", prefix, err)
	}
	if len(records) == 0 {
		metrics.ObserveSearchHits(0)
		return []types.SearchHit{}, nil
	}

	batch := make([]ranking.Record, len(records))
	for i, rec := range records {
		batch[i] = ranking.Record{ID: rec.ID, Rating: rec.Rating}
	}
	ranks, err := s.resolver.RanksFor(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("resolve ranks: %w", err)
	}

	hits := make([]types.SearchHit, len(records))
	for i, rec := range records {
		hits[i] = types.SearchHit{
			GlobalRank: ranks[rec.ID],
			Username:   rec.Username,
			Rating:     rec.Rating,
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].GlobalRank < hits[j].GlobalRank })

	metrics.ObserveSearchHits(len(hits))
	return hits, nil
}

// compile-time checks that both store backends satisfy PrefixStore.
var (
	_ PrefixStore = (*repository.MemoryStore)(nil)
	_ PrefixStore = (*repository.MongoStore)(nil)
)
