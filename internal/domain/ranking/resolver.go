package ranking

import (
	"context"

	"github.com/sourcegraph/conc/pool"

	"github.com/okian/podium/pkg/metrics"
)

// Default resolver configuration constants.
const (
	defaultMaxConcurrentLookups = 8
)

// Record is the (id, rating) pair the resolver ranks.
type Record struct {
	ID     string
	Rating int
}

// Resolver computes ranks for a batch of records with one rank query per
// distinct rating, fanning the result back out to every record sharing that
// rating. A search returning many same-rated users costs as many count
// queries as it has distinct ratings, not as many as it has hits.
type Resolver struct {
	calc                 *Calculator
	maxConcurrentLookups int
}

// ResolverOption applies a configuration option to the Resolver.
type ResolverOption func(*Resolver)

// WithMaxConcurrentLookups bounds the rank-query fan-out.
func WithMaxConcurrentLookups(n int) ResolverOption {
	return func(r *Resolver) {
		if n > 0 {
			r.maxConcurrentLookups = n
		}
	}
}

// NewResolver constructs a Resolver over the given calculator.
func NewResolver(calc *Calculator, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		calc:                 calc,
		maxConcurrentLookups: defaultMaxConcurrentLookups,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RanksFor returns a mapping from every input id to its tie-aware rank.
// Records are grouped by exact rating value and the calculator is invoked
// once per distinct rating; lookups for different ratings run concurrently.
// The mapping carries no ordering; callers sort their own result lists.
func (r *Resolver) RanksFor(ctx context.Context, records []Record) (map[string]int, error) {
	if len(records) == 0 {
		return map[string]int{}, nil
	}

	byRating := make(map[int][]string)
	for _, rec := range records {
		byRating[rec.Rating] = append(byRating[rec.Rating], rec.ID)
	}

	// One slot per distinct rating so workers never share memory.
	type group struct {
		rating int
		ids    []string
		rank   int
	}
	groups := make([]group, 0, len(byRating))
	for rating, ids := range byRating {
		groups = append(groups, group{rating: rating, ids: ids})
	}

	p := pool.New().WithContext(ctx).WithMaxGoroutines(r.maxConcurrentLookups)
	for i := range groups {
		g := &groups[i]
		p.Go(func(ctx context.Context) error {
			rank, err := r.calc.RankOf(ctx, g.rating)
			if err != nil {
				return err
			}
			g.rank = rank
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]int, len(records))
	for _, g := range groups {
		for _, id := range g.ids {
			out[id] = g.rank
		}
	}

	metrics.RecordRankBatch(len(records), len(groups))
	return out, nil
}
