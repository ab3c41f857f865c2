package search_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/podium/internal/adapters/repository"
	ranking "github.com/okian/podium/internal/domain/ranking"
	search "github.com/okian/podium/internal/domain/search"
	. "github.com/smartystreets/goconvey/convey"
)

func newPopulatedStore(ctx context.Context) *repository.MemoryStore {
	store := repository.NewMemoryStore(ctx, repository.WithRandSeed(5))
	for _, r := range []repository.UserRecord{
		{ID: "1", Username: "albert", Rating: 500},
		{ID: "2", Username: "alex", Rating: 500},
		{ID: "3", Username: "alfred", Rating: 300},
		{ID: "4", Username: "blake", Rating: 900},
		{ID: "5", Username: "casey", Rating: 700},
	} {
		if err := store.Upsert(ctx, r); err != nil {
			panic(err)
		}
	}
	return store
}

func TestSearcher(t *testing.T) {
	Convey("Given a searcher over a populated store", t, func() {
		ctx := context.Background()
		store := newPopulatedStore(ctx)
		defer func() { _ = store.Close() }()

		resolver := ranking.NewResolver(ranking.NewCalculator(store))
		searcher := search.NewSearcher(store, resolver)

		Convey("When searching a prefix with tied hits", func() {
			hits, err := searcher.Search(ctx, "al")

			Convey("Then tied users share a global rank", func() {
				So(err, ShouldBeNil)
				So(hits, ShouldHaveLength, 3)
				// blake (900) and casey (700) outrank the tie at 500.
				So(hits[0].GlobalRank, ShouldEqual, 3)
				So(hits[1].GlobalRank, ShouldEqual, 3)
				So(hits[0].Rating, ShouldEqual, 500)
				So(hits[1].Rating, ShouldEqual, 500)
			})

			Convey("Then hits are sorted by rank ascending", func() {
				So(err, ShouldBeNil)
				for i := 1; i < len(hits); i++ {
					So(hits[i].GlobalRank, ShouldBeGreaterThanOrEqualTo, hits[i-1].GlobalRank)
				}
				So(hits[2].Username, ShouldEqual, "alfred")
				So(hits[2].GlobalRank, ShouldEqual, 5)
			})
		})

		Convey("When no username matches the prefix", func() {
			hits, err := searcher.Search(ctx, "zz")

			Convey("Then the result is empty, not an error", func() {
				So(err, ShouldBeNil)
				So(hits, ShouldBeEmpty)
			})
		})

		Convey("When a hit limit is configured", func() {
			capped := search.NewSearcher(store, resolver, search.WithHitLimit(2))
			hits, err := capped.Search(ctx, "al")

			Convey("Then the number of hits is capped", func() {
				So(err, ShouldBeNil)
				So(hits, ShouldHaveLength, 2)
			})
		})
	})

	Convey("Given a searcher over a failing store", t, func() {
		ctx := context.Background()
		store := &failingStore{}
		resolver := ranking.NewResolver(ranking.NewCalculator(store))
		searcher := search.NewSearcher(store, resolver)

		Convey("When searching", func() {
			_, err := searcher.Search(ctx, "al")

			Convey("Then the store failure propagates unchanged", func() {
				So(errors.Is(err, repository.ErrUnavailable), ShouldBeTrue)
			})
		})
	})
}

type failingStore struct{}

func (f *failingStore) SearchByPrefix(context.Context, string, int) ([]repository.UserRecord, error) {
	return nil, repository.ErrUnavailable
}

func (f *failingStore) CountHigher(context.Context, int) (int, error) {
	return 0, repository.ErrUnavailable
}
