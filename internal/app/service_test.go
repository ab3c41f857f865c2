package service_test

import (
	"context"
	"os"
	"testing"

	repository "github.com/okian/podium/internal/adapters/repository"
	service "github.com/okian/podium/internal/app"
	ranking "github.com/okian/podium/internal/domain/ranking"
	"github.com/okian/podium/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		ctx := context.Background()
		svc := service.New()

		Convey("When starting and stopping", func() {
			err := svc.Start(ctx)

			Convey("Then the service starts cleanly", func() {
				So(err, ShouldBeNil)
				stats := svc.GetStats()
				So(stats["started"], ShouldBeTrue)
				svc.Stop()
				stats = svc.GetStats()
				So(stats["started"], ShouldBeFalse)
			})

			Convey("Then a second start is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
				svc.Stop()
			})
		})
	})
}

func TestServiceOperations(t *testing.T) {
	Convey("Given a started service over a populated store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(ctx, repository.WithRandSeed(9))
		defer func() { _ = store.Close() }()

		for _, r := range []repository.UserRecord{
			{ID: "a", Username: "alex", Rating: 100},
			{ID: "b", Username: "blake", Rating: 90},
			{ID: "c", Username: "casey", Rating: 90},
			{ID: "d", Username: "dakota", Rating: 80},
		} {
			So(store.Upsert(ctx, r), ShouldBeNil)
		}

		svc := service.New(service.WithStore(store))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When requesting a leaderboard page", func() {
			entries, err := svc.Leaderboard(ctx, 4, 0)

			Convey("Then ranks are tie-aware", func() {
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 4)
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[1].Rank, ShouldEqual, 2)
				So(entries[2].Rank, ShouldEqual, 2)
				So(entries[3].Rank, ShouldEqual, 4)
			})
		})

		Convey("When searching by prefix", func() {
			hits, err := svc.Search(ctx, "ca")

			Convey("Then matching users are returned with ranks", func() {
				So(err, ShouldBeNil)
				So(hits, ShouldHaveLength, 1)
				So(hits[0].Username, ShouldEqual, "casey")
				So(hits[0].GlobalRank, ShouldEqual, 2)
			})
		})

		Convey("When computing the rank of a rating", func() {
			rank, err := svc.RankOf(ctx, 85)

			Convey("Then the tie-aware rank is returned", func() {
				So(err, ShouldBeNil)
				So(rank, ShouldEqual, 4)
			})
		})

		Convey("When resolving ranks for a batch", func() {
			ranks, err := svc.RanksFor(ctx, []ranking.Record{
				{ID: "b", Rating: 90},
				{ID: "c", Rating: 90},
			})

			Convey("Then tied records share a rank", func() {
				So(err, ShouldBeNil)
				So(ranks["b"], ShouldEqual, 2)
				So(ranks["c"], ShouldEqual, 2)
			})
		})

		Convey("When reading stats", func() {
			stats := svc.GetStats()

			Convey("Then the user count is reported", func() {
				So(stats["totalUsers"], ShouldEqual, 4)
			})
		})
	})
}

func TestServiceSeeding(t *testing.T) {
	Convey("Given a service configured to seed users", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(ctx, repository.WithRandSeed(13))
		defer func() { _ = store.Close() }()

		svc := service.New(
			service.WithStore(store),
			service.WithSeedUsers(200),
			service.WithRatingRange(100, 5000),
		)

		Convey("When the service starts", func() {
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			Convey("Then the store is populated", func() {
				total, err := store.Count(ctx)
				So(err, ShouldBeNil)
				So(total, ShouldEqual, 200)
			})

			Convey("Then the leaderboard honors the tie invariant", func() {
				entries, err := svc.Leaderboard(ctx, 100, 0)
				So(err, ShouldBeNil)
				So(len(entries), ShouldBeGreaterThan, 0)
				for i := 1; i < len(entries); i++ {
					So(entries[i].Rating, ShouldBeLessThanOrEqualTo, entries[i-1].Rating)
					if entries[i].Rating == entries[i-1].Rating {
						So(entries[i].Rank, ShouldEqual, entries[i-1].Rank)
					}
				}
			})
		})
	})
}
