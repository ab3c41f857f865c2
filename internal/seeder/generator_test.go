package seeder_test

import (
	"strings"
	"testing"

	"github.com/okian/podium/internal/domain/types"
	seeder "github.com/okian/podium/internal/seeder"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerator(t *testing.T) {
	Convey("Given a deterministic generator", t, func() {
		gen := seeder.NewGenerator(
			seeder.WithGeneratorSeed(42),
			seeder.WithRatingRange(100, 5000),
		)

		Convey("When generating a batch of users", func() {
			records := gen.Generate(1000)

			Convey("Then every record is populated", func() {
				So(records, ShouldHaveLength, 1000)
				for _, r := range records {
					So(r.ID, ShouldNotBeEmpty)
					So(r.Username, ShouldNotBeEmpty)
				}
			})

			Convey("Then usernames are unique and lowercase", func() {
				seen := make(map[string]bool, len(records))
				for _, r := range records {
					So(seen[r.Username], ShouldBeFalse)
					seen[r.Username] = true
					So(r.Username, ShouldEqual, strings.ToLower(r.Username))
				}
			})

			Convey("Then ratings stay within the configured range", func() {
				for _, r := range records {
					So(r.Rating, ShouldBeBetweenOrEqual, 100, 5000)
				}
			})
		})

		Convey("When generating with a narrow rating range", func() {
			narrow := seeder.NewGenerator(
				seeder.WithGeneratorSeed(7),
				seeder.WithRatingRange(1000, 1000),
			)
			records := narrow.Generate(50)

			Convey("Then every rating equals the single allowed value", func() {
				for _, r := range records {
					So(r.Rating, ShouldEqual, 1000)
				}
			})
		})
	})
}

func TestVerification(t *testing.T) {
	Convey("Given leaderboard entries", t, func() {
		Convey("When the page honors the ranking invariants", func() {
			entries := []types.LeaderboardEntry{
				{Rank: 1, Username: "alex", Rating: 100},
				{Rank: 2, Username: "blake", Rating: 90},
				{Rank: 2, Username: "casey", Rating: 90},
				{Rank: 4, Username: "dakota", Rating: 80},
			}

			Convey("Then verification passes", func() {
				So(seeder.VerifyLeaderboardPage(entries), ShouldBeNil)
			})
		})

		Convey("When tied entries carry different ranks", func() {
			entries := []types.LeaderboardEntry{
				{Rank: 1, Username: "alex", Rating: 100},
				{Rank: 2, Username: "blake", Rating: 90},
				{Rank: 3, Username: "casey", Rating: 90},
			}

			Convey("Then verification fails", func() {
				So(seeder.VerifyLeaderboardPage(entries), ShouldNotBeNil)
			})
		})

		Convey("When ratings increase down the page", func() {
			entries := []types.LeaderboardEntry{
				{Rank: 1, Username: "alex", Rating: 100},
				{Rank: 2, Username: "blake", Rating: 200},
			}

			Convey("Then verification fails", func() {
				So(seeder.VerifyLeaderboardPage(entries), ShouldNotBeNil)
			})
		})
	})

	Convey("Given search hits", t, func() {
		Convey("When hits are sorted by rank with consistent ties", func() {
			hits := []types.SearchHit{
				{GlobalRank: 3, Username: "albert", Rating: 500},
				{GlobalRank: 3, Username: "alex", Rating: 500},
				{GlobalRank: 5, Username: "alfred", Rating: 300},
			}

			Convey("Then verification passes", func() {
				So(seeder.VerifySearchHits(hits), ShouldBeNil)
			})
		})

		Convey("When hits are out of rank order", func() {
			hits := []types.SearchHit{
				{GlobalRank: 5, Username: "alfred", Rating: 300},
				{GlobalRank: 3, Username: "alex", Rating: 500},
			}

			Convey("Then verification fails", func() {
				So(seeder.VerifySearchHits(hits), ShouldNotBeNil)
			})
		})
	})
}
