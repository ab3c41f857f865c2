package seeder

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/types"
	"github.com/okian/podium/pkg/logger"
)

// Verification constants.
const (
	verifyPageLimit = 50
	verifyPageCount = 5
	topDisplayCount = 10
)

// verifyService walks leaderboard pages and runs a sample search against
// the running service, checking ranking invariants on both.
func verifyService(ctx context.Context, config *Config, records []repository.UserRecord, stats *Stats) error {
	color.Cyan("Verifying service output...")

	client := newHTTPClient(config.Timeout)

	var first []types.LeaderboardEntry
	for page := 1; page <= verifyPageCount; page++ {
		entries, err := fetchLeaderboard(ctx, client, config.BaseURL, page, verifyPageLimit)
		if err != nil {
			return err
		}
		if page == 1 {
			first = entries
		}
		if len(entries) == 0 {
			break
		}
		stats.LeaderboardEntries += len(entries)

		if err := VerifyLeaderboardPage(entries); err != nil {
			color.Red("Leaderboard page %d verification failed: %v", page, err)
			return err
		}
	}
	color.Green("Leaderboard pages verified (%d entries)", stats.LeaderboardEntries)

	// Search for a prefix of a seeded username so the query matches.
	query := searchQueryFrom(records)
	hits, err := searchUsers(ctx, client, config.BaseURL, query)
	if err != nil {
		return err
	}
	stats.SearchHits = len(hits)

	if err := VerifySearchHits(hits); err != nil {
		color.Red("Search verification failed: %v", err)
		return err
	}
	color.Green("Search %q verified (%d hits)", query, len(hits))

	displayTopEntries(first, config.Verbose)
	return nil
}

// VerifyLeaderboardPage checks rank and ordering invariants within one page.
func VerifyLeaderboardPage(entries []types.LeaderboardEntry) error {
	for i, e := range entries {
		if e.Rank < 1 {
			return fmt.Errorf("entry %d has rank %d below 1", i, e.Rank)
		}
		if i == 0 {
			continue
		}
		prev := entries[i-1]
		if e.Rating > prev.Rating {
			return fmt.Errorf("entry %d rating %d exceeds preceding rating %d", i, e.Rating, prev.Rating)
		}
		if e.Rating == prev.Rating && e.Rank != prev.Rank {
			return fmt.Errorf("entries %d and %d are tied at rating %d but carry ranks %d and %d",
				i-1, i, e.Rating, prev.Rank, e.Rank)
		}
		if e.Rating < prev.Rating && e.Rank <= prev.Rank {
			return fmt.Errorf("entry %d rank %d does not advance past preceding rank %d", i, e.Rank, prev.Rank)
		}
	}
	return nil
}

// VerifySearchHits checks that hits are sorted by global rank ascending.
func VerifySearchHits(hits []types.SearchHit) error {
	for i := 1; i < len(hits); i++ {
		if hits[i].GlobalRank < hits[i-1].GlobalRank {
			return fmt.Errorf("hit %d rank %d precedes hit %d rank %d",
				i, hits[i].GlobalRank, i-1, hits[i-1].GlobalRank)
		}
		if hits[i].Rating == hits[i-1].Rating && hits[i].GlobalRank != hits[i-1].GlobalRank {
			return fmt.Errorf("hits %d and %d are tied at rating %d but carry different ranks",
				i-1, i, hits[i].Rating)
		}
	}
	return nil
}

// searchQueryFrom picks a short prefix from the first seeded username.
func searchQueryFrom(records []repository.UserRecord) string {
	if len(records) == 0 {
		return "a"
	}
	name := records[0].Username
	if utf8.RuneCountInString(name) <= 2 {
		return name
	}
	runes := []rune(name)
	return string(runes[:2])
}

// displayTopEntries shows the top of the fetched leaderboard page.
func displayTopEntries(entries []types.LeaderboardEntry, verbose bool) {
	n := topDisplayCount
	if len(entries) < n {
		n = len(entries)
	}

	color.Yellow("Top %d leaderboard entries:", n)
	for i := 0; i < n; i++ {
		e := entries[i]
		fmt.Printf("   %d. %s - rating %d (rank %d)\n", i+1, e.Username, e.Rating, e.Rank)
	}

	if verbose && len(entries) > 0 {
		logger.Get().Info(context.Background(), "leaderboard sample",
			logger.Int("entries", len(entries)),
			logger.Int("topRating", entries[0].Rating),
			logger.Int("bottomRating", entries[len(entries)-1].Rating))
	}
}
