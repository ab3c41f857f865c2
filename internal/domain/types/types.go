// Package types contains common types used across the application
package types

// LeaderboardEntry represents one row of a leaderboard page.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Rating   int    `json:"rating"`
}

// SearchHit represents one username search result, carrying the user's
// rank on the full leaderboard.
type SearchHit struct {
	GlobalRank int    `json:"global_rank"`
	Username   string `json:"username"`
	Rating     int    `json:"rating"`
}
