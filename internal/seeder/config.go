package seeder

import "time"

// Config holds configuration for a seeding run
type Config struct {
	BaseURL   string        // Base URL of the service, used for verification
	NumUsers  int           // Number of users to generate
	Workers   int           // Number of concurrent upsert workers
	Timeout   time.Duration // HTTP request timeout
	MinRating int           // Lower rating bound (inclusive)
	MaxRating int           // Upper rating bound (inclusive)
	Verify    bool          // Verify leaderboard and search after seeding
	LogFile   string        // Log file for seeding output
	Verbose   bool          // Enable verbose logging
}

// Stats holds seeding statistics
type Stats struct {
	UsersGenerated     int
	UsersSeeded        int
	UsersFailed        int
	LeaderboardEntries int
	SearchHits         int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
