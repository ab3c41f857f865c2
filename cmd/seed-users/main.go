package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/seeder"
)

// Default configuration constants.
const (
	defaultNumUsers    = 10000
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultMinRating   = 100
	defaultMaxRating   = 5000
	defaultTimeout     = 30 * time.Second
	defaultSeedTimeout = 10 * time.Minute
	defaultMongoWait   = 10 * time.Second
)

func main() {
	var (
		mongoURI  = flag.String("mongo-uri", "mongodb://localhost:27017", "MongoDB connection URI")
		mongoDB   = flag.String("mongo-db", "podium", "MongoDB database name")
		numUsers  = flag.Int("users", defaultNumUsers, "Number of users to generate")
		workers   = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent upsert workers")
		minRating = flag.Int("min-rating", defaultMinRating, "Lower rating bound, inclusive")
		maxRating = flag.Int("max-rating", defaultMaxRating, "Upper rating bound, inclusive")
		verify    = flag.Bool("verify", false, "Verify the running service's leaderboard and search output")
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service, used with -verify")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile   = flag.String("log", "", "Log file for seeding output (default: seed_log_TIMESTAMP.log)")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seeder.ShowHelp()
		return
	}

	// Setup logging
	if err := seeder.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultSeedTimeout)
	defer cancel()

	// Connect to the store being seeded
	store, err := repository.NewMongoStore(ctx, *mongoURI, *mongoDB, defaultMongoWait)
	if err != nil {
		os.Stderr.WriteString("Failed to connect to store: " + err.Error() + "\n")
		return
	}
	defer func() { _ = store.Close() }()

	// Create seeding configuration
	config := &seeder.Config{
		BaseURL:   *baseURL,
		NumUsers:  *numUsers,
		Workers:   *workers,
		Timeout:   *timeout,
		MinRating: *minRating,
		MaxRating: *maxRating,
		Verify:    *verify,
		LogFile:   *logFile,
		Verbose:   *verbose,
	}

	// Run the seeding
	if err := seeder.Run(ctx, store, config); err != nil {
		os.Stderr.WriteString("Seeding failed: " + err.Error() + "\n")
		return
	}
}
