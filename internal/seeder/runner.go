package seeder

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/pkg/logger"
)

// HTTP status code constants.
const (
	statusOK = 200
)

// Run generates users, loads them into the store concurrently, and
// optionally verifies the running service's leaderboard and search output.
func Run(ctx context.Context, store repository.Store, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting user seeding",
		logger.Int("users", config.NumUsers),
		logger.Int("workers", config.Workers),
		logger.Int("minRating", config.MinRating),
		logger.Int("maxRating", config.MaxRating),
		logger.Any("verify", config.Verify))

	// Step 1: Generate users
	gen := NewGenerator(WithRatingRange(config.MinRating, config.MaxRating))
	records := gen.Generate(config.NumUsers)
	stats.UsersGenerated = len(records)
	logger.Get().Info(ctx, "generated users", logger.Int("count", len(records)))

	// Step 2: Upsert concurrently
	if err := seedStore(ctx, store, config, records, stats); err != nil {
		return fmt.Errorf("store seeding failed: %w", err)
	}

	// Step 3: Verify against the running service
	if config.Verify {
		if err := checkServiceHealth(ctx, config); err != nil {
			return fmt.Errorf("service health check failed: %w", err)
		}
		if err := verifyService(ctx, config, records, stats); err != nil {
			return fmt.Errorf("service verification failed: %w", err)
		}
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "seeding completed successfully")
	return nil
}

// seedStore upserts all records using a bounded worker pool.
func seedStore(ctx context.Context, store repository.Store, config *Config, records []repository.UserRecord, stats *Stats) error {
	var seeded, failed int64

	p := pool.New().WithContext(ctx).WithMaxGoroutines(config.Workers)
	for _, rec := range records {
		rec := rec
		p.Go(func(ctx context.Context) error {
			if err := store.Upsert(ctx, rec); err != nil {
				atomic.AddInt64(&failed, 1)
				logger.Get().Warn(ctx, "failed to seed user",
					logger.String("username", rec.Username),
					logger.Error(err))
				return nil // keep seeding the rest
			}
			atomic.AddInt64(&seeded, 1)
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return err
	}

	stats.UsersSeeded = int(atomic.LoadInt64(&seeded))
	stats.UsersFailed = int(atomic.LoadInt64(&failed))

	logger.Get().Info(ctx, "store seeding completed",
		logger.Int("seeded", stats.UsersSeeded),
		logger.Int("failed", stats.UsersFailed))
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != statusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// displayFinalStats prints the final seeding statistics.
func displayFinalStats(stats *Stats) {
	var usersPerSecond float64
	if stats.Duration > 0 {
		usersPerSecond = float64(stats.UsersSeeded) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("usersGenerated", stats.UsersGenerated),
		logger.Int("usersSeeded", stats.UsersSeeded),
		logger.Int("usersFailed", stats.UsersFailed),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.Int("searchHits", stats.SearchHits),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("usersPerSecond", usersPerSecond))
}
