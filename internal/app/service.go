// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"

	repository "github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/ranking"
	"github.com/okian/podium/internal/domain/search"
	"github.com/okian/podium/internal/domain/types"
	"github.com/okian/podium/internal/seeder"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultSearchLimit = 100
	defaultMinRating   = 100
	defaultMaxRating   = 5000
)

// Service wires the store, the ranking core, and the searcher behind the
// operations the HTTP API consumes.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	pager    *ranking.Pager
	calc     *ranking.Calculator
	resolver *ranking.Resolver
	searcher *search.Searcher

	// Configuration
	searchLimit int
	seedUsers   int
	minRating   int
	maxRating   int
	ownsStore   bool

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the store backend. The caller keeps ownership and is
// responsible for closing it.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
			s.ownsStore = false
		}
	}
}

// WithSearchLimit caps the number of hits a search returns.
func WithSearchLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.searchLimit = limit
		}
	}
}

// WithSeedUsers populates the store with n random users on startup.
func WithSeedUsers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.seedUsers = n
		}
	}
}

// WithRatingRange sets the rating range used when seeding.
func WithRatingRange(minRating, maxRating int) Option {
	return func(s *Service) {
		if minRating > 0 && maxRating >= minRating {
			s.minRating = minRating
			s.maxRating = maxRating
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		searchLimit: defaultSearchLimit,
		minRating:   defaultMinRating,
		maxRating:   defaultMaxRating,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components and seeds the store if requested.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting leaderboard service...")

	if s.store == nil {
		s.store = repository.NewMemoryStore(ctx)
		s.ownsStore = true
		s.logger.Info(ctx, "using in-memory store")
	}

	s.calc = ranking.NewCalculator(s.store)
	s.resolver = ranking.NewResolver(s.calc)
	s.pager = ranking.NewPager(s.store)
	s.searcher = search.NewSearcher(s.store, s.resolver, search.WithHitLimit(s.searchLimit))

	if s.seedUsers > 0 {
		if err := s.seed(ctx); err != nil {
			return fmt.Errorf("seed store: %w", err)
		}
	}

	s.started = true
	s.logger.Info(ctx, "leaderboard service started",
		logger.Int("searchLimit", s.searchLimit),
		logger.Int("seedUsers", s.seedUsers),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping leaderboard service...")

	if s.ownsStore && s.store != nil {
		if closer, ok := s.store.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}

	s.started = false
	s.logger.Info(context.Background(), "leaderboard service stopped")
}

// seed fills the store with generated users. Only useful for the in-memory
// backend; persistent backends are seeded by the seed-users command.
func (s *Service) seed(ctx context.Context) error {
	gen := seeder.NewGenerator(seeder.WithRatingRange(s.minRating, s.maxRating))
	for _, rec := range gen.Generate(s.seedUsers) {
		if err := s.store.Upsert(ctx, rec); err != nil {
			return err
		}
	}
	s.logger.Info(ctx, "seeded store", logger.Int("users", s.seedUsers))
	return nil
}

// Leaderboard returns one rank-annotated page of the leaderboard.
func (s *Service) Leaderboard(ctx context.Context, limit, offset int) ([]types.LeaderboardEntry, error) {
	return s.pager.Page(ctx, limit, offset)
}

// Search returns rank-annotated hits for a username prefix.
func (s *Service) Search(ctx context.Context, prefix string) ([]types.SearchHit, error) {
	return s.searcher.Search(ctx, prefix)
}

// RankOf returns the tie-aware rank of a rating value.
func (s *Service) RankOf(ctx context.Context, rating int) (int, error) {
	return s.calc.RankOf(ctx, rating)
}

// RanksFor returns the tie-aware rank of every record in the batch, issuing
// one count query per distinct rating.
func (s *Service) RanksFor(ctx context.Context, records []ranking.Record) (map[string]int, error) {
	return s.resolver.RanksFor(ctx, records)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"searchLimit": s.searchLimit,
	}

	if s.started {
		if total, err := s.store.Count(context.Background()); err == nil {
			stats["totalUsers"] = total
			metrics.UpdateTotalUsers(total)
		}
	}

	return stats
}
