// Package seeder generates random users and loads them into a store,
// optionally verifying the leaderboard and search endpoints afterwards.
package seeder

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/okian/podium/internal/adapters/repository"
)

// Default generation constants.
const (
	defaultMinRating = 100
	defaultMaxRating = 5000

	compoundNameChance = 0.3
	numberedNameChance = 0.5
	numberedNameRange  = 1000
	maxUniqueAttempts  = 100
)

// Username building blocks.
var firstNames = []string{
	"rahul", "brandon", "cody", "lee", "leslie", "wade", "soham", "brandie",
	"jorge", "kristin", "alex", "sam", "taylor", "jordan", "casey", "riley",
	"avery", "quinn", "dakota", "skyler", "morgan", "cameron", "hayden",
	"logan", "blake", "sage", "river", "phoenix", "rowan", "finley",
}

var lastNames = []string{
	"burman", "mathur", "kumar", "singh", "patel", "sharma", "gupta", "verma",
	"reddy", "rao", "mehta", "jain", "agarwal", "malik", "kapoor", "chopra",
	"nair", "iyer", "menon", "krishnan", "raman", "sundaram",
}

// Generator produces random user records with unique lowercase usernames.
type Generator struct {
	rnd       *rand.Rand
	minRating int
	maxRating int
}

// GeneratorOption applies a configuration option to the Generator.
type GeneratorOption func(*Generator)

// WithRatingRange sets the inclusive rating range for generated users.
func WithRatingRange(minRating, maxRating int) GeneratorOption {
	return func(g *Generator) {
		if minRating > 0 && maxRating >= minRating {
			g.minRating = minRating
			g.maxRating = maxRating
		}
	}
}

// WithGeneratorSeed seeds the generator deterministically; used by tests.
func WithGeneratorSeed(seed int64) GeneratorOption {
	return func(g *Generator) {
		g.rnd = rand.New(rand.NewSource(seed)) //nolint:gosec // seed data, not crypto
	}
}

// NewGenerator constructs a Generator with default configuration.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // seed data, not crypto
		minRating: defaultMinRating,
		maxRating: defaultMaxRating,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns n user records with unique usernames and ratings drawn
// uniformly from the configured range.
func (g *Generator) Generate(n int) []repository.UserRecord {
	records := make([]repository.UserRecord, 0, n)
	seen := make(map[string]bool, n)

	for i := 0; i < n; i++ {
		records = append(records, repository.UserRecord{
			ID:       uuid.New().String(),
			Username: g.uniqueUsername(i, seen),
			Rating:   g.minRating + g.rnd.Intn(g.maxRating-g.minRating+1),
		})
	}
	return records
}

// uniqueUsername draws usernames until an unseen one appears, falling back
// to an index-suffixed name after too many collisions.
func (g *Generator) uniqueUsername(index int, seen map[string]bool) string {
	for attempts := 0; attempts < maxUniqueAttempts; attempts++ {
		name := g.username()
		if !seen[name] {
			seen[name] = true
			return name
		}
	}
	name := fmt.Sprintf("%s_%d_%d", firstNames[g.rnd.Intn(len(firstNames))], index, time.Now().UnixNano())
	seen[name] = true
	return name
}

// username builds one username: 30% first_last, 20% firstNNN, 50% plain.
func (g *Generator) username() string {
	first := firstNames[g.rnd.Intn(len(firstNames))]
	switch {
	case g.rnd.Float32() < compoundNameChance:
		return fmt.Sprintf("%s_%s", first, lastNames[g.rnd.Intn(len(lastNames))])
	case g.rnd.Float32() < numberedNameChance:
		return fmt.Sprintf("%s%d", first, g.rnd.Intn(numberedNameRange))
	default:
		return first
	}
}
