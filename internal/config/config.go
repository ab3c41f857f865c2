// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Store backend names accepted by the Store field.
const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log rendering: text, json, or console.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Store selects the user store backend: memory or mongo.
	Store string `koanf:"store"`

	// MongoURI is the connection string for the mongo store.
	MongoURI string `koanf:"mongo_uri"`

	// MongoDatabase names the database holding the users collection.
	MongoDatabase string `koanf:"mongo_database"`

	// MongoTimeoutMS bounds mongo connection establishment.
	MongoTimeoutMS int `koanf:"mongo_timeout_ms"`

	// DefaultPageLimit is used when GET /api/leaderboard omits limit.
	DefaultPageLimit int `koanf:"default_page_limit"`

	// MaxPageLimit caps GET /api/leaderboard?limit.
	MaxPageLimit int `koanf:"max_page_limit"`

	// SearchLimit caps the number of users a prefix search may match.
	SearchLimit int `koanf:"search_limit"`

	// SeedUsers, when > 0 and the store is memory, fills the store with
	// generated users at startup. Useful for local development.
	SeedUsers int `koanf:"seed_users"`

	// MinRating and MaxRating bound generated ratings.
	MinRating int `koanf:"min_rating"`
	MaxRating int `koanf:"max_rating"`
}

// New creates a Config populated with defaults.
func New() *Config {
	c := &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		Store:            StoreMemory,
		MongoURI:         "mongodb://localhost:27017",
		MongoDatabase:    "podium",
		MongoTimeoutMS:   5000,
		DefaultPageLimit: 50,
		MaxPageLimit:     100,
		SearchLimit:      100,
		SeedUsers:        0,
		MinRating:        100,
		MaxRating:        5000,
	}
	return c
}
