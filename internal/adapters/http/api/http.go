// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/okian/podium/internal/domain/types"
)

// Default pagination constants.
const (
	defaultPageLimit = 50
	defaultMaxLimit  = 100
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Leaderboard returns one rank-annotated page.
	Leaderboard(ctx context.Context, limit, offset int) ([]Entry, error)

	// Search returns rank-annotated hits for a username prefix.
	Search(ctx context.Context, prefix string) ([]Hit, error)

	// RankOf returns the tie-aware rank of a rating value.
	RankOf(ctx context.Context, rating int) (int, error)
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.LeaderboardEntry

// Hit mirrors the read shape returned by search queries.
type Hit = types.SearchHit

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	leaderboardHandler *LeaderboardHandler
	searchHandler      *SearchHandler
	rankHandler        *RankHandler
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithPageLimits sets the default and maximum leaderboard page sizes.
func WithPageLimits(defaultLimit, maxLimit int) Option {
	return func(s *Server) {
		if defaultLimit > 0 && maxLimit >= defaultLimit {
			s.leaderboardHandler.defaultLimit = defaultLimit
			s.leaderboardHandler.maxLimit = maxLimit
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		leaderboardHandler: NewLeaderboardHandler(deps, defaultPageLimit, defaultMaxLimit),
		searchHandler:      NewSearchHandler(deps),
		rankHandler:        NewRankHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to the router.
func (s *Server) Register(ctx context.Context, router *mux.Router) {
	router.Use(CORSMiddleware)

	router.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")).Methods(http.MethodGet)
	router.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats")).Methods(http.MethodGet)
	router.HandleFunc("/api/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard")).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/api/search", MetricsMiddleware(s.searchHandler.HandleSearch, "search")).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/api/rank", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank")).Methods(http.MethodGet, http.MethodOptions)
}

// leaderboardResponse is the envelope for GET /api/leaderboard.
type leaderboardResponse struct {
	Data  []Entry `json:"data"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
}

// searchResponse is the envelope for GET /api/search.
type searchResponse struct {
	Data []Hit `json:"data"`
}

// rankResponse is the envelope for GET /api/rank.
type rankResponse struct {
	Rating int `json:"rating"`
	Rank   int `json:"rank"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
