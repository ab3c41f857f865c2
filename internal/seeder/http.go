package seeder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/podium/internal/domain/types"
)

// HTTPClient wraps http.Client with a request timeout
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Get performs a GET request honoring ctx
func (c *HTTPClient) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// getJSON performs a GET request and decodes the JSON response body into v.
func (c *HTTPClient) getJSON(ctx context.Context, rawURL string, v interface{}) error {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, v)
}

// leaderboardResponse mirrors the /api/leaderboard envelope.
type leaderboardResponse struct {
	Data  []types.LeaderboardEntry `json:"data"`
	Page  int                      `json:"page"`
	Limit int                      `json:"limit"`
}

// searchResponse mirrors the /api/search envelope.
type searchResponse struct {
	Data []types.SearchHit `json:"data"`
}

// fetchLeaderboard retrieves one leaderboard page from the running service.
func fetchLeaderboard(ctx context.Context, client *HTTPClient, baseURL string, page, limit int) ([]types.LeaderboardEntry, error) {
	rawURL := baseURL + "/api/leaderboard?page=" + strconv.Itoa(page) + "&limit=" + strconv.Itoa(limit)

	var out leaderboardResponse
	if err := client.getJSON(ctx, rawURL, &out); err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}
	return out.Data, nil
}

// searchUsers runs a prefix query against the running service.
func searchUsers(ctx context.Context, client *HTTPClient, baseURL, query string) ([]types.SearchHit, error) {
	rawURL := baseURL + "/api/search?q=" + url.QueryEscape(query)

	var out searchResponse
	if err := client.getJSON(ctx, rawURL, &out); err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return out.Data, nil
}
