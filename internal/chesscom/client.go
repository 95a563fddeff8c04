// Package chesscom is the HTTP client for the Chess.com public API.
//
// Every operation is a single GET round trip; the API needs no auth.
// There is no retry and no rate limiting — a failed call surfaces as an
// error and the caller decides what to skip.
package chesscom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/olareaux/chessdata/internal/normalize"
)

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://api.chess.com/pub"

// Client fetches membership lists, stats, and profiles.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *slog.Logger
}

// NewClient creates a Chess.com API client. An empty baseURL selects
// DefaultBaseURL; timeout bounds every call.
func NewClient(baseURL, userAgent string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		userAgent:  userAgent,
		logger:     logger,
	}
}

// titledResponse is the membership-list wrapper.
type titledResponse struct {
	Players []string `json:"players"`
}

// ListTitledPlayers returns the usernames holding a title, in the
// order the API reports them.
func (c *Client) ListTitledPlayers(ctx context.Context, title string) ([]string, error) {
	var result titledResponse
	if err := c.get(ctx, "/titled/"+url.PathEscape(title), &result); err != nil {
		return nil, err
	}
	return result.Players, nil
}

// FetchStats returns a player's raw stats object. The shape is sparse
// and untrusted; normalization happens elsewhere.
func (c *Client) FetchStats(ctx context.Context, player string) (normalize.Bundle, error) {
	var bundle normalize.Bundle
	if err := c.get(ctx, "/player/"+url.PathEscape(player)+"/stats", &bundle); err != nil {
		return nil, err
	}
	return bundle, nil
}

// FetchProfile returns a player's raw profile object.
func (c *Client) FetchProfile(ctx context.Context, player string) (normalize.Bundle, error) {
	var bundle normalize.Bundle
	if err := c.get(ctx, "/player/"+url.PathEscape(player), &bundle); err != nil {
		return nil, err
	}
	return bundle, nil
}

// get performs a GET request and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("chess.com %s returned %d: %s", path, resp.StatusCode, truncate(body, 200))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response %s: %w", path, err)
	}
	return nil
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
