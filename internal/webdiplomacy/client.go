package webdiplomacy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://webdiplomacy.net/"

	boardEndpoint = "board.php?gameID=%d"
	mapEndpoint   = "map.php?gameID=%d"
)

// ClientConfig controls fetch retry behavior.
type ClientConfig struct {
	BaseURL string

	// BackoffBase is the delay after the first failed attempt; it doubles on
	// every failure up to BackoffMax.
	BackoffBase time.Duration
	BackoffMax  time.Duration

	// BackoffThreshold is the cumulative delay after which every further
	// failure is logged at error level. Retrying continues regardless.
	BackoffThreshold time.Duration

	// MaxAttempts bounds the number of attempts; 0 retries forever.
	MaxAttempts int
}

// Client fetches and parses WebDiplomacy game pages.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a WebDiplomacy client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}
	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = time.Minute
	}
	if cfg.BackoffThreshold <= 0 {
		cfg.BackoffThreshold = 5 * time.Minute
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		// Keep polling many games from hammering the site
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Fetch retrieves the board page for a game and parses it into a Snapshot.
func (c *Client) Fetch(ctx context.Context, gameID int) (Snapshot, error) {
	boardURL := c.cfg.BaseURL + fmt.Sprintf(boardEndpoint, gameID)

	body, err := c.get(ctx, boardURL)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to fetch game %d: %w", gameID, err)
	}

	snap, err := ParseSnapshot(gameID, body)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to parse game %d: %w", gameID, err)
	}
	snap.URL = boardURL
	snap.MapURL = c.cfg.BaseURL + fmt.Sprintf(mapEndpoint, gameID)

	return snap, nil
}

// get performs a GET request, retrying transport and status failures with
// exponential backoff.
func (c *Client) get(ctx context.Context, url string) (string, error) {
	delay := c.cfg.BackoffBase
	var waited time.Duration

	for attempt := 1; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}

		body, err := c.tryGet(ctx, url)
		if err == nil {
			return body, nil
		}

		if waited > c.cfg.BackoffThreshold {
			slog.Error("Problem while fetching data", "url", url, "attempt", attempt, "error", err)
		} else {
			slog.Debug("Fetch failed, backing off", "url", url, "attempt", attempt, "delay", delay, "error", err)
		}

		if c.cfg.MaxAttempts > 0 && attempt >= c.cfg.MaxAttempts {
			return "", fmt.Errorf("giving up after %d attempts: %w", attempt, err)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
		waited += delay
		if delay *= 2; delay > c.cfg.BackoffMax {
			delay = c.cfg.BackoffMax
		}
	}
}

func (c *Client) tryGet(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	return string(body), nil
}
