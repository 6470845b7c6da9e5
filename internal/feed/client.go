package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Source is the read interface the scoring engine depends on.
type Source interface {
	// Relevancies returns relevancy events for one source citizen, already
	// filtered to createdAt >= since.
	Relevancies(ctx context.Context, citizen string, since time.Time) ([]Relevancy, error)
}

// Client fetches relevancy events from the simulation's relevancy feed.
//
// The feed is rate limited, so every request is gated by a shared ticker
// rather than ad hoc sleeps between citizens. Calls are one at a time by
// construction: the batch runner is sequential and each call blocks on the
// next tick.
type Client struct {
	http    *http.Client
	baseURL string
	pace    *time.Ticker
}

var _ Source = (*Client)(nil)

// NewClient creates a feed client. pace is the minimum spacing between
// requests; zero disables pacing (tests).
func NewClient(baseURL string, timeout, pace time.Duration) *Client {
	c := &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
	if pace > 0 {
		c.pace = time.NewTicker(pace)
	}
	return c
}

// Close releases the pacing ticker.
func (c *Client) Close() {
	if c.pace != nil {
		c.pace.Stop()
	}
}

// Relevancies fetches relevancy events for a source citizen and filters
// them to the recency window client-side. The feed does not filter by date
// itself but returns newest-first, so scanning stops at the first record
// older than since.
func (c *Client) Relevancies(ctx context.Context, citizen string, since time.Time) ([]Relevancy, error) {
	if c.pace != nil {
		select {
		case <-c.pace.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	q := url.Values{}
	q.Set("citizen", citizen)
	q.Set("excludeBroadcast", "true")
	reqURL := c.baseURL + "/relevancies?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch relevancies for %s: %w", citizen, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read relevancies for %s: %w", citizen, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("relevancy feed status %d for %s: %s", resp.StatusCode, citizen, body)
	}

	var all []Relevancy
	if err := json.Unmarshal(body, &all); err != nil {
		return nil, fmt.Errorf("decode relevancies for %s: %w", citizen, err)
	}

	var recent []Relevancy
	for _, r := range all {
		if r.CreatedAt.Before(since) {
			break
		}
		if r.Target.IsEmpty() {
			continue
		}
		recent = append(recent, r)
	}
	return recent, nil
}
