// Package espn reads finished NBA box scores from ESPN's public site API.
package espn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fortuna/courtside/internal/ingest"
)

// BaseURL is the NBA root of ESPN's site API.
const BaseURL = "https://site.api.espn.com/apis/site/v2/sports/basketball/nba"

const userAgent = "Mozilla/5.0 (compatible; courtside-import/1.0)"

// Client handles ESPN API requests
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client against baseURL. An empty baseURL uses BaseURL and a
// nil httpClient gets a 15 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = BaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// FetchSummary fetches the game summary, which carries the box score.
func (c *Client) FetchSummary(ctx context.Context, eventID string) (map[string]interface{}, error) {
	url := fmt.Sprintf("%s/summary?event=%s", c.baseURL, eventID)
	return c.fetch(ctx, url)
}

func (c *Client) fetch(ctx context.Context, url string) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ESPN returned %d: %s", resp.StatusCode, snippet(body))
	}
	// ESPN answers some blocked or unknown requests with an HTML page and 200.
	if len(body) > 0 && body[0] == '<' {
		return nil, fmt.Errorf("ESPN returned HTML error page: %s", snippet(body))
	}

	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w (body: %s)", err, snippet(body))
	}
	return result, nil
}

func snippet(body []byte) string {
	if len(body) > 200 {
		return string(body[:200])
	}
	return string(body)
}

// Source imports one ESPN event.
type Source struct {
	client  *Client
	eventID string
}

// NewSource returns an ingest source for eventID.
func NewSource(client *Client, eventID string) *Source {
	return &Source{client: client, eventID: strings.TrimSpace(eventID)}
}

// Name implements ingest.Source.
func (s *Source) Name() string { return "espn:" + s.eventID }

// Fetch implements ingest.Source.
func (s *Source) Fetch(ctx context.Context) (*ingest.BoxScore, error) {
	summary, err := s.client.FetchSummary(ctx, s.eventID)
	if err != nil {
		return nil, err
	}
	box, err := ParseSummary(summary)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", s.eventID, err)
	}
	if box.ExternalID == "" {
		box.ExternalID = "espn:" + s.eventID
	}
	return box, nil
}
