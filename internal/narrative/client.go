package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"tokenradar/internal/domain"
	"tokenradar/internal/observability"
	"tokenradar/internal/ratelimit"
)

const governorService = "polymarket"

// Client fetches ranked events from the Polymarket Gamma API.
type Client struct {
	baseURL   string
	maxEvents int
	http      *http.Client
	governor  *ratelimit.Governor
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

// WithMaxEvents sets how many top-volume events one fetch requests.
func WithMaxEvents(n int) ClientOption {
	return func(c *Client) {
		c.maxEvents = n
	}
}

// NewClient creates a Gamma API client.
func NewClient(baseURL string, governor *ratelimit.Governor, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   baseURL,
		maxEvents: 20,
		http:      &http.Client{Timeout: 15 * time.Second},
		governor:  governor,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// flexFloat accepts both JSON numbers and numeric strings; the Gamma
// API is inconsistent about which it returns for volume fields.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*f = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse numeric field %q: %w", string(data), err)
	}
	*f = flexFloat(v)
	return nil
}

type gammaEvent struct {
	Title     string    `json:"title"`
	Volume    flexFloat `json:"volume"`
	Liquidity flexFloat `json:"liquidity"`
}

// TopEvents fetches the highest-volume active events, descending.
func (c *Client) TopEvents(ctx context.Context) ([]domain.NarrativeEvent, error) {
	if err := c.governor.Wait(ctx, governorService); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(c.maxEvents))
	q.Set("active", "true")
	q.Set("closed", "false")
	q.Set("order", "volume")
	q.Set("ascending", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/events?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	observability.RecordUpstreamCall(governorService, time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gamma api status %d", resp.StatusCode)
	}

	var raw []gammaEvent
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}

	events := make([]domain.NarrativeEvent, 0, len(raw))
	for _, e := range raw {
		events = append(events, domain.NarrativeEvent{
			Title:     e.Title,
			Volume:    float64(e.Volume),
			Liquidity: float64(e.Liquidity),
		})
	}
	return events, nil
}
