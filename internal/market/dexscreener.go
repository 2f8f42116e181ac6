// Package market fetches per-token market snapshots from DexScreener.
// One snapshot per pipeline pass; every consumer shares it.
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"tokenradar/internal/domain"
	"tokenradar/internal/observability"
	"tokenradar/internal/ratelimit"
)

const governorService = "dexscreener"

// ErrNoPairs means DexScreener knows nothing about the mint yet.
var ErrNoPairs = errors.New("no trading pairs found")

// Client fetches market snapshots, circuit-broken so a DexScreener
// outage fails candidates fast instead of stalling the pipeline.
type Client struct {
	baseURL  string
	http     *http.Client
	governor *ratelimit.Governor
	breaker  *gobreaker.CircuitBreaker
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

// NewClient creates a DexScreener client.
func NewClient(baseURL string, governor *ratelimit.Governor, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: 15 * time.Second},
		governor: governor,
	}
	for _, opt := range opts {
		opt(c)
	}

	st := gobreaker.Settings{Name: governorService}
	st.Timeout = 60 * time.Second
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= 3
	}
	c.breaker = gobreaker.NewCircuitBreaker(st)
	return c
}

// Snapshot fetches the market snapshot for a mint. The pair with the
// deepest liquidity wins when the token trades in several pools.
func (c *Client) Snapshot(ctx context.Context, mint string) (*domain.MarketSnapshot, error) {
	if err := c.governor.Wait(ctx, governorService); err != nil {
		return nil, err
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, mint)
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.MarketSnapshot), nil
}

func (c *Client) fetch(ctx context.Context, mint string) (*domain.MarketSnapshot, error) {
	url := fmt.Sprintf("%s/latest/dex/tokens/%s", c.baseURL, mint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	observability.RecordUpstreamCall(governorService, time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("fetch pairs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dexscreener status %d", resp.StatusCode)
	}

	var payload struct {
		Pairs []dexPair `json:"pairs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode pairs: %w", err)
	}
	if len(payload.Pairs) == 0 {
		return nil, ErrNoPairs
	}

	best := payload.Pairs[0]
	for _, p := range payload.Pairs[1:] {
		if p.Liquidity.USD > best.Liquidity.USD {
			best = p
		}
	}
	return best.toSnapshot(mint), nil
}

type dexPair struct {
	PairAddress string `json:"pairAddress"`
	URL         string `json:"url"`
	BaseToken   struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	PriceUSD    string `json:"priceUsd"`
	PriceChange struct {
		H1 float64 `json:"h1"`
	} `json:"priceChange"`
	Txns struct {
		H1 struct {
			Buys  int `json:"buys"`
			Sells int `json:"sells"`
		} `json:"h1"`
		H24 struct {
			Buys int `json:"buys"`
		} `json:"h24"`
	} `json:"txns"`
	Liquidity struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	Volume struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
	PairCreatedAt int64 `json:"pairCreatedAt"` // ms since epoch, 0 if unknown
	Info          *struct {
		Websites []struct {
			URL string `json:"url"`
		} `json:"websites"`
		Socials []struct {
			URL string `json:"url"`
		} `json:"socials"`
	} `json:"info"`
}

func (p dexPair) toSnapshot(mint string) *domain.MarketSnapshot {
	snap := &domain.MarketSnapshot{
		Mint:          mint,
		PairAddress:   p.PairAddress,
		Name:          p.BaseToken.Name,
		Symbol:        p.BaseToken.Symbol,
		PriceChangeH1: p.PriceChange.H1,
		BuysH1:        p.Txns.H1.Buys,
		SellsH1:       p.Txns.H1.Sells,
		BuysH24:       p.Txns.H24.Buys,
		LiquidityUSD:  p.Liquidity.USD,
		VolumeH24:     p.Volume.H24,
		URL:           p.URL,
	}
	if price, err := strconv.ParseFloat(p.PriceUSD, 64); err == nil {
		snap.PriceUSD = price
	}
	if p.PairCreatedAt > 0 {
		snap.PairCreatedAt = time.UnixMilli(p.PairCreatedAt).UTC()
	}
	if p.Info != nil {
		snap.HasWebsite = len(p.Info.Websites) > 0
		snap.HasSocials = len(p.Info.Socials) > 0
	}
	return snap
}
