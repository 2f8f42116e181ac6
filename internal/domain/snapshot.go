package domain

import "time"

// MarketSnapshot is the shared market context for one candidate, fetched
// once per pipeline pass and reused by every tier that needs it.
type MarketSnapshot struct {
	Mint          string
	PairAddress   string
	Name          string
	Symbol        string
	PriceUSD      float64
	PriceChangeH1 float64 // percent, e.g. 45.5 for +45.5%
	BuysH1        int
	SellsH1       int
	BuysH24       int
	LiquidityUSD  float64
	VolumeH24     float64
	PairCreatedAt time.Time // zero if the provider omitted it
	URL           string    // pair page, for notifications
	HasWebsite    bool
	HasSocials    bool
}

// AgeHours returns the pair age relative to now, or -1 when creation
// time is unknown.
func (s *MarketSnapshot) AgeHours(now time.Time) float64 {
	if s.PairCreatedAt.IsZero() {
		return -1
	}
	return now.Sub(s.PairCreatedAt).Hours()
}
