// Package momentum classifies a token's market phase from a single
// DexScreener snapshot. The classifier is deliberately conservative:
// anything ambiguous reads as LATE, so the pipeline skips it.
package momentum

import (
	"math"

	"tokenradar/internal/config"
	"tokenradar/internal/domain"
)

// Classifier decides whether a token is still early enough to act on.
type Classifier struct {
	maxPriceChangeH1 float64
	minPriceChangeH1 float64
	maxAgeHours      float64
}

// NewClassifier builds a Classifier from the configured thresholds.
func NewClassifier(th config.ThresholdsConfig) *Classifier {
	return &Classifier{
		maxPriceChangeH1: th.MaxPriceChangeH1,
		minPriceChangeH1: th.MinPriceChangeH1,
		maxAgeHours:      th.MaxTokenAgeHours,
	}
}

// BuySellRatio returns the 1h buy/sell transaction ratio. With no sells
// it returns +Inf when buys exist (one-sided demand) and exactly 1.0
// when the pair has no activity at all.
func BuySellRatio(buys, sells int) float64 {
	if sells == 0 {
		if buys > 0 {
			return math.Inf(1)
		}
		return 1.0
	}
	return float64(buys) / float64(sells)
}

// Classify maps a snapshot to EARLY or LATE.
// LATE means the 1h price already ran past the ceiling, or sellers
// outnumber buyers. Everything else is EARLY.
func (c *Classifier) Classify(snap *domain.MarketSnapshot) domain.Phase {
	if snap == nil {
		return domain.PhaseLate
	}
	if snap.PriceChangeH1 > c.maxPriceChangeH1 {
		return domain.PhaseLate
	}
	if BuySellRatio(snap.BuysH1, snap.SellsH1) < 1.0 {
		return domain.PhaseLate
	}
	return domain.PhaseEarly
}

// IsStale reports whether the token is both old and flat: past the age
// ceiling with a 1h price change inside the noise band. Tokens with an
// unknown pair age are never stale.
func (c *Classifier) IsStale(snap *domain.MarketSnapshot, ageHours float64) bool {
	if snap == nil || ageHours < 0 {
		return false
	}
	return ageHours > c.maxAgeHours && math.Abs(snap.PriceChangeH1) < c.minPriceChangeH1
}
