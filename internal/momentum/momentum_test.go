package momentum

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"tokenradar/internal/config"
	"tokenradar/internal/domain"
)

func newClassifier() *Classifier {
	return NewClassifier(config.Default().Thresholds)
}

func TestBuySellRatio(t *testing.T) {
	assert.Equal(t, 2.0, BuySellRatio(10, 5))
	assert.Equal(t, 0.5, BuySellRatio(5, 10))
	assert.True(t, math.IsInf(BuySellRatio(7, 0), 1), "buys without sells is one-sided demand")
	assert.Equal(t, 1.0, BuySellRatio(0, 0), "a dead pair reads as neutral")
}

func TestClassifyPhase(t *testing.T) {
	c := newClassifier()

	cases := []struct {
		name string
		snap domain.MarketSnapshot
		want domain.Phase
	}{
		{"healthy early", domain.MarketSnapshot{PriceChangeH1: 20, BuysH1: 30, SellsH1: 10}, domain.PhaseEarly},
		{"price ran too far", domain.MarketSnapshot{PriceChangeH1: 51, BuysH1: 30, SellsH1: 10}, domain.PhaseLate},
		{"exactly at ceiling", domain.MarketSnapshot{PriceChangeH1: 50, BuysH1: 30, SellsH1: 10}, domain.PhaseEarly},
		{"sellers dominate", domain.MarketSnapshot{PriceChangeH1: 10, BuysH1: 5, SellsH1: 10}, domain.PhaseLate},
		{"ratio exactly one", domain.MarketSnapshot{PriceChangeH1: 10, BuysH1: 10, SellsH1: 10}, domain.PhaseEarly},
		{"no sells yet", domain.MarketSnapshot{PriceChangeH1: 10, BuysH1: 3, SellsH1: 0}, domain.PhaseEarly},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Classify(&tc.snap))
		})
	}
}

func TestClassifyNilSnapshotIsLate(t *testing.T) {
	assert.Equal(t, domain.PhaseLate, newClassifier().Classify(nil))
}

func TestIsStale(t *testing.T) {
	c := newClassifier()

	flat := &domain.MarketSnapshot{PriceChangeH1: 0.05}
	moving := &domain.MarketSnapshot{PriceChangeH1: 5}

	assert.True(t, c.IsStale(flat, 25), "old and flat")
	assert.False(t, c.IsStale(flat, 23), "flat but young")
	assert.False(t, c.IsStale(moving, 25), "old but still moving")
	assert.False(t, c.IsStale(flat, -1), "unknown age is never stale")

	negFlat := &domain.MarketSnapshot{PriceChangeH1: -0.05}
	assert.True(t, c.IsStale(negFlat, 25), "staleness uses the magnitude of the change")
}
