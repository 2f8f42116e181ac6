package shield

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tokenradar/internal/config"
	"tokenradar/internal/domain"
)

func bundledAt(now time.Time) *BundledTier {
	return NewBundledTier(config.Default().Thresholds).WithClock(func() time.Time { return now })
}

func TestBundledFreshPairFewBuyers(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := &domain.MarketSnapshot{PairCreatedAt: now.Add(-10 * time.Minute), BuysH1: 5}

	v := bundledAt(now).Evaluate(context.Background(), testCandidate(), snap)
	assert.Equal(t, domain.LevelDanger, v.Level)
}

func TestBundledFreshPairManyBuyers(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := &domain.MarketSnapshot{PairCreatedAt: now.Add(-10 * time.Minute), BuysH1: 80}

	v := bundledAt(now).Evaluate(context.Background(), testCandidate(), snap)
	assert.Equal(t, domain.LevelWarning, v.Level, "freshness alone is a warning")
}

func TestBundledFewBuyersInExtendedWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := &domain.MarketSnapshot{PairCreatedAt: now.Add(-3 * time.Hour), BuysH1: 8}

	v := bundledAt(now).Evaluate(context.Background(), testCandidate(), snap)
	assert.Equal(t, domain.LevelWarning, v.Level)
}

func TestBundledEstablishedPair(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := &domain.MarketSnapshot{PairCreatedAt: now.Add(-48 * time.Hour), BuysH1: 8}

	v := bundledAt(now).Evaluate(context.Background(), testCandidate(), snap)
	assert.Equal(t, domain.LevelOK, v.Level, "quiet but old pairs are not bundled launches")
}

func TestBundledUnknownAge(t *testing.T) {
	v := bundledAt(time.Now()).Evaluate(context.Background(), testCandidate(),
		&domain.MarketSnapshot{BuysH1: 100})
	assert.Equal(t, domain.LevelUnknown, v.Level)
}
