package shield

import (
	"context"
	"fmt"
	"time"

	"tokenradar/internal/config"
	"tokenradar/internal/domain"
)

// The suspicious-buyer rule alone extends past the fresh-launch window,
// but not indefinitely: an hour-old pool with few buyers is a bundled
// launch signal, a week-old one is just a quiet market.
const bundledExtendedWindowHours = 6.0

// BundledTier flags coordinated launches: a pool created minutes ago
// with only a handful of distinct buys is usually the deployer's own
// wallets seeding the chart.
type BundledTier struct {
	ageHours  float64
	minBuyers int
	now       func() time.Time
}

// NewBundledTier creates the bundled-launch tier.
func NewBundledTier(cfg config.ThresholdsConfig) *BundledTier {
	return &BundledTier{
		ageHours:  cfg.BundledAgeHours,
		minBuyers: cfg.BundledMinBuyers,
		now:       time.Now,
	}
}

// WithClock overrides the tier's time source. For tests.
func (t *BundledTier) WithClock(now func() time.Time) *BundledTier {
	t.now = now
	return t
}

func (t *BundledTier) Name() string { return TierBundled }

func (t *BundledTier) Evaluate(_ context.Context, _ *domain.Candidate, snap *domain.MarketSnapshot) domain.TierVerdict {
	if snap == nil {
		return domain.Unknown(TierBundled, "no market snapshot")
	}

	age := snap.AgeHours(t.now())
	if age < 0 {
		return domain.Unknown(TierBundled, "pair creation time unknown")
	}

	fresh := age < t.ageHours
	fewBuyers := snap.BuysH1 < t.minBuyers

	switch {
	case fresh && fewBuyers:
		return domain.TierVerdict{
			Tier:  TierBundled,
			Level: domain.LevelDanger,
			Reason: fmt.Sprintf("pair %.0f minutes old with only %d buys, likely bundled launch",
				age*60, snap.BuysH1),
		}
	case fresh:
		return domain.TierVerdict{
			Tier:   TierBundled,
			Level:  domain.LevelWarning,
			Reason: fmt.Sprintf("pair only %.0f minutes old", age*60),
		}
	case fewBuyers && age < bundledExtendedWindowHours:
		return domain.TierVerdict{
			Tier:   TierBundled,
			Level:  domain.LevelWarning,
			Reason: fmt.Sprintf("only %d buys in the last hour at %.1fh age", snap.BuysH1, age),
		}
	}
	return domain.TierVerdict{
		Tier:   TierBundled,
		Level:  domain.LevelOK,
		Reason: fmt.Sprintf("%.1fh old with %d buys in the last hour", age, snap.BuysH1),
	}
}
