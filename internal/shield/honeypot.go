package shield

import (
	"context"
	"fmt"

	"tokenradar/internal/domain"
)

// HoneypotTier infers sellability from the pair's recent transaction
// flow. A pool with buys and zero sells means holders cannot exit.
type HoneypotTier struct{}

// NewHoneypotTier creates the honeypot tier.
func NewHoneypotTier() *HoneypotTier {
	return &HoneypotTier{}
}

func (t *HoneypotTier) Name() string { return TierHoneypot }

func (t *HoneypotTier) Evaluate(_ context.Context, _ *domain.Candidate, snap *domain.MarketSnapshot) domain.TierVerdict {
	if snap == nil {
		return domain.Unknown(TierHoneypot, "no market snapshot")
	}

	buys, sells := snap.BuysH1, snap.SellsH1
	switch {
	case buys > 0 && sells == 0:
		return domain.TierVerdict{
			Tier:   TierHoneypot,
			Level:  domain.LevelDanger,
			Reason: fmt.Sprintf("%d buys and zero sells in the last hour, holders cannot exit", buys),
		}
	case sells > 0 && buys == 0:
		return domain.TierVerdict{
			Tier:   TierHoneypot,
			Level:  domain.LevelWarning,
			Reason: fmt.Sprintf("%d sells and zero buys in the last hour, one-way dump", sells),
		}
	case buys == 0 && sells == 0:
		return domain.TierVerdict{
			Tier:   TierHoneypot,
			Level:  domain.LevelWarning,
			Reason: "no trading activity in the last hour",
		}
	}
	return domain.TierVerdict{
		Tier:   TierHoneypot,
		Level:  domain.LevelOK,
		Reason: fmt.Sprintf("two-way flow: %d buys, %d sells", buys, sells),
	}
}
