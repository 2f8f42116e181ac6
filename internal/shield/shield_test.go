package shield

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"tokenradar/internal/domain"
	"tokenradar/internal/ratelimit"
)

// fixedTier returns a canned verdict, for aggregation tests.
type fixedTier struct {
	name  string
	level domain.Level
}

func (t fixedTier) Name() string { return t.name }

func (t fixedTier) Evaluate(context.Context, *domain.Candidate, *domain.MarketSnapshot) domain.TierVerdict {
	return domain.TierVerdict{Tier: t.name, Level: t.level, Reason: "fixed"}
}

func testGovernor() *ratelimit.Governor {
	return ratelimit.NewGovernor(nil, 60_000)
}

func testCandidate() *domain.Candidate {
	return &domain.Candidate{Mint: "mint123", Name: "Fed Cut", Symbol: "FEDCUT", MatchedNarrative: "FED"}
}

func TestVerifySingleDangerBlocks(t *testing.T) {
	tiers := []Tier{
		fixedTier{TierRugcheck, domain.LevelOK},
		fixedTier{TierHolders, domain.LevelOK},
		fixedTier{TierHoneypot, domain.LevelDanger},
		fixedTier{TierBundled, domain.LevelOK},
		fixedTier{TierCabal, domain.LevelOK},
		fixedTier{TierGoPlus, domain.LevelOK},
		fixedTier{TierClone, domain.LevelOK},
		fixedTier{TierSocial, domain.LevelOK},
		fixedTier{TierNews, domain.LevelOK},
	}
	res := New(zerolog.Nop(), tiers...).Verify(context.Background(), testCandidate(), nil)

	assert.False(t, res.Pass, "one danger verdict blocks regardless of the other eight")
	assert.Equal(t, domain.LevelDanger, res.OverallLevel)
	assert.Equal(t, 60.0, res.Score, "honeypot danger costs 40")
	assert.Len(t, res.DangerFlags, 1)
	assert.Len(t, res.Verdicts, 9)
}

func TestVerifyScoreClampsAtZero(t *testing.T) {
	tiers := []Tier{
		fixedTier{TierHoneypot, domain.LevelDanger}, // 40
		fixedTier{TierGoPlus, domain.LevelDanger},   // 35
		fixedTier{TierCabal, domain.LevelDanger},    // 30
		fixedTier{TierHolders, domain.LevelDanger},  // 30
	}
	res := New(zerolog.Nop(), tiers...).Verify(context.Background(), testCandidate(), nil)

	assert.Equal(t, 0.0, res.Score, "penalties beyond 100 clamp, never go negative")
	assert.False(t, res.Pass)
}

func TestVerifyWarningsReduceButPass(t *testing.T) {
	tiers := []Tier{
		fixedTier{TierBundled, domain.LevelWarning}, // 10
		fixedTier{TierSocial, domain.LevelWarning},  // 5
		fixedTier{TierNews, domain.LevelWarning},    // 5
	}
	res := New(zerolog.Nop(), tiers...).Verify(context.Background(), testCandidate(), nil)

	assert.True(t, res.Pass)
	assert.Equal(t, 80.0, res.Score)
	assert.Equal(t, domain.LevelWarning, res.OverallLevel)
	assert.Len(t, res.WarningFlags, 3)
	assert.Empty(t, res.DangerFlags)
}

func TestVerifyUnknownCostsNothing(t *testing.T) {
	tiers := []Tier{
		fixedTier{TierRugcheck, domain.LevelUnknown},
		fixedTier{TierCabal, domain.LevelUnknown},
	}
	res := New(zerolog.Nop(), tiers...).Verify(context.Background(), testCandidate(), nil)

	assert.True(t, res.Pass, "degraded tiers never block")
	assert.Equal(t, 100.0, res.Score)
	assert.Equal(t, domain.LevelUnknown, res.OverallLevel)
}
