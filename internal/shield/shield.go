// Package shield runs the layered verification tiers that stand between
// an admitted candidate and an alert. Each tier consults one independent
// signal source and returns a severity verdict; the aggregate safety
// score starts at 100 and loses a fixed penalty per danger or warning.
//
// Tiers never return errors. A tier whose data source is unavailable
// degrades to an unknown verdict and the pipeline continues; only an
// explicit danger verdict blocks a candidate.
package shield

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"tokenradar/internal/domain"
	"tokenradar/internal/observability"
)

// Tier is one verification layer. Evaluate must not block longer than
// the context allows and must map every failure mode to a verdict.
type Tier interface {
	Name() string
	Evaluate(ctx context.Context, cand *domain.Candidate, snap *domain.MarketSnapshot) domain.TierVerdict
}

// Tier names, stable across runs. Metrics and penalties key on these.
const (
	TierRugcheck = "rugcheck"
	TierHolders  = "holders"
	TierHoneypot = "honeypot"
	TierBundled  = "bundled"
	TierCabal    = "cabal"
	TierGoPlus   = "goplus"
	TierClone    = "clone"
	TierSocial   = "social"
	TierNews     = "news"
)

type penalty struct {
	danger  float64
	warning float64
}

// penalties maps tier name to the score deduction per severity.
// Social and news presence never endanger a token on their own.
var penalties = map[string]penalty{
	TierRugcheck: {danger: 35},
	TierHolders:  {danger: 30, warning: 10},
	TierHoneypot: {danger: 40, warning: 15},
	TierBundled:  {danger: 25, warning: 10},
	TierCabal:    {danger: 30, warning: 10},
	TierGoPlus:   {danger: 35, warning: 10},
	TierClone:    {danger: 25, warning: 10},
	TierSocial:   {warning: 5},
	TierNews:     {warning: 5},
}

// Shield executes tiers in registration order and aggregates verdicts.
type Shield struct {
	tiers []Tier
	log   zerolog.Logger
}

// New creates a Shield running the given tiers in order.
func New(log zerolog.Logger, tiers ...Tier) *Shield {
	return &Shield{
		tiers: tiers,
		log:   log.With().Str("component", "shield").Logger(),
	}
}

// Verify runs every tier against the candidate and returns the
// aggregated result. The score is clamped to [0, 100]; Pass is false
// iff at least one tier returned a danger verdict.
func (s *Shield) Verify(ctx context.Context, cand *domain.Candidate, snap *domain.MarketSnapshot) domain.SafetyResult {
	res := domain.SafetyResult{Score: 100, Pass: true}

	for _, tier := range s.tiers {
		start := time.Now()
		v := tier.Evaluate(ctx, cand, snap)
		observability.RecordTierVerdict(v.Tier, v.Level.String(), time.Since(start).Seconds())

		res.Verdicts = append(res.Verdicts, v)
		if v.Level > res.OverallLevel {
			res.OverallLevel = v.Level
		}

		p := penalties[v.Tier]
		switch v.Level {
		case domain.LevelDanger:
			res.Score -= p.danger
			res.DangerFlags = append(res.DangerFlags, fmt.Sprintf("%s: %s", v.Tier, v.Reason))
			res.Pass = false
		case domain.LevelWarning:
			res.Score -= p.warning
			res.WarningFlags = append(res.WarningFlags, fmt.Sprintf("%s: %s", v.Tier, v.Reason))
		}

		s.log.Debug().
			Str("mint", cand.Mint).
			Str("tier", v.Tier).
			Str("level", v.Level.String()).
			Str("reason", v.Reason).
			Msg("tier verdict")
	}

	if res.Score < 0 {
		res.Score = 0
	}
	if res.Score > 100 {
		res.Score = 100
	}
	return res
}
