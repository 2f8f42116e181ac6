// Package scoring folds the pipeline's four verdicts into one composite
// score and makes the final alert decision.
package scoring

import (
	"math"

	"tokenradar/internal/config"
	"tokenradar/internal/domain"
	"tokenradar/internal/momentum"
)

// Timing collapses to two fixed values: being early is most of the edge.
const (
	timingEarly = 80.0
	timingLate  = 20.0
)

// Scorer computes weighted composite scores. Weights are validated to
// sum to 1.0 at config load, so composites stay within [0, 100].
type Scorer struct {
	cfg config.ScoringConfig

	// velocityCeiling is the 1h price change treated as "already ran".
	velocityCeiling float64
}

// New builds a Scorer. velocityCeiling is usually the same ceiling the
// momentum classifier uses for the LATE cutoff.
func New(cfg config.ScoringConfig, velocityCeiling float64) *Scorer {
	return &Scorer{cfg: cfg, velocityCeiling: velocityCeiling}
}

// Score combines the four dimension scores and applies both floors:
// the composite must exceed MinComposite and every dimension must
// exceed MinIndividual, all strictly.
func (s *Scorer) Score(safety float64, phase domain.Phase, snap *domain.MarketSnapshot, relevance float64) domain.CompositeScore {
	sc := domain.CompositeScore{
		Safety:    clamp(safety),
		Timing:    timingScore(phase),
		Momentum:  s.momentumScore(snap),
		Relevance: clamp(relevance),
	}
	sc.Composite = s.cfg.WeightSafety*sc.Safety +
		s.cfg.WeightTiming*sc.Timing +
		s.cfg.WeightMomentum*sc.Momentum +
		s.cfg.WeightRelevance*sc.Relevance

	sc.Alert = sc.Composite > s.cfg.MinComposite &&
		sc.Safety > s.cfg.MinIndividual &&
		sc.Timing > s.cfg.MinIndividual &&
		sc.Momentum > s.cfg.MinIndividual &&
		sc.Relevance > s.cfg.MinIndividual
	return sc
}

func timingScore(phase domain.Phase) float64 {
	if phase == domain.PhaseEarly {
		return timingEarly
	}
	return timingLate
}

// momentumScore averages two signals: how far the 1h price has already
// moved (less is better) and the 1h buy/sell balance (more buying is
// better).
func (s *Scorer) momentumScore(snap *domain.MarketSnapshot) float64 {
	if snap == nil {
		return 50
	}
	return (s.velocityScore(snap.PriceChangeH1) + ratioScore(snap)) / 2
}

func (s *Scorer) velocityScore(changeH1 float64) float64 {
	switch {
	case changeH1 < 0:
		return 50
	case changeH1 < s.velocityCeiling:
		return 20 + (changeH1/s.velocityCeiling)*60
	default:
		return 20
	}
}

// A pair with no activity at all reads as a balanced ratio of 1.0,
// so it lands on the same 80 as even two-way flow.
func ratioScore(snap *domain.MarketSnapshot) float64 {
	r := momentum.BuySellRatio(snap.BuysH1, snap.SellsH1)
	if r < 1 {
		return 20 + r*80
	}
	return math.Min(80+(r-1)*20, 100)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
