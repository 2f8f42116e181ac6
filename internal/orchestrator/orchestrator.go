// Package orchestrator runs admitted candidates through the full
// verification pipeline: market snapshot, quota gate, momentum
// classification, shield tiers, relevance assessment, composite
// scoring, and finally the alert itself.
//
// Stage ordering is cost-driven. Cheap local checks run first so the
// expensive model call only happens for candidates that already
// cleared everything else.
package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tokenradar/internal/brain"
	"tokenradar/internal/config"
	"tokenradar/internal/domain"
	"tokenradar/internal/journal"
	"tokenradar/internal/market"
	"tokenradar/internal/momentum"
	"tokenradar/internal/notify"
	"tokenradar/internal/observability"
	"tokenradar/internal/scoring"
	"tokenradar/internal/state"
)

// Terminal pipeline outcomes, journaled per candidate.
const (
	OutcomeAlerted    = "alerted"
	OutcomeNoPairs    = "no_pairs"
	OutcomeDuplicate  = "duplicate"
	OutcomeQuota      = "quota"
	OutcomeLate       = "late"
	OutcomeStale      = "stale"
	OutcomeDanger     = "danger"
	OutcomeBelowFloor = "below_floor"
	OutcomeError      = "error"
)

// When the relevance judge is unreachable the candidate is not thrown
// away; it proceeds with a neutral score and reduced headroom.
const neutralRelevance = 50

// MarketSource fetches the shared per-candidate market snapshot.
type MarketSource interface {
	Snapshot(ctx context.Context, mint string) (*domain.MarketSnapshot, error)
}

// Verifier runs the shield tiers.
type Verifier interface {
	Verify(ctx context.Context, cand *domain.Candidate, snap *domain.MarketSnapshot) domain.SafetyResult
}

// Options wires the pipeline's collaborators.
type Options struct {
	Market     MarketSource
	Shield     Verifier
	Momentum   *momentum.Classifier
	Scorer     *scoring.Scorer
	Assessor   brain.Assessor
	Notifier   notify.Notifier
	State      *state.Store
	Alerts     journal.AlertStore
	Candidates journal.CandidateLog
	Thresholds config.ThresholdsConfig
	Workers    int
	DryRun     bool // alerts are delivered (or logged) but never spend quota
	Logger     zerolog.Logger
}

// Orchestrator consumes admitted candidates and turns the surviving
// few into alerts.
type Orchestrator struct {
	opts Options
	log  zerolog.Logger
	now  func() time.Time
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Orchestrator{
		opts: opts,
		log:  opts.Logger.With().Str("component", "orchestrator").Logger(),
		now:  time.Now,
	}
}

// WithClock overrides the orchestrator's time source. For tests.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// Run consumes candidates until the channel closes or the context is
// cancelled. Each candidate gets exactly one pipeline pass.
func (o *Orchestrator) Run(ctx context.Context, candidates <-chan domain.Candidate) {
	var wg sync.WaitGroup
	for i := 0; i < o.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case cand, ok := <-candidates:
					if !ok {
						return
					}
					o.Process(ctx, &cand)
				}
			}
		}()
	}
	wg.Wait()
}

// Process runs one candidate through the pipeline and returns its
// terminal outcome.
func (o *Orchestrator) Process(ctx context.Context, cand *domain.Candidate) string {
	start := o.now()
	outcome, composite := o.process(ctx, cand)
	observability.RecordOutcome(outcome, time.Since(start).Seconds())

	entry := &journal.CandidateEntry{
		Mint:       cand.Mint,
		Name:       cand.Name,
		Symbol:     cand.Symbol,
		Narrative:  cand.MatchedNarrative,
		Outcome:    outcome,
		Composite:  composite,
		ObservedAt: o.now(),
	}
	if err := o.opts.Candidates.Append(ctx, entry); err != nil {
		o.log.Warn().Str("mint", cand.Mint).Err(err).Msg("journal candidate outcome")
	}
	return outcome
}

func (o *Orchestrator) process(ctx context.Context, cand *domain.Candidate) (string, float64) {
	log := o.log.With().Str("mint", cand.Mint).Str("narrative", cand.MatchedNarrative).Logger()

	// No market data means no basis for any downstream judgement.
	snap, err := o.opts.Market.Snapshot(ctx, cand.Mint)
	if err != nil {
		if errors.Is(err, market.ErrNoPairs) {
			log.Debug().Msg("no trading pairs yet")
			return OutcomeNoPairs, 0
		}
		log.Warn().Err(err).Msg("snapshot fetch failed")
		return OutcomeError, 0
	}
	if cand.Name == "" {
		cand.Name = snap.Name
	}
	if cand.Symbol == "" {
		cand.Symbol = snap.Symbol
	}

	// Quota gates run before any external verification spend.
	if o.opts.State.WasAlertedToday(cand.Mint) {
		return OutcomeDuplicate, 0
	}
	if !o.opts.State.CanAlert() {
		log.Debug().Msg("daily alert quota exhausted")
		return OutcomeQuota, 0
	}

	phase := o.opts.Momentum.Classify(snap)
	if phase == domain.PhaseLate {
		log.Debug().Float64("change_h1", snap.PriceChangeH1).Msg("pump already late")
		return OutcomeLate, 0
	}
	if o.opts.Momentum.IsStale(snap, snap.AgeHours(o.now())) {
		return OutcomeStale, 0
	}

	safety := o.opts.Shield.Verify(ctx, cand, snap)
	if !safety.Pass {
		log.Info().Strs("flags", safety.DangerFlags).Msg("blocked by shield")
		return OutcomeDanger, 0
	}

	relevance := float64(neutralRelevance)
	assessment, err := o.opts.Assessor.Assess(ctx, cand, snap)
	if err != nil {
		log.Warn().Err(err).Msg("relevance assessment failed, proceeding neutral")
	} else {
		relevance = assessment.RelevanceScore
	}

	score := o.opts.Scorer.Score(safety.Score, phase, snap, relevance)
	if !score.Alert {
		subs := score.SubScores()
		log.Debug().
			Float64("composite", score.Composite).
			Floats64("sub_scores", subs[:]).
			Msg("below alert floors")
		return OutcomeBelowFloor, score.Composite
	}

	// RecordAlert is the atomic claim on a quota slot; a concurrent
	// worker that lost the race gets ok=false, not an error. Dry runs
	// never claim a slot.
	if !o.opts.DryRun {
		ok, err := o.opts.State.RecordAlert(cand.Mint)
		if err != nil {
			log.Error().Err(err).Msg("persist alert state")
			return OutcomeError, score.Composite
		}
		if !ok {
			return OutcomeQuota, score.Composite
		}
	}

	alert := &journal.Alert{
		Mint:      cand.Mint,
		Name:      cand.Name,
		Symbol:    cand.Symbol,
		Narrative: cand.MatchedNarrative,
		Composite: score.Composite,
		Safety:    score.Safety,
		Timing:    score.Timing,
		Momentum:  score.Momentum,
		Relevance: score.Relevance,
		Phase:     phase.String(),
		SentAt:    o.now(),
	}
	if err := o.opts.Alerts.Insert(ctx, alert); err != nil {
		log.Warn().Err(err).Msg("journal alert")
	}
	if err := o.opts.Notifier.Notify(ctx, alert, snap, &safety); err != nil {
		log.Warn().Err(err).Msg("alert delivery failed")
	}
	observability.RecordAlertSent(o.opts.State.Remaining())

	log.Info().
		Float64("composite", score.Composite).
		Int("quota_remaining", o.opts.State.Remaining()).
		Msg("alert sent")
	return OutcomeAlerted, score.Composite
}
