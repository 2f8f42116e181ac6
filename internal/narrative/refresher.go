package narrative

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"tokenradar/internal/config"
	"tokenradar/internal/domain"
	"tokenradar/internal/observability"
	"tokenradar/internal/stream"
)

// Source fetches the current top prediction-market events.
type Source interface {
	TopEvents(ctx context.Context) ([]domain.NarrativeEvent, error)
}

// Refresher periodically rebuilds the narrative keyword set and swaps
// it into the stream matcher. A failed or empty refresh keeps the
// previous set: the stream must never silently fall open.
type Refresher struct {
	source  Source
	matcher *stream.Matcher
	period  time.Duration
	floor   float64
	log     zerolog.Logger
}

// NewRefresher creates a Refresher.
func NewRefresher(source Source, matcher *stream.Matcher, cfg config.NarrativeConfig, log zerolog.Logger) *Refresher {
	return &Refresher{
		source:  source,
		matcher: matcher,
		period:  cfg.RefreshPeriod,
		floor:   cfg.VolumeFloor,
		log:     log.With().Str("component", "narrative").Logger(),
	}
}

// Run refreshes once immediately, then on every tick until ctx ends.
func (r *Refresher) Run(ctx context.Context) {
	r.Refresh(ctx)

	ticker := time.NewTicker(r.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Refresh(ctx)
		}
	}
}

// Refresh fetches events and rebuilds the keyword set. It reports
// whether the active set was replaced.
func (r *Refresher) Refresh(ctx context.Context) bool {
	events, err := r.source.TopEvents(ctx)
	if err != nil {
		observability.RecordNarrativeRefresh("error", 0)
		r.log.Warn().Err(err).Msg("narrative refresh failed, keeping previous set")
		return false
	}

	seen := make(map[string]struct{})
	var keywords []string
	for _, e := range events {
		if e.Volume < r.floor {
			continue
		}
		for _, k := range ExtractKeywords(e.Title) {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			keywords = append(keywords, k)
		}
	}

	if len(keywords) == 0 {
		observability.RecordNarrativeRefresh("empty", 0)
		r.log.Warn().Int("events", len(events)).
			Msg("no keywords derived, keeping previous set")
		return false
	}

	r.matcher.Update(keywords)
	observability.RecordNarrativeRefresh("ok", len(keywords))
	r.log.Info().Int("events", len(events)).Int("keywords", len(keywords)).
		Strs("sample", keywords[:min(5, len(keywords))]).Msg("narrative set updated")
	return true
}
