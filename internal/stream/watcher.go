// Package stream turns raw Solana program logs into verification
// candidates. It subscribes to launchpad program logs, extracts token
// metadata and admits only tokens matching the active narrative set.
package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"tokenradar/internal/domain"
	"tokenradar/internal/observability"
	"tokenradar/internal/solana"
)

// Watcher consumes program log notifications and emits candidates.
type Watcher struct {
	ws       solana.WSClient
	programs []string
	matcher  *Matcher
	out      chan domain.Candidate
	log      zerolog.Logger
	now      func() time.Time
}

// Options configures a Watcher.
type Options struct {
	WS        solana.WSClient
	Programs  []string // program IDs to subscribe to, one subscription each
	Matcher   *Matcher
	QueueSize int
	Logger    zerolog.Logger
}

// NewWatcher creates a Watcher. The candidate queue is bounded: when
// verification falls behind, new events are dropped, not buffered
// without limit.
func NewWatcher(opts Options) *Watcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	return &Watcher{
		ws:       opts.WS,
		programs: opts.Programs,
		matcher:  opts.Matcher,
		out:      make(chan domain.Candidate, opts.QueueSize),
		log:      opts.Logger.With().Str("component", "stream").Logger(),
		now:      time.Now,
	}
}

// Candidates returns the admitted-candidate queue.
func (w *Watcher) Candidates() <-chan domain.Candidate {
	return w.out
}

// Run subscribes to every configured program and pumps notifications
// until ctx is cancelled. The candidate queue closes on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.out)

	type sub struct {
		program string
		ch      <-chan solana.LogNotification
	}
	subs := make([]sub, 0, len(w.programs))
	for _, program := range w.programs {
		ch, err := w.ws.SubscribeLogs(ctx, solana.LogsFilter{Mentions: []string{program}})
		if err != nil {
			return fmt.Errorf("subscribe to %s: %w", program, err)
		}
		w.log.Info().Str("program", program).Msg("subscribed to program logs")
		subs = append(subs, sub{program: program, ch: ch})
	}

	done := make(chan struct{})
	for _, s := range subs {
		go func(s sub) {
			defer func() { done <- struct{}{} }()
			for {
				select {
				case <-ctx.Done():
					return
				case notif, ok := <-s.ch:
					if !ok {
						return
					}
					w.handle(s.program, notif)
				}
			}
		}(s)
	}

	for range subs {
		<-done
	}
	return ctx.Err()
}

func (w *Watcher) handle(program string, notif solana.LogNotification) {
	observability.RecordEventReceived()

	// Failed transactions never created a token.
	if notif.Err != nil {
		return
	}

	meta, ok := Extract(notif.Logs)
	if !ok {
		observability.RecordExtractionFailure()
		return
	}

	keyword, matched := w.matcher.Match(meta.Name, meta.Symbol)
	if !matched {
		return
	}
	observability.RecordEventMatched()

	cand := domain.Candidate{
		Mint:             meta.Mint,
		Name:             meta.Name,
		Symbol:           meta.Symbol,
		ProgramID:        program,
		TxSignature:      notif.Signature,
		DetectedAt:       w.now(),
		MatchedNarrative: keyword,
	}

	select {
	case w.out <- cand:
		observability.SetQueueDepth(len(w.out))
	default:
		w.log.Warn().Str("mint", cand.Mint).Msg("candidate queue full, dropping event")
	}
}
