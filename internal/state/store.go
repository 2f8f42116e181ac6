// Package state persists the daily alert quota across restarts.
// The store is a single JSON file rewritten atomically on every mutation;
// counters roll over at UTC midnight, checked lazily on each access.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const schemaVersion = "1.0"

type persisted struct {
	SchemaVersion string   `json:"schema_version"`
	Date          string   `json:"date"` // UTC, YYYY-MM-DD
	AlertsToday   int      `json:"alerts_today"`
	AlertedTokens []string `json:"alerted_tokens"`
	TracedTokens  []string `json:"traced_tokens"`
	LastReset     string   `json:"last_reset"`
}

// Store tracks how many alerts went out today and which tokens they
// covered. All methods are safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	path      string
	maxPerDay int
	log       zerolog.Logger
	now       func() time.Time

	date    string
	count   int
	alerted map[string]struct{}
	traced  map[string]struct{}
}

// Open loads the store from path, creating a fresh state when the file
// does not exist. A file from a previous UTC day is rolled over on load.
func Open(path string, maxPerDay int, log zerolog.Logger) (*Store, error) {
	s := &Store{
		path:      path,
		maxPerDay: maxPerDay,
		log:       log.With().Str("component", "state").Logger(),
		now:       time.Now,
		alerted:   make(map[string]struct{}),
		traced:    make(map[string]struct{}),
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		s.date = s.today()
		return s, s.flushLocked()
	case err != nil:
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse state file %s: %w", path, err)
	}
	if p.SchemaVersion != schemaVersion {
		p, err = migrate(p)
		if err != nil {
			return nil, fmt.Errorf("state file %s: %w", path, err)
		}
	}

	s.date = p.Date
	s.count = p.AlertsToday
	for _, m := range p.AlertedTokens {
		s.alerted[m] = struct{}{}
	}
	for _, m := range p.TracedTokens {
		s.traced[m] = struct{}{}
	}
	s.rolloverLocked()
	return s, nil
}

// migrate upgrades a record written under an older schema. Versions are
// additive: each known older version maps forward to the current one.
// Version 1.0 is the floor; files written before the field existed read
// as 1.0. Unknown versions are refused rather than guessed at.
func migrate(p persisted) (persisted, error) {
	switch p.SchemaVersion {
	case "":
		p.SchemaVersion = schemaVersion
		return p, nil
	default:
		return p, fmt.Errorf("unsupported schema version %q", p.SchemaVersion)
	}
}

// WithClock overrides the store's time source. For tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// CanAlert reports whether the daily quota has room for one more alert.
func (s *Store) CanAlert() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverLocked()
	return s.count < s.maxPerDay
}

// WasAlertedToday reports whether an alert already went out for mint today.
func (s *Store) WasAlertedToday(mint string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverLocked()
	_, ok := s.alerted[mint]
	return ok
}

// RecordAlert consumes one quota slot for mint. It returns false without
// consuming anything when mint was already recorded today or the quota
// is exhausted.
func (s *Store) RecordAlert(mint string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverLocked()

	if _, dup := s.alerted[mint]; dup {
		return false, nil
	}
	if s.count >= s.maxPerDay {
		return false, nil
	}
	s.alerted[mint] = struct{}{}
	s.count++
	if err := s.flushLocked(); err != nil {
		return false, err
	}
	return true, nil
}

// WasTraced reports whether mint's funding graph was already traced today.
func (s *Store) WasTraced(mint string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverLocked()
	_, ok := s.traced[mint]
	return ok
}

// RecordTraced marks mint's funding graph as traced for the rest of the day.
func (s *Store) RecordTraced(mint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverLocked()

	if _, ok := s.traced[mint]; ok {
		return nil
	}
	s.traced[mint] = struct{}{}
	return s.flushLocked()
}

// Remaining returns how many alert slots are left today.
func (s *Store) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverLocked()
	if left := s.maxPerDay - s.count; left > 0 {
		return left
	}
	return 0
}

func (s *Store) today() string {
	return s.now().UTC().Format("2006-01-02")
}

func (s *Store) rolloverLocked() {
	today := s.today()
	if s.date == today {
		return
	}
	s.log.Info().Str("from", s.date).Str("to", today).
		Int("alerts_used", s.count).Msg("daily quota rollover")
	s.date = today
	s.count = 0
	s.alerted = make(map[string]struct{})
	s.traced = make(map[string]struct{})
	if err := s.flushLocked(); err != nil {
		s.log.Error().Err(err).Msg("persist rollover")
	}
}

// flushLocked writes the state through a temp file and rename, so a crash
// mid-write never leaves a truncated state file behind.
func (s *Store) flushLocked() error {
	p := persisted{
		SchemaVersion: schemaVersion,
		Date:          s.date,
		AlertsToday:   s.count,
		AlertedTokens: make([]string, 0, len(s.alerted)),
		TracedTokens:  make([]string, 0, len(s.traced)),
		LastReset:     s.now().UTC().Format(time.RFC3339),
	}
	for m := range s.alerted {
		p.AlertedTokens = append(p.AlertedTokens, m)
	}
	for m := range s.traced {
		p.TracedTokens = append(p.TracedTokens, m)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
