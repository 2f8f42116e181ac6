// Package journal persists alert history and per-candidate pipeline
// outcomes. Alerts go to Postgres, the high-volume candidate log goes
// to ClickHouse; both sinks are optional and degrade to in-memory
// implementations when no DSN is configured.
package journal

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateKey indicates a unique constraint violation.
var ErrDuplicateKey = errors.New("duplicate key")

// Alert is one sent alert, journaled for audit and quota forensics.
type Alert struct {
	Mint      string
	Name      string
	Symbol    string
	Narrative string
	Composite float64
	Safety    float64
	Timing    float64
	Momentum  float64
	Relevance float64
	Phase     string
	SentAt    time.Time
}

// CandidateEntry records the terminal outcome of one pipeline pass,
// alerted or not. The log feeds threshold tuning.
type CandidateEntry struct {
	Mint       string
	Name       string
	Symbol     string
	Narrative  string
	Outcome    string // terminal stage: alerted, quota, late, stale, danger, irrelevant, no_pairs, duplicate
	Composite  float64
	ObservedAt time.Time
}

// AlertStore persists sent alerts.
type AlertStore interface {
	Insert(ctx context.Context, a *Alert) error
	Recent(ctx context.Context, limit int) ([]*Alert, error)
}

// CandidateLog appends terminal pipeline outcomes.
type CandidateLog interface {
	Append(ctx context.Context, e *CandidateEntry) error
}
