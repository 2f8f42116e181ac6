package journal

import (
	"context"
	"sync"
)

// MemoryAlertStore is the in-process AlertStore used when no Postgres
// DSN is configured.
type MemoryAlertStore struct {
	mu     sync.Mutex
	alerts []*Alert
}

// NewMemoryAlertStore creates an empty in-memory alert store.
func NewMemoryAlertStore() *MemoryAlertStore {
	return &MemoryAlertStore{}
}

var _ AlertStore = (*MemoryAlertStore)(nil)

func (s *MemoryAlertStore) Insert(_ context.Context, a *Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.alerts = append(s.alerts, &cp)
	return nil
}

// Recent returns the latest alerts, newest first.
func (s *MemoryAlertStore) Recent(_ context.Context, limit int) ([]*Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.alerts)
	if limit > n {
		limit = n
	}
	out := make([]*Alert, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		cp := *s.alerts[i]
		out = append(out, &cp)
	}
	return out, nil
}

// MemoryCandidateLog is the in-process CandidateLog used when no
// ClickHouse DSN is configured.
type MemoryCandidateLog struct {
	mu      sync.Mutex
	entries []*CandidateEntry
}

// NewMemoryCandidateLog creates an empty in-memory candidate log.
func NewMemoryCandidateLog() *MemoryCandidateLog {
	return &MemoryCandidateLog{}
}

var _ CandidateLog = (*MemoryCandidateLog)(nil)

func (l *MemoryCandidateLog) Append(_ context.Context, e *CandidateEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := *e
	l.entries = append(l.entries, &cp)
	return nil
}

// Entries returns a copy of everything appended so far.
func (l *MemoryCandidateLog) Entries() []*CandidateEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*CandidateEntry, len(l.entries))
	for i, e := range l.entries {
		cp := *e
		out[i] = &cp
	}
	return out
}
