package journal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAlertStoreRecentNewestFirst(t *testing.T) {
	s := NewMemoryAlertStore()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, mint := range []string{"a", "b", "c"} {
		require.NoError(t, s.Insert(ctx, &Alert{Mint: mint, SentAt: base.Add(time.Duration(i) * time.Minute)}))
	}

	alerts, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "c", alerts[0].Mint)
	assert.Equal(t, "b", alerts[1].Mint)
}

func TestMemoryAlertStoreRecentBeyondStored(t *testing.T) {
	s := NewMemoryAlertStore()
	require.NoError(t, s.Insert(context.Background(), &Alert{Mint: "a"}))

	alerts, err := s.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}

func TestMemoryCandidateLogCopiesEntries(t *testing.T) {
	l := NewMemoryCandidateLog()
	e := &CandidateEntry{Mint: "a", Outcome: "late"}
	require.NoError(t, l.Append(context.Background(), e))

	e.Outcome = "mutated"
	entries := l.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "late", entries[0].Outcome, "the log stores a copy, not the caller's pointer")
}
