package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLGetSet(t *testing.T) {
	c := NewTTL[string](time.Minute, 10)

	_, ok := c.Get("missing")
	require.False(t, ok)

	c.Set("k", "v")
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestTTLExpiry(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	c := NewTTL[int](time.Minute, 10).WithClock(func() time.Time { return now })

	c.Set("k", 42)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 42, got)

	now = now.Add(61 * time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok, "entry should expire after the TTL")
}

func TestTTLBounded(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	c := NewTTL[int](time.Minute, 2).WithClock(func() time.Time { return now })

	c.Set("a", 1)
	now = now.Add(time.Second)
	c.Set("b", 2)
	now = now.Add(time.Second)
	c.Set("c", 3)

	assert.Equal(t, 2, c.Len())
	// "a" had the nearest expiry and should have been evicted.
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestTTLEvictsExpiredFirst(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	c := NewTTL[int](time.Minute, 2).WithClock(func() time.Time { return now })

	c.Set("old", 1)
	now = now.Add(2 * time.Minute) // "old" is now expired
	c.Set("fresh", 2)
	c.Set("newer", 3)

	_, ok := c.Get("fresh")
	assert.True(t, ok, "live entry should survive when an expired one can be dropped")
	_, ok = c.Get("newer")
	assert.True(t, ok)
}
