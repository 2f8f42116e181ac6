package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, maxPerDay int) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.json")
	s, err := Open(path, maxPerDay, zerolog.Nop())
	require.NoError(t, err)
	return s, path
}

func TestRecordAlertDeduplicates(t *testing.T) {
	s, _ := newTestStore(t, 3)

	ok, err := s.RecordAlert("mint-a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.RecordAlert("mint-a")
	require.NoError(t, err)
	assert.False(t, ok, "second record of the same mint must be rejected")
	assert.Equal(t, 2, s.Remaining(), "duplicate must not consume quota")
}

func TestCanAlertAtQuota(t *testing.T) {
	s, _ := newTestStore(t, 2)

	for _, m := range []string{"a", "b"} {
		ok, err := s.RecordAlert(m)
		require.NoError(t, err)
		require.True(t, ok)
	}

	assert.False(t, s.CanAlert())
	ok, err := s.RecordAlert("c")
	require.NoError(t, err)
	assert.False(t, ok, "record past the quota must be rejected")
	assert.Equal(t, 0, s.Remaining())
}

func TestUTCRollover(t *testing.T) {
	s, _ := newTestStore(t, 1)

	now := time.Date(2026, 8, 25, 23, 59, 0, 0, time.UTC)
	s.WithClock(func() time.Time { return now })

	ok, err := s.RecordAlert("mint-a")
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, s.CanAlert())
	require.NoError(t, s.RecordTraced("mint-a"))

	// Cross UTC midnight.
	now = now.Add(2 * time.Minute)

	assert.True(t, s.CanAlert(), "quota resets on the new UTC day")
	assert.False(t, s.WasAlertedToday("mint-a"))
	assert.False(t, s.WasTraced("mint-a"), "trace cache resets with the day")
}

func TestReopenSurvivesRestart(t *testing.T) {
	s, path := newTestStore(t, 3)

	ok, err := s.RecordAlert("mint-a")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, s.RecordTraced("mint-b"))

	reopened, err := Open(path, 3, zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, reopened.WasAlertedToday("mint-a"))
	assert.True(t, reopened.WasTraced("mint-b"))
	assert.Equal(t, 2, reopened.Remaining())
}

func TestOpenMigratesUnversionedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	// A file from before the schema_version field existed reads as 1.0.
	now := time.Now().UTC().Format("2006-01-02")
	data := []byte(`{"date":"` + now + `","alerts_today":1,"alerted_tokens":["mint-a"]}`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	s, err := Open(path, 3, zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, s.WasAlertedToday("mint-a"))
	assert.Equal(t, 2, s.Remaining())
}

func TestOpenRejectsUnknownSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s, err := Open(path, 3, zerolog.Nop())
	require.NoError(t, err)
	_, err = s.RecordAlert("a")
	require.NoError(t, err)

	// Corrupt the schema version on disk.
	data := []byte(`{"schema_version":"9.9","date":"2026-08-25"}`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = Open(path, 3, zerolog.Nop())
	assert.Error(t, err)
}
