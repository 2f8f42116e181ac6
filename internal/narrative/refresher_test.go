package narrative

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenradar/internal/config"
	"tokenradar/internal/domain"
	"tokenradar/internal/stream"
)

type fakeSource struct {
	events []domain.NarrativeEvent
	err    error
}

func (f *fakeSource) TopEvents(context.Context) ([]domain.NarrativeEvent, error) {
	return f.events, f.err
}

func newRefresher(src Source, m *stream.Matcher) *Refresher {
	return NewRefresher(src, m, config.Default().Narrative, zerolog.Nop())
}

func TestRefreshUpdatesMatcher(t *testing.T) {
	src := &fakeSource{events: []domain.NarrativeEvent{
		{Title: "Trump announces TikTok deal", Volume: 1_000_000},
		{Title: "Fed decision in March?", Volume: 500_000},
	}}
	m := stream.NewMatcher()
	m.Update([]string{"placeholder"})

	require.True(t, newRefresher(src, m).Refresh(context.Background()))

	_, ok := m.Match("Fed Cut", "FC")
	assert.True(t, ok)
	_, ok = m.Match("placeholder token", "PT")
	assert.False(t, ok, "old set must be fully replaced")
}

func TestRefreshFiltersByVolumeFloor(t *testing.T) {
	src := &fakeSource{events: []domain.NarrativeEvent{
		{Title: "Trump announces TikTok deal", Volume: 10_000}, // below floor
		{Title: "Maduro leaves Venezuela?", Volume: 900_000},
	}}
	m := stream.NewMatcher()

	require.True(t, newRefresher(src, m).Refresh(context.Background()))

	_, ok := m.Match("Trump Coin", "TC")
	assert.False(t, ok, "low-volume events contribute nothing")
	_, ok = m.Match("Maduro Out", "MO")
	assert.True(t, ok)
}

func TestRefreshKeepsSetOnError(t *testing.T) {
	m := stream.NewMatcher()
	m.Update([]string{"fed"})

	src := &fakeSource{err: errors.New("gamma api down")}
	assert.False(t, newRefresher(src, m).Refresh(context.Background()))

	_, ok := m.Match("Fed Cut", "FC")
	assert.True(t, ok, "previous set survives a failed refresh")
}

func TestRefreshKeepsSetOnEmptyDerivation(t *testing.T) {
	m := stream.NewMatcher()
	m.Update([]string{"fed"})

	// All events blacklisted, so the union is empty.
	src := &fakeSource{events: []domain.NarrativeEvent{
		{Title: "Bitcoin above $100k?", Volume: 5_000_000},
	}}
	assert.False(t, newRefresher(src, m).Refresh(context.Background()))

	assert.Equal(t, 1, m.Active(), "previous set survives an empty refresh")
}
