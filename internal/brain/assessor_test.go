package brain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenradar/internal/domain"
	"tokenradar/internal/ratelimit"
)

type stubCompleter struct {
	response string
	err      error
	calls    int
}

func (s *stubCompleter) complete(_ context.Context, prompt string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func newTestClient(comp completer) *Client {
	g := ratelimit.NewGovernor(nil, 60_000)
	return NewClient("unused", g, time.Minute, zerolog.Nop(), withCompleter(comp))
}

func testCandidate() *domain.Candidate {
	return &domain.Candidate{Mint: "mint123", Name: "Fed Cut", Symbol: "FEDCUT", MatchedNarrative: "FED"}
}

func TestAssessParsesResponse(t *testing.T) {
	comp := &stubCompleter{response: `{"relevance_score":85,"authenticity_score":70,"confidence":90,"reasoning":"direct reference"}`}

	a, err := newTestClient(comp).Assess(context.Background(), testCandidate(), nil)
	require.NoError(t, err)

	assert.Equal(t, 85.0, a.RelevanceScore)
	assert.Equal(t, 70.0, a.AuthenticityScore)
	assert.Equal(t, 90.0, a.Confidence)
	assert.Equal(t, "direct reference", a.Reasoning)
}

func TestAssessStripsMarkdownFence(t *testing.T) {
	comp := &stubCompleter{response: "```json\n{\"relevance_score\":60,\"authenticity_score\":50,\"confidence\":40,\"reasoning\":\"ok\"}\n```"}

	a, err := newTestClient(comp).Assess(context.Background(), testCandidate(), nil)
	require.NoError(t, err)
	assert.Equal(t, 60.0, a.RelevanceScore)
}

func TestAssessClampsOutOfRangeScores(t *testing.T) {
	comp := &stubCompleter{response: `{"relevance_score":150,"authenticity_score":-20,"confidence":100,"reasoning":"x"}`}

	a, err := newTestClient(comp).Assess(context.Background(), testCandidate(), nil)
	require.NoError(t, err)
	assert.Equal(t, 100.0, a.RelevanceScore)
	assert.Equal(t, 0.0, a.AuthenticityScore)
}

func TestAssessCachesPerMint(t *testing.T) {
	comp := &stubCompleter{response: `{"relevance_score":85,"authenticity_score":70,"confidence":90,"reasoning":"r"}`}
	c := newTestClient(comp)

	_, err := c.Assess(context.Background(), testCandidate(), nil)
	require.NoError(t, err)
	_, err = c.Assess(context.Background(), testCandidate(), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, comp.calls, "second assessment for the same mint hits the cache")
}

func TestAssessModelError(t *testing.T) {
	comp := &stubCompleter{err: errors.New("overloaded")}

	_, err := newTestClient(comp).Assess(context.Background(), testCandidate(), nil)
	assert.Error(t, err)
}

func TestAssessGarbageResponse(t *testing.T) {
	comp := &stubCompleter{response: "I cannot evaluate this token."}

	c := newTestClient(comp)
	_, err := c.Assess(context.Background(), testCandidate(), nil)
	assert.Error(t, err)

	// Failures are not cached; the next pass for the mint retries.
	_, err = c.Assess(context.Background(), testCandidate(), nil)
	assert.Error(t, err)
	assert.Equal(t, 2, comp.calls)
}

func TestPromptCarriesNarrativeAndMarket(t *testing.T) {
	snap := &domain.MarketSnapshot{LiquidityUSD: 80_000, VolumeH24: 250_000, PriceChangeH1: 12.5}
	prompt := buildPrompt(testCandidate(), snap)

	assert.Contains(t, prompt, "FED")
	assert.Contains(t, prompt, "Fed Cut")
	assert.Contains(t, prompt, "$80000")
	assert.Contains(t, prompt, "relevance_score")
}
