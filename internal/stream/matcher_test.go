package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatcherEmptySetAdmitsEverything(t *testing.T) {
	m := NewMatcher()

	keyword, ok := m.Match("Anything", "ANY")
	assert.True(t, ok)
	assert.Empty(t, keyword, "pass-through admission carries no keyword")
}

func TestMatcherCaseInsensitiveSubstring(t *testing.T) {
	m := NewMatcher()
	m.Update([]string{"fed", "election"})

	keyword, ok := m.Match("FedCut2026", "FC")
	assert.True(t, ok)
	assert.Equal(t, "fed", keyword)

	keyword, ok = m.Match("vote token", "ELECTION")
	assert.True(t, ok, "symbol participates in matching")
	assert.Equal(t, "election", keyword)

	_, ok = m.Match("Dog Coin", "DOG")
	assert.False(t, ok)
}

func TestMatcherUpdateSwapsAtomically(t *testing.T) {
	m := NewMatcher()
	m.Update([]string{"fed"})
	assert.Equal(t, 1, m.Active())

	m.Update([]string{"election", "rate", "shutdown"})
	assert.Equal(t, 3, m.Active())

	_, ok := m.Match("FedCut", "FC")
	assert.False(t, ok, "old keywords must be gone after the swap")
}

func TestMatcherUpdateDropsBlanks(t *testing.T) {
	m := NewMatcher()
	m.Update([]string{" fed ", "", "  "})
	assert.Equal(t, 1, m.Active())

	keyword, ok := m.Match("fed watch", "FW")
	assert.True(t, ok)
	assert.Equal(t, "fed", keyword)
}
