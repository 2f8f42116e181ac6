package stream

import (
	"strings"
	"sync/atomic"
)

// Matcher decides whether a token's metadata matches any active
// narrative keyword. The keyword set swaps atomically on refresh, so
// admission never blocks behind a narrative update.
type Matcher struct {
	keywords atomic.Pointer[[]string]
}

// NewMatcher creates a Matcher with an empty keyword set. An empty set
// admits everything; the pipeline behind the stream does the filtering.
func NewMatcher() *Matcher {
	m := &Matcher{}
	empty := []string{}
	m.keywords.Store(&empty)
	return m
}

// Update replaces the active keyword set. Keywords are lowercased once
// here so Match stays allocation-free on the hot path.
func (m *Matcher) Update(keywords []string) {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			lowered = append(lowered, k)
		}
	}
	m.keywords.Store(&lowered)
}

// Active returns the current keyword count.
func (m *Matcher) Active() int {
	return len(*m.keywords.Load())
}

// Match reports whether name or symbol contains any active keyword,
// case-insensitively. With no active keywords every token matches and
// the returned keyword is empty.
func (m *Matcher) Match(name, symbol string) (string, bool) {
	keywords := *m.keywords.Load()
	if len(keywords) == 0 {
		return "", true
	}

	haystack := strings.ToLower(name + " " + symbol)
	for _, k := range keywords {
		if strings.Contains(haystack, k) {
			return k, true
		}
	}
	return "", false
}
