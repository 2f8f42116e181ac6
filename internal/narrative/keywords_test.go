package narrative

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywordsPriorityFirst(t *testing.T) {
	got := ExtractKeywords("Trump announces TikTok deal")
	assert.Contains(t, got, "TRUMP")
	assert.Contains(t, got, "TIKTOK")
}

func TestExtractKeywordsProperNouns(t *testing.T) {
	got := ExtractKeywords("Will Nicolas Maduro leave Venezuela by January?")
	assert.Contains(t, got, "MADURO")
	assert.Contains(t, got, "VENEZUELA")
	assert.NotContains(t, got, "JANUARY", "month names are stop words")
}

func TestExtractKeywordsBlacklist(t *testing.T) {
	assert.Empty(t, ExtractKeywords("Bitcoin hits $100k in 2024?"), "crypto price bets are noise")
	assert.Empty(t, ExtractKeywords("Super Bowl Champion 2026"), "sports are noise")
	assert.Empty(t, ExtractKeywords("Taylor Swift album drops before tour?"), "pop culture is noise")
}

func TestExtractKeywordsStripsDates(t *testing.T) {
	got := ExtractKeywords("Fed decision on the 15th of March 2026?")
	assert.Contains(t, got, "FED")
	for _, k := range got {
		assert.NotEqual(t, "2026", k)
		assert.NotEqual(t, "15TH", k)
	}
}

func TestExtractKeywordsCapAtThree(t *testing.T) {
	got := ExtractKeywords("Russia Ukraine war ends as China Iran Israel react")
	assert.Len(t, got, 3)
}

func TestExtractKeywordsEmptyTitle(t *testing.T) {
	assert.Empty(t, ExtractKeywords(""))
	assert.Empty(t, ExtractKeywords("will the of in on?"))
}
