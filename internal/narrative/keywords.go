// Package narrative turns prediction-market event titles into the
// keyword set that gates stream admission.
package narrative

import (
	"regexp"
	"sort"
	"strings"
)

// stopWords are title words that carry no narrative signal.
var stopWords = map[string]struct{}{
	// Question words and auxiliaries
	"will": {}, "would": {}, "could": {}, "should": {}, "can": {}, "does": {},
	"do": {}, "did": {}, "is": {}, "are": {}, "was": {}, "were": {}, "be": {},
	"been": {}, "being": {}, "have": {}, "has": {}, "had": {}, "having": {},
	// Articles and prepositions
	"the": {}, "a": {}, "an": {}, "of": {}, "in": {}, "on": {}, "at": {},
	"to": {}, "for": {}, "by": {}, "with": {}, "from": {}, "through": {},
	"during": {}, "before": {}, "after": {}, "above": {}, "below": {},
	"between": {}, "into": {}, "out": {}, "over": {}, "under": {}, "again": {},
	"further": {},
	// Connectives
	"yes": {}, "no": {}, "or": {}, "and": {}, "but": {}, "if": {}, "than": {},
	"so": {}, "as": {}, "about": {}, "any": {}, "all": {}, "each": {},
	"every": {}, "either": {}, "neither": {}, "both": {}, "few": {},
	"more": {}, "most": {}, "other": {}, "some": {}, "such": {}, "only": {},
	"own": {}, "same": {},
	// Time words
	"january": {}, "february": {}, "march": {}, "april": {}, "may": {},
	"june": {}, "july": {}, "august": {}, "september": {}, "october": {},
	"november": {}, "december": {},
	"jan": {}, "feb": {}, "mar": {}, "apr": {}, "jun": {}, "jul": {},
	"aug": {}, "sep": {}, "oct": {}, "nov": {}, "dec": {},
	"monday": {}, "tuesday": {}, "wednesday": {}, "thursday": {},
	"friday": {}, "saturday": {}, "sunday": {},
	"day": {}, "days": {}, "week": {}, "weeks": {}, "month": {}, "months": {},
	"year": {}, "years": {}, "today": {}, "tomorrow": {}, "yesterday": {},
	"first": {}, "second": {}, "third": {}, "next": {}, "last": {},
	// Question markers
	"what": {}, "who": {}, "when": {}, "where": {}, "why": {}, "how": {},
	"which": {}, "whom": {},
	// Common market verbs
	"win": {}, "wins": {}, "winning": {}, "winner": {}, "leave": {},
	"hit": {}, "hits": {}, "make": {}, "get": {}, "gets": {}, "become": {},
	"becomes": {}, "announce": {}, "announced": {},
	// Filler
	"this": {}, "that": {}, "these": {}, "those": {}, "here": {}, "there": {},
}

// priorityKeywords always outrank generic title words.
var priorityKeywords = map[string]struct{}{
	"trump": {}, "biden": {}, "musk": {}, "elon": {}, "vance": {},
	"tiktok": {}, "twitter": {}, "meta": {}, "google": {}, "apple": {},
	"nvidia": {}, "tesla": {},
	"war": {}, "russia": {}, "ukraine": {}, "china": {}, "israel": {}, "iran": {},
	"fed": {}, "inflation": {}, "recession": {}, "election": {},
	"scandal": {}, "resign": {}, "impeach": {}, "arrest": {}, "indicted": {},
}

// blacklist drops whole event titles: sports, crypto price bets and pop
// culture rarely produce narrative tokens.
var blacklist = []string{
	// Sports
	"nfl", "nba", "mlb", "nhl", "ufc", "wwe",
	"premier league", "champions league", "la liga", "bundesliga",
	"super bowl", "world cup", "world series",
	"lakers", "celtics", "warriors", "yankees", "cowboys", "patriots",
	"man city", "manchester", "liverpool", "arsenal", "chelsea",
	"barcelona", "real madrid",
	"playoffs", "championship", "finals", "mvp",
	// Crypto price bets
	"bitcoin", "btc", "ethereum", "eth", "solana", "sol",
	"price", "above", "below", "ath", "all-time high",
	"$100k", "$50k", "$10k",
	// Pop culture
	"taylor swift", "grammys", "oscars", "emmys",
	"box office", "album", "tour",
	// Weather
	"temperature", "weather", "hurricane",
}

var (
	yearPattern    = regexp.MustCompile(`\b20[2-3][0-9]\b`)
	ordinalPattern = regexp.MustCompile(`\b\d{1,2}(st|nd|rd|th)?\b`)
	specialChars   = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	spaces         = regexp.MustCompile(`\s+`)
)

const maxKeywordsPerTitle = 3

// ExtractKeywords derives up to three uppercase keywords from a market
// title. Blacklisted titles yield nothing. Known high-value words rank
// first, then capitalized words, then longer words.
func ExtractKeywords(title string) []string {
	lower := strings.ToLower(title)
	for _, banned := range blacklist {
		if strings.Contains(lower, banned) {
			return nil
		}
	}

	cleaned := yearPattern.ReplaceAllString(title, "")
	cleaned = ordinalPattern.ReplaceAllString(cleaned, "")
	cleaned = specialChars.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(spaces.ReplaceAllString(cleaned, " "))

	type scored struct {
		word  string
		score int
	}
	var candidates []scored

	for _, word := range strings.Fields(cleaned) {
		wordLower := strings.ToLower(word)
		if _, stop := stopWords[wordLower]; stop {
			continue
		}
		if len(word) < 2 {
			continue
		}
		if isDigits(word) {
			continue
		}

		score := 0
		if _, prio := priorityKeywords[wordLower]; prio {
			score += 100
		}
		if word[0] >= 'A' && word[0] <= 'Z' {
			score += 50
		}
		if n := len(word); n < 10 {
			score += n
		} else {
			score += 10
		}
		candidates = append(candidates, scored{word: wordLower, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].word < candidates[j].word
	})

	seen := make(map[string]struct{}, len(candidates))
	keywords := make([]string, 0, maxKeywordsPerTitle)
	for _, c := range candidates {
		if _, dup := seen[c.word]; dup {
			continue
		}
		seen[c.word] = struct{}{}
		keywords = append(keywords, strings.ToUpper(c.word))
		if len(keywords) == maxKeywordsPerTitle {
			break
		}
	}
	return keywords
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
