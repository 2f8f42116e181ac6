package shield

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"tokenradar/internal/cache"
	"tokenradar/internal/domain"
	"tokenradar/internal/observability"
	"tokenradar/internal/ratelimit"
)

const (
	newsService   = "news"
	newsCacheSize = 256
)

// NewsTier checks whether the narrative a token rides has real news
// coverage. A pump with zero press behind its story is running on
// nothing but the story. Results are cached per query; narratives
// repeat across candidates far more often than they change.
type NewsTier struct {
	feedURL  string
	http     *http.Client
	parser   *gofeed.Parser
	governor *ratelimit.Governor
	cache    *cache.TTL[domain.TierVerdict]
}

// NewNewsTier creates the news-coverage tier.
func NewNewsTier(feedURL string, governor *ratelimit.Governor, ttl time.Duration) *NewsTier {
	return &NewsTier{
		feedURL:  feedURL,
		http:     &http.Client{Timeout: 15 * time.Second},
		parser:   gofeed.NewParser(),
		governor: governor,
		cache:    cache.NewTTL[domain.TierVerdict](ttl, newsCacheSize),
	}
}

func (t *NewsTier) Name() string { return TierNews }

func (t *NewsTier) Evaluate(ctx context.Context, cand *domain.Candidate, _ *domain.MarketSnapshot) domain.TierVerdict {
	query := buildNewsQuery(cand)
	if query == "" {
		return domain.Unknown(TierNews, "nothing to search for")
	}

	if v, ok := t.cache.Get(query); ok {
		return v
	}

	if err := t.governor.Wait(ctx, newsService); err != nil {
		return domain.Unknown(TierNews, fmt.Sprintf("rate limit wait: %v", err))
	}

	u := fmt.Sprintf("%s?q=%s&hl=en-US&gl=US&ceid=US:en", t.feedURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Unknown(TierNews, fmt.Sprintf("create request: %v", err))
	}

	start := time.Now()
	resp, err := t.http.Do(req)
	observability.RecordUpstreamCall(newsService, time.Since(start).Seconds(), err)
	if err != nil {
		return domain.Unknown(TierNews, fmt.Sprintf("feed unreachable: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Unknown(TierNews, fmt.Sprintf("feed status %d", resp.StatusCode))
	}

	feed, err := t.parser.Parse(resp.Body)
	if err != nil {
		return domain.Unknown(TierNews, fmt.Sprintf("parse feed: %v", err))
	}

	var v domain.TierVerdict
	if len(feed.Items) == 0 {
		v = domain.TierVerdict{
			Tier:   TierNews,
			Level:  domain.LevelWarning,
			Reason: fmt.Sprintf("no news coverage for %q", query),
		}
	} else {
		v = domain.TierVerdict{
			Tier:   TierNews,
			Level:  domain.LevelOK,
			Reason: fmt.Sprintf("%d news articles for %q", len(feed.Items), query),
		}
	}
	t.cache.Set(query, v)
	return v
}

// buildNewsQuery prefers the matched narrative keyword: the question is
// whether the story is real, not whether the ticker made headlines.
func buildNewsQuery(cand *domain.Candidate) string {
	parts := make([]string, 0, 3)
	if cand.MatchedNarrative != "" {
		parts = append(parts, cand.MatchedNarrative)
	}
	if cand.Name != "" {
		parts = append(parts, cand.Name)
	} else if cand.Symbol != "" {
		parts = append(parts, cand.Symbol)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
