package shield

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/agext/levenshtein"

	"tokenradar/internal/domain"
	"tokenradar/internal/observability"
	"tokenradar/internal/ratelimit"
)

const (
	cloneService = "dexscreener"

	// Matches below the configured clone floor but above this are
	// close enough to mention without blocking.
	cloneModerateSimilarity = 0.5

	cloneMaxResults = 10
)

// CloneTier searches the market index for established tokens with a
// near-identical name or symbol. Scammers ride recognizable names; a
// token that mimics an existing one closely enough is treated as an
// impersonation attempt.
type CloneTier struct {
	baseURL   string
	http      *http.Client
	governor  *ratelimit.Governor
	threshold float64
}

// NewCloneTier creates the clone-detection tier.
func NewCloneTier(baseURL string, governor *ratelimit.Governor, threshold float64) *CloneTier {
	return &CloneTier{
		baseURL:   baseURL,
		http:      &http.Client{Timeout: 15 * time.Second},
		governor:  governor,
		threshold: threshold,
	}
}

func (t *CloneTier) Name() string { return TierClone }

type clonePair struct {
	BaseToken struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
}

func (t *CloneTier) Evaluate(ctx context.Context, cand *domain.Candidate, snap *domain.MarketSnapshot) domain.TierVerdict {
	name, symbol := cand.Name, cand.Symbol
	if snap != nil {
		if name == "" {
			name = snap.Name
		}
		if symbol == "" {
			symbol = snap.Symbol
		}
	}
	if name == "" && symbol == "" {
		return domain.Unknown(TierClone, "no name or symbol to compare")
	}

	query := name
	if query == "" {
		query = symbol
	}
	pairs, err := t.search(ctx, query)
	if err == nil && len(pairs) == 0 && symbol != "" && symbol != query {
		pairs, err = t.search(ctx, symbol)
	}
	if err != nil {
		return domain.Unknown(TierClone, fmt.Sprintf("market search failed: %v", err))
	}

	params := levenshtein.NewParams()
	var best float64
	var bestName string
	for i, p := range pairs {
		if i >= cloneMaxResults {
			break
		}
		if p.BaseToken.Address == cand.Mint {
			continue
		}
		sim := levenshtein.Similarity(name, p.BaseToken.Name, params)
		if s := levenshtein.Similarity(symbol, p.BaseToken.Symbol, params); s > sim {
			sim = s
		}
		if sim > best {
			best = sim
			bestName = fmt.Sprintf("%s (%s)", p.BaseToken.Name, p.BaseToken.Symbol)
		}
	}

	switch {
	case best >= t.threshold:
		return domain.TierVerdict{
			Tier:   TierClone,
			Level:  domain.LevelDanger,
			Reason: fmt.Sprintf("near-identical to existing token %s (%.0f%% similar)", bestName, best*100),
		}
	case best >= cloneModerateSimilarity:
		return domain.TierVerdict{
			Tier:   TierClone,
			Level:  domain.LevelWarning,
			Reason: fmt.Sprintf("resembles existing token %s (%.0f%% similar)", bestName, best*100),
		}
	}
	return domain.TierVerdict{Tier: TierClone, Level: domain.LevelOK, Reason: "no similar tokens found"}
}

func (t *CloneTier) search(ctx context.Context, query string) ([]clonePair, error) {
	if err := t.governor.Wait(ctx, cloneService); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/latest/dex/search?q=%s", t.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := t.http.Do(req)
	observability.RecordUpstreamCall(cloneService, time.Since(start).Seconds(), err)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search status %d", resp.StatusCode)
	}

	var payload struct {
		Pairs []clonePair `json:"pairs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return payload.Pairs, nil
}
