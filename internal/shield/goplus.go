package shield

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tokenradar/internal/domain"
	"tokenradar/internal/observability"
	"tokenradar/internal/ratelimit"
)

const goplusService = "goplus"

// flexBool decodes the GoPlus API's mixed boolean encodings: the API
// returns "0"/"1" strings, but some fields arrive as numbers or bools.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	*b = flexBool(s == "1" || s == "true")
	return nil
}

// GoPlusTier queries the GoPlus token security scanner for contract
// level red flags: honeypot logic, blacklists, hidden owner powers.
type GoPlusTier struct {
	baseURL  string
	http     *http.Client
	governor *ratelimit.Governor
}

// NewGoPlusTier creates the contract-scanner tier.
func NewGoPlusTier(baseURL string, governor *ratelimit.Governor) *GoPlusTier {
	return &GoPlusTier{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: 15 * time.Second},
		governor: governor,
	}
}

func (t *GoPlusTier) Name() string { return TierGoPlus }

type goplusToken struct {
	IsHoneypot    flexBool `json:"is_honeypot"`
	IsMintable    flexBool `json:"is_mintable"`
	HiddenOwner   flexBool `json:"hidden_owner"`
	Selfdestruct  flexBool `json:"selfdestruct"`
	IsBlacklisted flexBool `json:"is_blacklisted"`
}

func (t *GoPlusTier) Evaluate(ctx context.Context, cand *domain.Candidate, _ *domain.MarketSnapshot) domain.TierVerdict {
	if err := t.governor.Wait(ctx, goplusService); err != nil {
		return domain.Unknown(TierGoPlus, fmt.Sprintf("rate limit wait: %v", err))
	}

	u := fmt.Sprintf("%s/api/v1/solana/token_security?contract_addresses=%s",
		t.baseURL, url.QueryEscape(cand.Mint))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Unknown(TierGoPlus, fmt.Sprintf("create request: %v", err))
	}

	start := time.Now()
	resp, err := t.http.Do(req)
	observability.RecordUpstreamCall(goplusService, time.Since(start).Seconds(), err)
	if err != nil {
		return domain.Unknown(TierGoPlus, fmt.Sprintf("scanner unreachable: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.Unknown(TierGoPlus, "token not in scanner database")
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Unknown(TierGoPlus, fmt.Sprintf("scanner status %d", resp.StatusCode))
	}

	var payload struct {
		Code   int                    `json:"code"`
		Result map[string]goplusToken `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Unknown(TierGoPlus, fmt.Sprintf("decode response: %v", err))
	}
	if payload.Code != 1 {
		return domain.Unknown(TierGoPlus, fmt.Sprintf("scanner code %d", payload.Code))
	}

	token, ok := payload.Result[cand.Mint]
	if !ok {
		token, ok = payload.Result[strings.ToLower(cand.Mint)]
	}
	if !ok {
		return domain.Unknown(TierGoPlus, "no scanner data for mint")
	}

	var dangers, warnings []string
	if token.IsHoneypot {
		dangers = append(dangers, "honeypot detected")
	}
	if token.IsBlacklisted {
		dangers = append(dangers, "token is blacklisted")
	}
	if token.IsMintable {
		warnings = append(warnings, "unlimited minting possible")
	}
	if token.HiddenOwner {
		warnings = append(warnings, "hidden owner privileges")
	}
	if token.Selfdestruct {
		warnings = append(warnings, "self-destruct capability")
	}

	switch {
	case len(dangers) > 0:
		return domain.TierVerdict{
			Tier:   TierGoPlus,
			Level:  domain.LevelDanger,
			Reason: strings.Join(dangers, ", "),
		}
	case len(warnings) > 0:
		return domain.TierVerdict{
			Tier:   TierGoPlus,
			Level:  domain.LevelWarning,
			Reason: strings.Join(warnings, ", "),
		}
	}
	return domain.TierVerdict{Tier: TierGoPlus, Level: domain.LevelOK, Reason: "all contract checks passed"}
}
