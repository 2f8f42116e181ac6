package shield

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tokenradar/internal/domain"
	"tokenradar/internal/observability"
	"tokenradar/internal/ratelimit"
)

const rugcheckService = "rugcheck"

// riskLevels that mean the registry considers the token unsafe.
var rugcheckDangerLevels = map[string]bool{
	"danger":   true,
	"high":     true,
	"critical": true,
	"honeypot": true,
	"scam":     true,
	"rug":      true,
}

// RugcheckTier consults the RugCheck registry report for a mint.
// Brand-new tokens are usually not indexed yet; that is a pass, not a
// failure. Registry outages degrade to unknown.
type RugcheckTier struct {
	baseURL  string
	http     *http.Client
	governor *ratelimit.Governor
}

// NewRugcheckTier creates the registry tier.
func NewRugcheckTier(baseURL string, governor *ratelimit.Governor) *RugcheckTier {
	return &RugcheckTier{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: 15 * time.Second},
		governor: governor,
	}
}

func (t *RugcheckTier) Name() string { return TierRugcheck }

type rugcheckReport struct {
	Score float64 `json:"score_normalised"`
	Risks []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Level       string `json:"level"`
	} `json:"risks"`
	RiskLevel string `json:"riskLevel"`
}

func (t *RugcheckTier) Evaluate(ctx context.Context, cand *domain.Candidate, _ *domain.MarketSnapshot) domain.TierVerdict {
	if err := t.governor.Wait(ctx, rugcheckService); err != nil {
		return domain.Unknown(TierRugcheck, fmt.Sprintf("rate limit wait: %v", err))
	}

	url := fmt.Sprintf("%s/v1/tokens/%s/report", t.baseURL, cand.Mint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Unknown(TierRugcheck, fmt.Sprintf("create request: %v", err))
	}

	start := time.Now()
	resp, err := t.http.Do(req)
	observability.RecordUpstreamCall(rugcheckService, time.Since(start).Seconds(), err)
	if err != nil {
		return domain.Unknown(TierRugcheck, fmt.Sprintf("registry unreachable: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.TierVerdict{
			Tier:   TierRugcheck,
			Level:  domain.LevelOK,
			Reason: "not indexed by registry yet",
		}
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Unknown(TierRugcheck, fmt.Sprintf("registry status %d", resp.StatusCode))
	}

	var report rugcheckReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return domain.Unknown(TierRugcheck, fmt.Sprintf("decode report: %v", err))
	}

	for _, risk := range report.Risks {
		if strings.EqualFold(risk.Level, "danger") {
			return domain.TierVerdict{
				Tier:   TierRugcheck,
				Level:  domain.LevelDanger,
				Reason: fmt.Sprintf("registry flags %s: %s", risk.Name, risk.Description),
			}
		}
	}
	if rugcheckDangerLevels[strings.ToLower(report.RiskLevel)] {
		return domain.TierVerdict{
			Tier:   TierRugcheck,
			Level:  domain.LevelDanger,
			Reason: fmt.Sprintf("registry risk level %q", report.RiskLevel),
		}
	}

	switch {
	case report.Score >= 80:
		return domain.TierVerdict{
			Tier:   TierRugcheck,
			Level:  domain.LevelDanger,
			Reason: fmt.Sprintf("registry risk score %.0f", report.Score),
		}
	case report.Score > 30:
		return domain.TierVerdict{
			Tier:   TierRugcheck,
			Level:  domain.LevelWarning,
			Reason: fmt.Sprintf("elevated registry risk score %.0f", report.Score),
		}
	}
	return domain.TierVerdict{
		Tier:   TierRugcheck,
		Level:  domain.LevelOK,
		Reason: fmt.Sprintf("registry risk score %.0f", report.Score),
	}
}
