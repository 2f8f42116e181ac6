// Package brain scores how well a candidate token fits the narrative
// that admitted it, using an LLM as the relevance judge. Assessments
// are cached per mint; the model call is the most expensive step in
// the pipeline and runs last for exactly that reason.
package brain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"

	"tokenradar/internal/cache"
	"tokenradar/internal/domain"
	"tokenradar/internal/observability"
	"tokenradar/internal/ratelimit"
)

const (
	llmService    = "llm"
	defaultModel  = "claude-sonnet-4-5"
	maxTokens     = 512
	temperature   = 0.2
	assessorCache = 512
)

// Assessor judges narrative relevance for a candidate.
type Assessor interface {
	Assess(ctx context.Context, cand *domain.Candidate, snap *domain.MarketSnapshot) (domain.Assessment, error)
}

// completer abstracts the model round trip so tests can stub it.
type completer interface {
	complete(ctx context.Context, prompt string) (string, error)
}

type sdkCompleter struct {
	client sdk.Client
	model  string
}

func (c *sdkCompleter) complete(ctx context.Context, prompt string) (string, error) {
	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:       sdk.Model(c.model),
		MaxTokens:   maxTokens,
		Temperature: sdk.Float(temperature),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("create message: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		b.WriteString(block.Text)
	}
	return b.String(), nil
}

// Client is the LLM-backed Assessor.
type Client struct {
	completer completer
	governor  *ratelimit.Governor
	cache     *cache.TTL[domain.Assessment]
	log       zerolog.Logger
}

// Option configures Client.
type Option func(*Client)

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *Client) {
		if sc, ok := c.completer.(*sdkCompleter); ok {
			sc.model = model
		}
	}
}

// withCompleter swaps the model round trip. For tests.
func withCompleter(comp completer) Option {
	return func(c *Client) {
		c.completer = comp
	}
}

// NewClient creates an Assessor backed by the Anthropic API.
func NewClient(apiKey string, governor *ratelimit.Governor, ttl time.Duration, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		completer: &sdkCompleter{
			client: sdk.NewClient(option.WithAPIKey(apiKey)),
			model:  defaultModel,
		},
		governor: governor,
		cache:    cache.NewTTL[domain.Assessment](ttl, assessorCache),
		log:      log.With().Str("component", "brain").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Assess returns the model's relevance verdict for the candidate,
// served from cache when the mint was judged recently.
func (c *Client) Assess(ctx context.Context, cand *domain.Candidate, snap *domain.MarketSnapshot) (domain.Assessment, error) {
	if a, ok := c.cache.Get(cand.Mint); ok {
		return a, nil
	}

	if err := c.governor.Wait(ctx, llmService); err != nil {
		return domain.Assessment{}, err
	}

	start := time.Now()
	raw, err := c.completer.complete(ctx, buildPrompt(cand, snap))
	observability.RecordUpstreamCall(llmService, time.Since(start).Seconds(), err)
	if err != nil {
		return domain.Assessment{}, err
	}

	a, err := parseAssessment(raw)
	if err != nil {
		c.log.Warn().Str("mint", cand.Mint).Str("raw", raw).Err(err).Msg("unparseable assessment")
		return domain.Assessment{}, err
	}

	c.cache.Set(cand.Mint, a)
	return a, nil
}

func buildPrompt(cand *domain.Candidate, snap *domain.MarketSnapshot) string {
	var b strings.Builder
	b.WriteString("You evaluate whether a newly launched Solana token genuinely relates to a prediction-market narrative.\n\n")
	fmt.Fprintf(&b, "Narrative keyword: %s\n", cand.MatchedNarrative)
	fmt.Fprintf(&b, "Token name: %s\nToken symbol: %s\n", cand.Name, cand.Symbol)
	if snap != nil {
		fmt.Fprintf(&b, "Liquidity: $%.0f\n24h volume: $%.0f\n1h price change: %.1f%%\n",
			snap.LiquidityUSD, snap.VolumeH24, snap.PriceChangeH1)
	}
	b.WriteString("\nRespond with only a JSON object:\n")
	b.WriteString(`{"relevance_score": 0-100, "authenticity_score": 0-100, "confidence": 0-100, "reasoning": "one sentence"}`)
	b.WriteString("\nrelevance_score: how directly the token references the narrative.")
	b.WriteString("\nauthenticity_score: how likely this is a genuine community token rather than an opportunistic copy.")
	return b.String()
}

func parseAssessment(raw string) (domain.Assessment, error) {
	// Models occasionally wrap JSON in a markdown fence despite instructions.
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var payload struct {
		RelevanceScore    float64 `json:"relevance_score"`
		AuthenticityScore float64 `json:"authenticity_score"`
		Confidence        float64 `json:"confidence"`
		Reasoning         string  `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &payload); err != nil {
		return domain.Assessment{}, fmt.Errorf("decode assessment: %w", err)
	}

	return domain.Assessment{
		RelevanceScore:    clamp100(payload.RelevanceScore),
		AuthenticityScore: clamp100(payload.AuthenticityScore),
		Confidence:        clamp100(payload.Confidence),
		Reasoning:         payload.Reasoning,
	}, nil
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
