// Package config loads and validates the radar configuration.
// Every numeric rule threshold is externally tunable from one YAML file;
// invariant violations (weights not summing to 1.0, non-positive quotas)
// are fatal at startup, never at runtime.
package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full configuration surface for the radar daemon.
type Config struct {
	Endpoints  EndpointsConfig  `yaml:"endpoints"`
	Stream     StreamConfig     `yaml:"stream"`
	Narrative  NarrativeConfig  `yaml:"narrative"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Cabal      CabalConfig      `yaml:"cabal"`
	RateLimits map[string]int   `yaml:"rate_limits"` // service name -> requests per minute
	Alerts     AlertsConfig     `yaml:"alerts"`
	Journal    JournalConfig    `yaml:"journal"`
	LogLevel   string           `yaml:"log_level"`
	DryRun     bool             `yaml:"dry_run"`
}

// EndpointsConfig holds upstream service addresses and credentials.
type EndpointsConfig struct {
	SolanaRPC       string `yaml:"solana_rpc"`
	SolanaWS        string `yaml:"solana_ws"`
	PolymarketAPI   string `yaml:"polymarket_api"`
	DexScreenerAPI  string `yaml:"dexscreener_api"`
	RugcheckAPI     string `yaml:"rugcheck_api"`
	GoPlusAPI       string `yaml:"goplus_api"`
	NewsFeedURL     string `yaml:"news_feed_url"`
	AnthropicKey    string `yaml:"anthropic_key"`
	TelegramToken   string `yaml:"telegram_token"`
	TelegramChatID  string `yaml:"telegram_chat_id"`
}

// StreamConfig tunes the ingestion stream's transport behavior.
type StreamConfig struct {
	Programs          []string      `yaml:"programs"` // program IDs to subscribe to
	ReconnectDelay    time.Duration `yaml:"reconnect_delay"`
	MaxReconnectDelay time.Duration `yaml:"max_reconnect_delay"`
	PingInterval      time.Duration `yaml:"ping_interval"`
	QueueSize         int           `yaml:"queue_size"` // admitted-candidate hand-off buffer
}

// NarrativeConfig tunes the narrative refresher.
type NarrativeConfig struct {
	RefreshPeriod time.Duration `yaml:"refresh_period"`
	VolumeFloor   float64       `yaml:"volume_floor"` // USD; events below are discarded
	MaxEvents     int           `yaml:"max_events"`   // top-N events per refresh
}

// ThresholdsConfig holds the verification and timing rule thresholds.
type ThresholdsConfig struct {
	MaxPriceChangeH1  float64 `yaml:"max_price_change_h1"`  // percent; above is LATE
	MinPriceChangeH1  float64 `yaml:"min_price_change_h1"`  // percent; below is flat
	MaxTop10Percent   float64 `yaml:"max_top10_percent"`    // holder concentration ceiling
	MaxTokenAgeHours  float64 `yaml:"max_token_age_hours"`  // staleness age ceiling
	BundledAgeHours   float64 `yaml:"bundled_age_hours"`    // bundled-launch window
	BundledMinBuyers  int     `yaml:"bundled_min_buyers"`   // distinct buyers below is suspicious
	CloneSimilarity   float64 `yaml:"clone_similarity"`     // 0-1 levenshtein similarity floor
	NewsCacheTTL      time.Duration `yaml:"news_cache_ttl"`
	RelevanceCacheTTL time.Duration `yaml:"relevance_cache_ttl"`
}

// ScoringConfig holds the composite scorer weights and floors.
type ScoringConfig struct {
	WeightSafety    float64 `yaml:"weight_safety"`
	WeightTiming    float64 `yaml:"weight_timing"`
	WeightMomentum  float64 `yaml:"weight_momentum"`
	WeightRelevance float64 `yaml:"weight_relevance"`
	MinComposite    float64 `yaml:"min_composite"`  // strict > to alert
	MinIndividual   float64 `yaml:"min_individual"` // strict > per dimension
}

// CabalConfig tunes the funding-graph tier.
type CabalConfig struct {
	TopHolders      int           `yaml:"top_holders"`       // trace at most this many holders
	FunderThreshold int           `yaml:"funder_threshold"`  // shared-funder count that means danger
	TraceTimeout    time.Duration `yaml:"trace_timeout"`
}

// AlertsConfig holds the daily quota gate settings.
type AlertsConfig struct {
	MaxPerDay int    `yaml:"max_per_day"`
	StateFile string `yaml:"state_file"`
}

// JournalConfig holds optional sink DSNs. Empty values disable the sink.
type JournalConfig struct {
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickHouseDSN string `yaml:"clickhouse_dsn"`
}

// Default returns the configuration the daemon runs with when no file is given.
func Default() *Config {
	return &Config{
		Endpoints: EndpointsConfig{
			SolanaRPC:      "https://api.mainnet-beta.solana.com",
			SolanaWS:       "wss://api.mainnet-beta.solana.com",
			PolymarketAPI:  "https://gamma-api.polymarket.com",
			DexScreenerAPI: "https://api.dexscreener.com",
			RugcheckAPI:    "https://api.rugcheck.xyz",
			GoPlusAPI:      "https://api.gopluslabs.io",
			NewsFeedURL:    "https://news.google.com/rss/search",
		},
		Stream: StreamConfig{
			Programs: []string{
				"675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8", // Raydium AMM v4
				"6EF8rQNxjNDoERZkwPost5FDE7vaKc27NSMqRyAZLt4e", // pump.fun
			},
			ReconnectDelay:    1 * time.Second,
			MaxReconnectDelay: 60 * time.Second,
			PingInterval:      30 * time.Second,
			QueueSize:         64,
		},
		Narrative: NarrativeConfig{
			RefreshPeriod: 5 * time.Minute,
			VolumeFloor:   50_000,
			MaxEvents:     20,
		},
		Thresholds: ThresholdsConfig{
			MaxPriceChangeH1:  50,
			MinPriceChangeH1:  0.1,
			MaxTop10Percent:   50,
			MaxTokenAgeHours:  24,
			BundledAgeHours:   1,
			BundledMinBuyers:  20,
			CloneSimilarity:   0.85,
			NewsCacheTTL:      30 * time.Minute,
			RelevanceCacheTTL: 30 * time.Minute,
		},
		Scoring: ScoringConfig{
			WeightSafety:    0.35,
			WeightTiming:    0.25,
			WeightMomentum:  0.20,
			WeightRelevance: 0.20,
			MinComposite:    70,
			MinIndividual:   40,
		},
		Cabal: CabalConfig{
			TopHolders:      5,
			FunderThreshold: 3,
			TraceTimeout:    5 * time.Second,
		},
		RateLimits: map[string]int{
			"dexscreener": 30,
			"rugcheck":    10,
			"goplus":      20,
			"solana-rpc":  20,
			"polymarket":  30,
			"news":        10,
			"llm":         60,
			"telegram":    30,
		},
		Alerts: AlertsConfig{
			MaxPerDay: 3,
			StateFile: "state.json",
		},
		LogLevel: "info",
	}
}

// Load reads a YAML config file over the defaults. Unset fields keep
// their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks programming invariants. Violations are configuration
// bugs and must abort startup.
func (c *Config) Validate() error {
	sum := c.Scoring.WeightSafety + c.Scoring.WeightTiming +
		c.Scoring.WeightMomentum + c.Scoring.WeightRelevance
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("scoring weights must sum to 1.0, got %.4f", sum)
	}
	if c.Alerts.MaxPerDay <= 0 {
		return fmt.Errorf("alerts.max_per_day must be positive, got %d", c.Alerts.MaxPerDay)
	}
	if c.Cabal.FunderThreshold < 2 {
		return fmt.Errorf("cabal.funder_threshold must be at least 2, got %d", c.Cabal.FunderThreshold)
	}
	if c.Cabal.TopHolders < c.Cabal.FunderThreshold {
		return fmt.Errorf("cabal.top_holders (%d) below funder_threshold (%d)",
			c.Cabal.TopHolders, c.Cabal.FunderThreshold)
	}
	if len(c.Stream.Programs) == 0 {
		return fmt.Errorf("stream.programs must list at least one program ID")
	}
	for name, rpm := range c.RateLimits {
		if rpm <= 0 {
			return fmt.Errorf("rate_limits.%s must be positive, got %d", name, rpm)
		}
	}
	return nil
}
