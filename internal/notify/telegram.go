// Package notify delivers alerts to the operator. Delivery failures
// never undo an alert: the quota slot is spent when the alert is
// recorded, not when the message lands.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tokenradar/internal/domain"
	"tokenradar/internal/journal"
	"tokenradar/internal/observability"
	"tokenradar/internal/ratelimit"
)

const telegramService = "telegram"

// Notifier delivers one alert message.
type Notifier interface {
	Notify(ctx context.Context, a *journal.Alert, snap *domain.MarketSnapshot, safety *domain.SafetyResult) error
}

// Telegram sends alerts through the Bot API. With DryRun set it logs
// the rendered message instead of calling out.
type Telegram struct {
	baseURL  string
	token    string
	chatID   string
	dryRun   bool
	http     *http.Client
	governor *ratelimit.Governor
	log      zerolog.Logger
}

// Option configures Telegram.
type Option func(*Telegram)

// WithBaseURL overrides the Bot API origin. For tests.
func WithBaseURL(u string) Option {
	return func(t *Telegram) {
		t.baseURL = u
	}
}

// WithDryRun makes the notifier log instead of send.
func WithDryRun(dry bool) Option {
	return func(t *Telegram) {
		t.dryRun = dry
	}
}

// NewTelegram creates a Telegram notifier.
func NewTelegram(token, chatID string, governor *ratelimit.Governor, log zerolog.Logger, opts ...Option) *Telegram {
	t := &Telegram{
		baseURL:  "https://api.telegram.org",
		token:    token,
		chatID:   chatID,
		http:     &http.Client{Timeout: 10 * time.Second},
		governor: governor,
		log:      log.With().Str("component", "notify").Logger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

var _ Notifier = (*Telegram)(nil)

// Notify renders and sends the alert message.
func (t *Telegram) Notify(ctx context.Context, a *journal.Alert, snap *domain.MarketSnapshot, safety *domain.SafetyResult) error {
	text := FormatAlert(a, snap, safety)

	if t.dryRun {
		t.log.Info().Str("mint", a.Mint).Msg("dry run, alert not sent")
		fmt.Println(text)
		return nil
	}

	if err := t.governor.Wait(ctx, telegramService); err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]any{
		"chat_id":                  t.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := t.http.Do(req)
	observability.RecordUpstreamCall(telegramService, time.Since(start).Seconds(), err)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram status %d", resp.StatusCode)
	}
	return nil
}

// FormatAlert renders the alert text with the full score breakdown.
func FormatAlert(a *journal.Alert, snap *domain.MarketSnapshot, safety *domain.SafetyResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🚨 <b>%s (%s)</b>\n", a.Name, a.Symbol)
	fmt.Fprintf(&b, "Narrative: %s\n", a.Narrative)
	fmt.Fprintf(&b, "Phase: %s\n\n", a.Phase)

	fmt.Fprintf(&b, "Composite: <b>%.0f</b>\n", a.Composite)
	fmt.Fprintf(&b, "  safety %.0f | timing %.0f | momentum %.0f | relevance %.0f\n\n",
		a.Safety, a.Timing, a.Momentum, a.Relevance)

	if snap != nil {
		fmt.Fprintf(&b, "Price: $%.6f (%+.1f%% 1h)\n", snap.PriceUSD, snap.PriceChangeH1)
		fmt.Fprintf(&b, "Liquidity: $%.0f | 24h volume: $%.0f\n", snap.LiquidityUSD, snap.VolumeH24)
		if snap.URL != "" {
			fmt.Fprintf(&b, "%s\n", snap.URL)
		}
	}

	if safety != nil && len(safety.WarningFlags) > 0 {
		b.WriteString("\n⚠️ Warnings:\n")
		for _, w := range safety.WarningFlags {
			fmt.Fprintf(&b, "  • %s\n", w)
		}
	}

	fmt.Fprintf(&b, "\n<code>%s</code>", a.Mint)
	return b.String()
}
