package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenradar/internal/domain"
	"tokenradar/internal/journal"
	"tokenradar/internal/ratelimit"
)

func testGovernor() *ratelimit.Governor {
	return ratelimit.NewGovernor(nil, 60_000)
}

func testAlert() *journal.Alert {
	return &journal.Alert{
		Mint:      "mint123",
		Name:      "Fed Cut",
		Symbol:    "FEDCUT",
		Narrative: "FED",
		Composite: 81,
		Safety:    90,
		Timing:    80,
		Momentum:  72,
		Relevance: 85,
		Phase:     "EARLY",
		SentAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNotifySendsMessage(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottok-123/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	tg := NewTelegram("tok-123", "chat-9", testGovernor(), zerolog.Nop(), WithBaseURL(server.URL))
	snap := &domain.MarketSnapshot{PriceUSD: 0.0012, LiquidityUSD: 80_000, URL: "https://dexscreener.com/solana/deep"}

	require.NoError(t, tg.Notify(context.Background(), testAlert(), snap, nil))

	assert.Equal(t, "chat-9", got["chat_id"])
	text, _ := got["text"].(string)
	assert.Contains(t, text, "Fed Cut")
	assert.Contains(t, text, "mint123")
	assert.Contains(t, text, "81")
}

func TestNotifyAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	tg := NewTelegram("tok", "chat", testGovernor(), zerolog.Nop(), WithBaseURL(server.URL))
	err := tg.Notify(context.Background(), testAlert(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestNotifyDryRunSkipsNetwork(t *testing.T) {
	tg := NewTelegram("tok", "chat", testGovernor(), zerolog.Nop(),
		WithBaseURL("http://unreachable.invalid"), WithDryRun(true))

	assert.NoError(t, tg.Notify(context.Background(), testAlert(), nil, nil))
}

func TestFormatAlertIncludesWarnings(t *testing.T) {
	safety := &domain.SafetyResult{WarningFlags: []string{"social: no website or social links published"}}
	text := FormatAlert(testAlert(), nil, safety)

	assert.Contains(t, text, "Warnings")
	assert.Contains(t, text, "no website")
	assert.Contains(t, text, "safety 90")
}
