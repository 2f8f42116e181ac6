// Package main runs the token radar daemon: it watches the prediction
// market feed for narratives, the Solana log stream for newly launched
// tokens riding them, and alerts on the few that survive verification.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"tokenradar/internal/brain"
	"tokenradar/internal/config"
	"tokenradar/internal/journal"
	"tokenradar/internal/journal/migrations"
	"tokenradar/internal/market"
	"tokenradar/internal/momentum"
	"tokenradar/internal/narrative"
	"tokenradar/internal/notify"
	"tokenradar/internal/observability"
	"tokenradar/internal/orchestrator"
	"tokenradar/internal/ratelimit"
	"tokenradar/internal/scoring"
	"tokenradar/internal/shield"
	"tokenradar/internal/solana"
	"tokenradar/internal/state"
	"tokenradar/internal/stream"
)

const fallbackRPM = 30

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (defaults apply when empty)")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address")
	workers := flag.Int("workers", 4, "Concurrent pipeline workers")
	dryRun := flag.Bool("dry-run", false, "Log alerts instead of sending them")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fallback := zerolog.New(os.Stderr)
			fallback.Fatal().Err(err).Msg("load config")
		}
		cfg = loaded
	}
	if *dryRun {
		cfg.DryRun = true
	}

	logger := setupLogger(cfg.LogLevel)
	logger.Info().
		Strs("programs", cfg.Stream.Programs).
		Bool("dry_run", cfg.DryRun).
		Msg("starting radar")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		cancel()

		select {
		case <-sigCh:
			logger.Warn().Msg("second signal, forcing exit")
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Warn().Msg("graceful shutdown timed out, forcing exit")
			os.Exit(1)
		}
	}()

	governor := ratelimit.NewGovernor(cfg.RateLimits, fallbackRPM)

	store, err := state.Open(cfg.Alerts.StateFile, cfg.Alerts.MaxPerDay, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open state store")
	}

	alerts, candLog := openJournal(ctx, cfg, logger)

	rpc := solana.NewHTTPClient(cfg.Endpoints.SolanaRPC, solana.WithRateLimit(governor))

	wsCfg := solana.DefaultWSConfig()
	wsCfg.ReconnectDelay = cfg.Stream.ReconnectDelay
	wsCfg.MaxReconnectDelay = cfg.Stream.MaxReconnectDelay
	wsCfg.PingInterval = cfg.Stream.PingInterval
	wsCfg.Logger = logger
	ws, err := solana.NewWSClient(ctx, cfg.Endpoints.SolanaWS, &wsCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect log stream")
	}
	defer ws.Close()

	matcher := stream.NewMatcher()
	watcher := stream.NewWatcher(stream.Options{
		WS:        ws,
		Programs:  cfg.Stream.Programs,
		Matcher:   matcher,
		QueueSize: cfg.Stream.QueueSize,
		Logger:    logger,
	})

	refresher := narrative.NewRefresher(
		narrative.NewClient(cfg.Endpoints.PolymarketAPI, governor,
			narrative.WithMaxEvents(cfg.Narrative.MaxEvents)),
		matcher, cfg.Narrative, logger,
	)

	verifier := shield.New(logger,
		shield.NewRugcheckTier(cfg.Endpoints.RugcheckAPI, governor),
		shield.NewHoldersTier(rpc, cfg.Thresholds.MaxTop10Percent),
		shield.NewHoneypotTier(),
		shield.NewBundledTier(cfg.Thresholds),
		shield.NewCabalTier(rpc, store, cfg.Cabal, logger),
		shield.NewGoPlusTier(cfg.Endpoints.GoPlusAPI, governor),
		shield.NewCloneTier(cfg.Endpoints.DexScreenerAPI, governor, cfg.Thresholds.CloneSimilarity),
		shield.NewSocialTier(),
		shield.NewNewsTier(cfg.Endpoints.NewsFeedURL, governor, cfg.Thresholds.NewsCacheTTL),
	)

	orch := orchestrator.New(orchestrator.Options{
		Market:     market.NewClient(cfg.Endpoints.DexScreenerAPI, governor),
		Shield:     verifier,
		Momentum:   momentum.NewClassifier(cfg.Thresholds),
		Scorer:     scoring.New(cfg.Scoring, cfg.Thresholds.MaxPriceChangeH1),
		Assessor:   brain.NewClient(cfg.Endpoints.AnthropicKey, governor, cfg.Thresholds.RelevanceCacheTTL, logger),
		Notifier:   newNotifier(cfg, governor, logger),
		State:      store,
		Alerts:     alerts,
		Candidates: candLog,
		Thresholds: cfg.Thresholds,
		Workers:    *workers,
		DryRun:     cfg.DryRun,
		Logger:     logger,
	})

	go serveMetrics(*metricsAddr, logger)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		refresher.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("stream watcher stopped")
			cancel()
		}
	}()
	go func() {
		defer wg.Done()
		orch.Run(ctx, watcher.Candidates())
	}()
	wg.Wait()

	logger.Info().Msg("shutdown complete")
}

func setupLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}

// openJournal builds the alert and candidate sinks, falling back to
// in-memory implementations for any DSN left empty.
func openJournal(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (journal.AlertStore, journal.CandidateLog) {
	var alerts journal.AlertStore = journal.NewMemoryAlertStore()
	if dsn := cfg.Journal.PostgresDSN; dsn != "" {
		pool, err := journal.NewPool(ctx, dsn)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect postgres")
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("migrate postgres")
		}
		alerts = journal.NewPostgresAlertStore(pool)
	}

	var candLog journal.CandidateLog = journal.NewMemoryCandidateLog()
	if dsn := cfg.Journal.ClickHouseDSN; dsn != "" {
		conn, err := journal.NewConn(ctx, dsn)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect clickhouse")
		}
		if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
			logger.Fatal().Err(err).Msg("migrate clickhouse")
		}
		candLog = journal.NewClickHouseCandidateLog(conn)
	}

	return alerts, candLog
}

// newNotifier forces dry-run mode when no Telegram credentials are set.
func newNotifier(cfg *config.Config, governor *ratelimit.Governor, logger zerolog.Logger) notify.Notifier {
	dry := cfg.DryRun || cfg.Endpoints.TelegramToken == "" || cfg.Endpoints.TelegramChatID == ""
	if dry && !cfg.DryRun {
		logger.Warn().Msg("no telegram credentials, alerts will only be logged")
	}
	return notify.NewTelegram(cfg.Endpoints.TelegramToken, cfg.Endpoints.TelegramChatID,
		governor, logger, notify.WithDryRun(dry))
}

func serveMetrics(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("metrics server stopped")
	}
}
