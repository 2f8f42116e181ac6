package shield

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"tokenradar/internal/config"
	"tokenradar/internal/domain"
	"tokenradar/internal/solana"
	"tokenradar/internal/state"
)

// CabalTier traces where the top holders' wallets were funded from.
// When most of them share a single funding source, the "community" is
// one operator holding several wallets.
//
// Traces are expensive (two RPC round trips per holder), so a mint is
// traced at most once; the state store remembers completed traces.
type CabalTier struct {
	rpc   solana.RPCClient
	store *state.Store
	cfg   config.CabalConfig
	log   zerolog.Logger
}

// NewCabalTier creates the funding-graph tier.
func NewCabalTier(rpc solana.RPCClient, store *state.Store, cfg config.CabalConfig, log zerolog.Logger) *CabalTier {
	return &CabalTier{
		rpc:   rpc,
		store: store,
		cfg:   cfg,
		log:   log.With().Str("component", "cabal").Logger(),
	}
}

func (t *CabalTier) Name() string { return TierCabal }

func (t *CabalTier) Evaluate(ctx context.Context, cand *domain.Candidate, _ *domain.MarketSnapshot) domain.TierVerdict {
	if t.store.WasTraced(cand.Mint) {
		return domain.TierVerdict{
			Tier:   TierCabal,
			Level:  domain.LevelOK,
			Reason: "funding graph already traced",
		}
	}

	holders, err := t.rpc.GetTokenLargestAccounts(ctx, cand.Mint)
	if err != nil {
		return domain.Unknown(TierCabal, fmt.Sprintf("holder lookup failed: %v", err))
	}
	if len(holders) == 0 {
		return domain.Unknown(TierCabal, "no holder accounts returned")
	}

	sort.Slice(holders, func(i, j int) bool { return holders[i].Amount > holders[j].Amount })
	if len(holders) > t.cfg.TopHolders {
		holders = holders[:t.cfg.TopHolders]
	}

	funders := make(map[string]int)
	traced := 0
	for _, h := range holders {
		funder, err := t.traceFunder(ctx, h.Address)
		if err != nil {
			t.log.Debug().Str("holder", h.Address).Err(err).Msg("funding trace failed")
			continue
		}
		traced++
		funders[funder]++
	}

	if traced == 0 {
		return domain.Unknown(TierCabal, "all funding traces failed")
	}

	var topFunder string
	var shared int
	for funder, n := range funders {
		if n > shared {
			topFunder, shared = funder, n
		}
	}

	if err := t.store.RecordTraced(cand.Mint); err != nil {
		t.log.Warn().Str("mint", cand.Mint).Err(err).Msg("persist traced marker")
	}

	if shared >= t.cfg.FunderThreshold {
		return domain.TierVerdict{
			Tier:  TierCabal,
			Level: domain.LevelDanger,
			Reason: fmt.Sprintf("%d of %d traced holders funded by %s", shared,
				traced, topFunder),
		}
	}
	return domain.TierVerdict{
		Tier:   TierCabal,
		Level:  domain.LevelOK,
		Reason: fmt.Sprintf("no shared funding source among %d traced holders", traced),
	}
}

// traceFunder resolves the account that paid for a holder wallet's
// earliest transaction, i.e. whoever created and funded it.
func (t *CabalTier) traceFunder(ctx context.Context, holder string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.cfg.TraceTimeout)
	defer cancel()

	sigs, err := t.rpc.GetSignaturesForAddress(ctx, holder, &solana.SignaturesOpts{Limit: 1000})
	if err != nil {
		return "", fmt.Errorf("signatures: %w", err)
	}
	if len(sigs) == 0 {
		return "", fmt.Errorf("no transaction history")
	}

	// Signatures arrive newest first; the last one is the account's birth.
	earliest := sigs[len(sigs)-1]
	tx, err := t.rpc.GetTransaction(ctx, earliest.Signature)
	if err != nil {
		return "", fmt.Errorf("transaction %s: %w", earliest.Signature, err)
	}
	if tx == nil {
		// Unknown to the node, likely pruned from its ledger history.
		return "", fmt.Errorf("transaction %s not found", earliest.Signature)
	}
	if tx.Message == nil || len(tx.Message.AccountKeys) == 0 {
		return "", fmt.Errorf("transaction %s has no account keys", earliest.Signature)
	}

	// The fee payer of the first transaction is the funding wallet.
	return tx.Message.AccountKeys[0], nil
}
