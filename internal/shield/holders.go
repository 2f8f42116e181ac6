package shield

import (
	"context"
	"fmt"
	"sort"

	"tokenradar/internal/domain"
	"tokenradar/internal/solana"
)

// HoldersTier measures supply concentration across the largest token
// accounts. When the top ten hold more than the configured share, a
// few wallets can drain the pool at will.
type HoldersTier struct {
	rpc        solana.RPCClient
	maxPercent float64
}

// NewHoldersTier creates the holder-concentration tier.
func NewHoldersTier(rpc solana.RPCClient, maxPercent float64) *HoldersTier {
	return &HoldersTier{rpc: rpc, maxPercent: maxPercent}
}

func (t *HoldersTier) Name() string { return TierHolders }

func (t *HoldersTier) Evaluate(ctx context.Context, cand *domain.Candidate, _ *domain.MarketSnapshot) domain.TierVerdict {
	holders, err := t.rpc.GetTokenLargestAccounts(ctx, cand.Mint)
	if err != nil {
		return domain.Unknown(TierHolders, fmt.Sprintf("holder lookup failed: %v", err))
	}
	if len(holders) == 0 {
		return domain.Unknown(TierHolders, "no holder accounts returned")
	}

	sort.Slice(holders, func(i, j int) bool { return holders[i].Amount > holders[j].Amount })

	var total, top10 float64
	for i, h := range holders {
		total += h.Amount
		if i < 10 {
			top10 += h.Amount
		}
	}
	if total <= 0 {
		return domain.Unknown(TierHolders, "zero reported balances")
	}

	pct := top10 / total * 100
	if pct > t.maxPercent {
		return domain.TierVerdict{
			Tier:   TierHolders,
			Level:  domain.LevelDanger,
			Reason: fmt.Sprintf("top 10 holders control %.1f%% of tracked supply", pct),
		}
	}
	return domain.TierVerdict{
		Tier:   TierHolders,
		Level:  domain.LevelOK,
		Reason: fmt.Sprintf("top 10 holders control %.1f%% of tracked supply", pct),
	}
}
