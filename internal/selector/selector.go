// Package selector ranks incoming pairs by momentum and truncates them to a
// bounded candidate set. The bound caps downstream safety and swap calls per
// tick, and with them worst-case tick latency.
package selector

import (
	"sort"

	"solana-trade-agent/internal/domain"
	"solana-trade-agent/internal/market"
)

// DefaultLimit bounds the candidate shortlist per tick.
const DefaultLimit = 5

// Select filters and ranks raw pairs into a candidate shortlist.
//
// Pairs missing a base-token address or price-change statistics are
// discarded. Remaining pairs are ranked descending by m5+h1 change with a
// stable tie-break on input order, then truncated to limit. Select performs
// no I/O.
func Select(pairs []market.Pair, limit int) []domain.Candidate {
	if limit <= 0 {
		limit = DefaultLimit
	}

	candidates := make([]domain.Candidate, 0, len(pairs))
	for _, p := range pairs {
		if p.BaseToken.Address == "" || p.PriceChange == nil {
			continue
		}
		candidates = append(candidates, domain.Candidate{
			Mint:        p.BaseToken.Address,
			Symbol:      p.BaseToken.Symbol,
			ChangeM5Pct: p.PriceChange.M5,
			ChangeH1Pct: p.PriceChange.H1,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Momentum() > candidates[j].Momentum()
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}
