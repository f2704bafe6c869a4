// Package stats computes PnL window summaries over the trade ledger.
package stats

import (
	"time"

	"solana-trade-agent/internal/domain"
)

// RecentTradeLimit caps the trades echoed back in a summary.
const RecentTradeLimit = 50

// Rolling window lengths measured against trade close time.
const (
	window24h = 24 * time.Hour
	window7d  = 7 * 24 * time.Hour
	window30d = 30 * 24 * time.Hour
)

// Summary is the aggregate view served over the stats endpoint.
type Summary struct {
	Count  int                  `json:"count"`
	PnL24h float64              `json:"pnl24h"`
	PnL7d  float64              `json:"pnl7d"`
	PnL30d float64              `json:"pnl30d"`
	Trades []domain.TradeRecord `json:"trades"`
}

// Compute builds a Summary from ledger records. Windows are measured against
// ClosedAt relative to now; records with ClosedAt in the future still count
// toward every window. Trades holds the most recent RecentTradeLimit records,
// newest first.
func Compute(records []domain.TradeRecord, now time.Time) Summary {
	nowMs := now.UnixMilli()

	s := Summary{
		Count:  len(records),
		Trades: []domain.TradeRecord{},
	}

	for _, r := range records {
		age := time.Duration(nowMs-r.ClosedAt) * time.Millisecond
		if age <= window24h {
			s.PnL24h += r.PnLUSD
		}
		if age <= window7d {
			s.PnL7d += r.PnLUSD
		}
		if age <= window30d {
			s.PnL30d += r.PnLUSD
		}
	}

	// Ledger is oldest-first; serve the tail newest-first.
	start := len(records) - RecentTradeLimit
	if start < 0 {
		start = 0
	}
	for i := len(records) - 1; i >= start; i-- {
		s.Trades = append(s.Trades, records[i])
	}

	return s
}
