// Package exits scans open positions each tick and force-closes any past its
// time-stop, converting position state changes into ledger entries.
package exits

import (
	"io"
	"log"
	"time"

	"solana-trade-agent/internal/domain"
	"solana-trade-agent/internal/idhash"
)

// DefaultDecayFraction is the fixed adverse slippage fraction applied to a
// closed position. Realized loss is modeled as a constant decay of the entry
// size rather than a live price lookup, keeping the scan O(1) per position
// with no extra market calls.
const DefaultDecayFraction = 0.02

// Evaluator applies the time-stop policy to the open-position set.
type Evaluator struct {
	decayFraction float64
	logger        *log.Logger
}

// NewEvaluator creates an Evaluator. A non-positive decayFraction falls back
// to DefaultDecayFraction; a nil logger discards diagnostics.
func NewEvaluator(decayFraction float64, logger *log.Logger) *Evaluator {
	if decayFraction <= 0 {
		decayFraction = DefaultDecayFraction
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Evaluator{decayFraction: decayFraction, logger: logger}
}

// Evaluate splits positions into those still open and the trade records of
// those past their time-stop. A position closes when now-openedAt exceeds
// its time-stop (default domain.DefaultTimeStopMinutes). Every close yields
// exactly one ledger entry; there are no partial closes. A malformed
// position with no open timestamp is dropped with a diagnostic and produces
// no record.
func (e *Evaluator) Evaluate(positions []domain.Position, now time.Time) ([]domain.Position, []domain.TradeRecord) {
	nowMs := now.UnixMilli()

	var open []domain.Position
	var closed []domain.TradeRecord

	for _, p := range positions {
		if p.OpenedAt <= 0 {
			e.logger.Printf("dropping malformed position %s (%s): no open timestamp", p.PositionID, p.Mint)
			continue
		}

		stopMinutes := p.TimeStopMinutes
		if stopMinutes <= 0 {
			stopMinutes = domain.DefaultTimeStopMinutes
		}

		age := nowMs - p.OpenedAt
		if age <= int64(stopMinutes)*int64(time.Minute/time.Millisecond) {
			open = append(open, p)
			continue
		}

		loss := p.SizeUSD * e.decayFraction
		if loss < 0 {
			loss = -loss
		}
		closed = append(closed, domain.TradeRecord{
			TradeID:  idhash.ComputeTradeID(p.Mint, p.OpenedAt),
			Mint:     p.Mint,
			Symbol:   p.Symbol,
			SizeUSD:  p.SizeUSD,
			OpenedAt: p.OpenedAt,
			ClosedAt: nowMs,
			PnLUSD:   -loss,
		})
	}

	return open, closed
}
