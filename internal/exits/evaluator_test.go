package exits

import (
	"testing"
	"time"

	"solana-trade-agent/internal/domain"
)

func position(mint string, openedAt time.Time, sizeUSD float64, stopMinutes int) domain.Position {
	return domain.Position{
		PositionID:      "pos-" + mint,
		Mint:            mint,
		Symbol:          "SYM",
		OpenedAt:        openedAt.UnixMilli(),
		SizeUSD:         sizeUSD,
		TimeStopMinutes: stopMinutes,
		Phase:           domain.PhaseConfirmed,
	}
}

func TestEvaluate_TimeStopBoundary(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	eval := NewEvaluator(0, nil)

	positions := []domain.Position{
		position("mintOld", now.Add(-61*time.Minute), 10, 60),
		position("mintYoung", now.Add(-59*time.Minute), 10, 60),
	}

	open, closed := eval.Evaluate(positions, now)

	if len(closed) != 1 || closed[0].Mint != "mintOld" {
		t.Fatalf("expected only mintOld closed, got %+v", closed)
	}
	if len(open) != 1 || open[0].Mint != "mintYoung" {
		t.Fatalf("expected mintYoung still open, got %+v", open)
	}
}

func TestEvaluate_OneRecordPerCloseWithNegativePnL(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	eval := NewEvaluator(0.02, nil)

	_, closed := eval.Evaluate([]domain.Position{
		position("mintA", now.Add(-2*time.Hour), 50, 60),
	}, now)

	if len(closed) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(closed))
	}
	rec := closed[0]
	if rec.PnLUSD >= 0 {
		t.Errorf("expected negative pnl, got %f", rec.PnLUSD)
	}
	if rec.PnLUSD != -1.0 {
		t.Errorf("expected pnl -1.00 (2%% of 50), got %f", rec.PnLUSD)
	}
	if rec.TradeID == "" {
		t.Error("expected deterministic trade id")
	}
	if rec.ClosedAt != now.UnixMilli() {
		t.Errorf("expected closedAt %d, got %d", now.UnixMilli(), rec.ClosedAt)
	}
}

func TestEvaluate_SameTradeIDOnRecloseAtLaterTick(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	eval := NewEvaluator(0.02, nil)
	expired := position("mintA", now.Add(-2*time.Hour), 50, 60)

	_, first := eval.Evaluate([]domain.Position{expired}, now)
	_, second := eval.Evaluate([]domain.Position{expired}, now.Add(5*time.Minute))

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected one record per close, got %d and %d", len(first), len(second))
	}
	// A position closed again on a later tick keeps its trade id, so the
	// ledger can recognize the record it already wrote.
	if first[0].TradeID != second[0].TradeID {
		t.Errorf("trade ids differ across re-close: %s vs %s", first[0].TradeID, second[0].TradeID)
	}
}

func TestEvaluate_DefaultTimeStop(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	eval := NewEvaluator(0, nil)

	// stopMinutes 0 means the default 60 applies.
	_, closed := eval.Evaluate([]domain.Position{
		position("mintA", now.Add(-90*time.Minute), 10, 0),
	}, now)

	if len(closed) != 1 {
		t.Errorf("expected default time-stop of %d minutes applied", domain.DefaultTimeStopMinutes)
	}
}

func TestEvaluate_MalformedPositionDropped(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	eval := NewEvaluator(0, nil)

	malformed := domain.Position{PositionID: "pos-bad", Mint: "mintBad", SizeUSD: 10}
	open, closed := eval.Evaluate([]domain.Position{
		malformed,
		position("mintGood", now.Add(-1*time.Minute), 10, 60),
	}, now)

	if len(closed) != 0 {
		t.Errorf("malformed position must not produce a record, got %+v", closed)
	}
	if len(open) != 1 || open[0].Mint != "mintGood" {
		t.Errorf("expected malformed position dropped, healthy one kept, got %+v", open)
	}
}
