package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"solana-trade-agent/internal/domain"
	"solana-trade-agent/internal/storage"
)

func TestTradeLedger_AppendAndList(t *testing.T) {
	ledger := NewTradeLedger()
	ctx := context.Background()

	err := ledger.Append(ctx, domain.TradeRecord{
		TradeID:  "t1",
		Mint:     "mintA",
		Symbol:   "AAA",
		SizeUSD:  5,
		OpenedAt: 1000,
		ClosedAt: 2000,
		PnLUSD:   -0.1,
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	records, err := ledger.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].PnLUSD != -0.1 {
		t.Errorf("PnLUSD mismatch: got %f", records[0].PnLUSD)
	}
}

func TestTradeLedger_SkipsAlreadyRecordedID(t *testing.T) {
	ledger := NewTradeLedger()
	ctx := context.Background()

	first := domain.TradeRecord{TradeID: "t1", Mint: "mintA", ClosedAt: 2000, PnLUSD: -0.1}
	if err := ledger.Append(ctx, first); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	// Same trade id with a different close time, as produced when a
	// position is closed again after a crash lost the position write.
	replay := first
	replay.ClosedAt = 3000
	if err := ledger.Append(ctx, replay); err != nil {
		t.Fatalf("Replayed Append failed: %v", err)
	}

	records, err := ledger.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record after replay, got %d", len(records))
	}
	if records[0].ClosedAt != 2000 {
		t.Errorf("Expected original record retained, got ClosedAt %d", records[0].ClosedAt)
	}

	// Duplicates inside a single batch collapse too
	if err := ledger.Append(ctx, domain.TradeRecord{TradeID: "t2", Mint: "mintB"}, domain.TradeRecord{TradeID: "t2", Mint: "mintB"}); err != nil {
		t.Fatalf("Batch Append failed: %v", err)
	}
	records, err = ledger.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
}

func TestTradeLedger_InvalidInput(t *testing.T) {
	ledger := NewTradeLedger()

	err := ledger.Append(context.Background(), domain.TradeRecord{Mint: "mintA"})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty trade_id, got %v", err)
	}
}

func TestTradeLedger_CapEvictsOldestFirst(t *testing.T) {
	ledger := NewTradeLedger()
	ctx := context.Background()

	for i := 0; i < domain.LedgerCap+1; i++ {
		err := ledger.Append(ctx, domain.TradeRecord{
			TradeID:  fmt.Sprintf("t%d", i),
			Mint:     "mintA",
			ClosedAt: int64(i),
		})
		if err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}

	records, err := ledger.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != domain.LedgerCap {
		t.Fatalf("Expected ledger capped at %d, got %d", domain.LedgerCap, len(records))
	}
	if records[0].TradeID != "t1" {
		t.Errorf("Expected oldest record t0 evicted, head is %s", records[0].TradeID)
	}
	if records[len(records)-1].TradeID != fmt.Sprintf("t%d", domain.LedgerCap) {
		t.Errorf("Expected newest record retained, tail is %s", records[len(records)-1].TradeID)
	}
}
