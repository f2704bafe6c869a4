package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"solana-trade-agent/internal/domain"
	"solana-trade-agent/internal/storage"
)

// TradeLedger implements storage.TradeLedger using PostgreSQL. Each record
// is one jsonb row; eviction beyond domain.LedgerCap happens in the same
// transaction as the append.
type TradeLedger struct {
	pool *Pool
}

// NewTradeLedger creates a new TradeLedger.
func NewTradeLedger(pool *Pool) *TradeLedger {
	return &TradeLedger{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeLedger = (*TradeLedger)(nil)

// Append adds records, evicting the oldest beyond domain.LedgerCap. A
// record whose trade id is already stored is skipped so that re-closing a
// position after a crash does not duplicate its ledger entry.
func (s *TradeLedger) Append(ctx context.Context, records ...domain.TradeRecord) error {
	if len(records) == 0 {
		return nil
	}
	for _, r := range records {
		if r.TradeID == "" {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, r := range records {
		raw, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encode trade record: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO trade_ledger (trade_id, doc, closed_at) VALUES ($1, $2, $3)
			ON CONFLICT (trade_id) DO NOTHING
		`, r.TradeID, raw, r.ClosedAt)
		if err != nil {
			return fmt.Errorf("insert trade record: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM trade_ledger
		WHERE seq NOT IN (SELECT seq FROM trade_ledger ORDER BY seq DESC LIMIT $1)
	`, domain.LedgerCap)
	if err != nil {
		return fmt.Errorf("evict oldest trades: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// List retrieves all retained records, oldest first.
func (s *TradeLedger) List(ctx context.Context) ([]domain.TradeRecord, error) {
	rows, err := s.pool.Query(ctx, `SELECT doc FROM trade_ledger ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("select trades: %w", err)
	}
	defer rows.Close()

	out := []domain.TradeRecord{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}
		var r domain.TradeRecord
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("decode trade record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}
	return out, nil
}
