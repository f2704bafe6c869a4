package memory

import (
	"context"
	"sync"

	"solana-trade-agent/internal/domain"
	"solana-trade-agent/internal/storage"
)

// TradeLedger is an in-memory implementation of storage.TradeLedger.
type TradeLedger struct {
	mu   sync.RWMutex
	data []domain.TradeRecord // oldest first
}

// NewTradeLedger creates a new in-memory trade ledger.
func NewTradeLedger() *TradeLedger {
	return &TradeLedger{}
}

// Append adds records, evicting the oldest beyond domain.LedgerCap.
// A record whose trade id is already retained is skipped: a crash between
// the ledger write and the position write re-closes the same position on
// the next tick, and that re-close must not duplicate the record.
func (s *TradeLedger) Append(_ context.Context, records ...domain.TradeRecord) error {
	for _, r := range records {
		if r.TradeID == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(s.data))
	for _, r := range s.data {
		seen[r.TradeID] = true
	}
	for _, r := range records {
		if seen[r.TradeID] {
			continue
		}
		seen[r.TradeID] = true
		s.data = append(s.data, r)
	}

	if excess := len(s.data) - domain.LedgerCap; excess > 0 {
		s.data = s.data[excess:]
	}
	return nil
}

// List retrieves all retained records, oldest first.
func (s *TradeLedger) List(_ context.Context) ([]domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.TradeRecord, len(s.data))
	copy(result, s.data)
	return result, nil
}

var _ storage.TradeLedger = (*TradeLedger)(nil)
