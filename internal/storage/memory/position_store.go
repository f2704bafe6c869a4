package memory

import (
	"context"
	"sync"

	"solana-trade-agent/internal/domain"
	"solana-trade-agent/internal/storage"
)

// PositionStore is an in-memory implementation of storage.PositionStore.
type PositionStore struct {
	mu   sync.RWMutex
	data []domain.Position
}

// NewPositionStore creates a new in-memory position store.
func NewPositionStore() *PositionStore {
	return &PositionStore{}
}

// List retrieves all open positions.
func (s *PositionStore) List(_ context.Context) ([]domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Position, len(s.data))
	copy(result, s.data)
	return result, nil
}

// Replace overwrites the open-position set. Last writer wins.
func (s *PositionStore) Replace(_ context.Context, positions []domain.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make([]domain.Position, len(positions))
	copy(s.data, positions)
	return nil
}

var _ storage.PositionStore = (*PositionStore)(nil)
