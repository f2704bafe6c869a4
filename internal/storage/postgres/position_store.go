package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"solana-trade-agent/internal/domain"
	"solana-trade-agent/internal/storage"
)

// PositionStore implements storage.PositionStore using PostgreSQL.
// The full open-position set lives in a single jsonb row; callers perform
// read-modify-write and the last writer wins.
type PositionStore struct {
	pool *Pool
}

// NewPositionStore creates a new PositionStore.
func NewPositionStore(pool *Pool) *PositionStore {
	return &PositionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PositionStore = (*PositionStore)(nil)

// List retrieves all open positions. An absent row yields an empty slice.
func (s *PositionStore) List(ctx context.Context) ([]domain.Position, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM open_positions WHERE id = 1`).Scan(&raw)
	if isNotFoundError(err) {
		return []domain.Position{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select positions: %w", err)
	}

	var out []domain.Position
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode position document: %w", err)
	}
	if out == nil {
		out = []domain.Position{}
	}
	return out, nil
}

// Replace overwrites the open-position set.
func (s *PositionStore) Replace(ctx context.Context, positions []domain.Position) error {
	if positions == nil {
		positions = []domain.Position{}
	}
	raw, err := json.Marshal(positions)
	if err != nil {
		return fmt.Errorf("encode position document: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO open_positions (id, doc, updated_at) VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()
	`, raw)
	if err != nil {
		return fmt.Errorf("upsert positions: %w", err)
	}
	return nil
}
