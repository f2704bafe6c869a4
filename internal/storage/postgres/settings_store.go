package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"solana-trade-agent/internal/domain"
	"solana-trade-agent/internal/storage"
)

// SettingsStore implements storage.SettingsStore using PostgreSQL.
// The settings document lives in a single jsonb row.
type SettingsStore struct {
	pool *Pool
}

// NewSettingsStore creates a new SettingsStore.
func NewSettingsStore(pool *Pool) *SettingsStore {
	return &SettingsStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SettingsStore = (*SettingsStore)(nil)

// Get retrieves the settings document. An absent row yields the defaults.
func (s *SettingsStore) Get(ctx context.Context) (domain.Settings, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM agent_settings WHERE id = 1`).Scan(&raw)
	if isNotFoundError(err) {
		return domain.DefaultSettings(), nil
	}
	if err != nil {
		return domain.Settings{}, fmt.Errorf("select settings: %w", err)
	}

	var out domain.Settings
	if err := json.Unmarshal(raw, &out); err != nil {
		return domain.Settings{}, fmt.Errorf("decode settings document: %w", err)
	}
	return out, nil
}

// Put replaces the settings document.
func (s *SettingsStore) Put(ctx context.Context, settings domain.Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings document: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO agent_settings (id, doc, updated_at) VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()
	`, raw)
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}
