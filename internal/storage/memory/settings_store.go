package memory

import (
	"context"
	"sync"

	"solana-trade-agent/internal/domain"
	"solana-trade-agent/internal/storage"
)

// SettingsStore is an in-memory implementation of storage.SettingsStore.
type SettingsStore struct {
	mu   sync.RWMutex
	data *domain.Settings
}

// NewSettingsStore creates a new in-memory settings store.
func NewSettingsStore() *SettingsStore {
	return &SettingsStore{}
}

// Get retrieves the settings document, or defaults when none stored.
func (s *SettingsStore) Get(_ context.Context) (domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.data == nil {
		return domain.DefaultSettings(), nil
	}
	return *s.data, nil
}

// Put replaces the settings document.
func (s *SettingsStore) Put(_ context.Context, settings domain.Settings) error {
	if !settings.RiskMode.Valid() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := settings
	s.data = &copy
	return nil
}

var _ storage.SettingsStore = (*SettingsStore)(nil)
