package storage

import (
	"context"
	"time"

	"solana-trade-agent/internal/domain"
)

// SettingsStore provides access to the agent settings document.
type SettingsStore interface {
	// Get retrieves the settings document. An absent document yields
	// domain.DefaultSettings with no error.
	Get(ctx context.Context) (domain.Settings, error)

	// Put replaces the settings document.
	Put(ctx context.Context, s domain.Settings) error
}

// PositionStore provides access to the open-position set.
//
// Both reads and writes operate on the full document: callers perform
// read-modify-write and the last writer wins. Writes within a tick must be
// serialized by the caller to avoid lost updates.
type PositionStore interface {
	// List retrieves all open positions. An absent document yields an
	// empty slice with no error.
	List(ctx context.Context) ([]domain.Position, error)

	// Replace overwrites the open-position set.
	Replace(ctx context.Context, positions []domain.Position) error
}

// TradeLedger provides access to the append-only trade history.
type TradeLedger interface {
	// Append adds records to the ledger, evicting the oldest entries when
	// the ledger exceeds domain.LedgerCap. Records are immutable once
	// written.
	Append(ctx context.Context, records ...domain.TradeRecord) error

	// List retrieves all retained records, ordered oldest first.
	List(ctx context.Context) ([]domain.TradeRecord, error)
}

// TickGuard serializes tick invocations across overlapping triggers.
//
// Acquire hands out a monotonically increasing tick sequence. A second
// Acquire while a lease is live (not released and not past its TTL) reports
// ok=false; the caller must skip the tick. The TTL bounds the lease of a
// crashed invocation.
type TickGuard interface {
	Acquire(ctx context.Context, now time.Time, ttl time.Duration) (seq int64, ok bool, err error)
	Release(ctx context.Context, seq int64) error
}
