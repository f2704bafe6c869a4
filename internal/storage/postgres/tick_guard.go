package postgres

import (
	"context"
	"fmt"
	"time"

	"solana-trade-agent/internal/storage"
)

// TickGuard implements storage.TickGuard using PostgreSQL. The lease lives
// in a single row; the conditional upsert makes acquisition atomic across
// competing agent instances.
type TickGuard struct {
	pool *Pool
}

// NewTickGuard creates a new TickGuard.
func NewTickGuard(pool *Pool) *TickGuard {
	return &TickGuard{pool: pool}
}

// Compile-time interface check.
var _ storage.TickGuard = (*TickGuard)(nil)

// Acquire hands out the next tick sequence, or ok=false while a live lease
// exists. An expired lease is reclaimed.
func (g *TickGuard) Acquire(ctx context.Context, now time.Time, ttl time.Duration) (int64, bool, error) {
	var seq int64
	err := g.pool.QueryRow(ctx, `
		INSERT INTO tick_lease (id, seq, expires_at) VALUES (1, 1, $1)
		ON CONFLICT (id) DO UPDATE
			SET seq = tick_lease.seq + 1, expires_at = $1
			WHERE tick_lease.expires_at <= $2
		RETURNING seq
	`, now.Add(ttl), now).Scan(&seq)
	if isNotFoundError(err) {
		return 0, false, nil // live lease held elsewhere
	}
	if err != nil {
		return 0, false, fmt.Errorf("acquire tick lease: %w", err)
	}
	return seq, true, nil
}

// Release ends the lease identified by seq.
func (g *TickGuard) Release(ctx context.Context, seq int64) error {
	tag, err := g.pool.Exec(ctx, `
		UPDATE tick_lease SET expires_at = to_timestamp(0)
		WHERE id = 1 AND seq = $1 AND expires_at > to_timestamp(0)
	`, seq)
	if err != nil {
		return fmt.Errorf("release tick lease: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrLeaseNotHeld
	}
	return nil
}
