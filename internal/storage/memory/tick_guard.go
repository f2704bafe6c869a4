package memory

import (
	"context"
	"sync"
	"time"

	"solana-trade-agent/internal/storage"
)

// TickGuard is an in-memory implementation of storage.TickGuard.
type TickGuard struct {
	mu        sync.Mutex
	seq       int64
	heldSeq   int64 // 0 when no lease held
	expiresAt time.Time
}

// NewTickGuard creates a new in-memory tick guard.
func NewTickGuard() *TickGuard {
	return &TickGuard{}
}

// Acquire hands out the next tick sequence, or ok=false while a live lease
// exists. An expired lease is reclaimed.
func (g *TickGuard) Acquire(_ context.Context, now time.Time, ttl time.Duration) (int64, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.heldSeq != 0 && now.Before(g.expiresAt) {
		return 0, false, nil
	}

	g.seq++
	g.heldSeq = g.seq
	g.expiresAt = now.Add(ttl)
	return g.seq, true, nil
}

// Release ends the lease identified by seq.
func (g *TickGuard) Release(_ context.Context, seq int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.heldSeq != seq {
		return storage.ErrLeaseNotHeld
	}
	g.heldSeq = 0
	return nil
}

var _ storage.TickGuard = (*TickGuard)(nil)
