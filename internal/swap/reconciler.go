package swap

import (
	"context"
	"io"
	"log"
	"time"

	"solana-trade-agent/internal/domain"
	"solana-trade-agent/internal/solana"
)

// Reconciler promotes SUBMITTED positions to CONFIRMED once their entry
// transaction settles, and removes positions whose transaction failed
// on-chain. Submission and settlement are deliberately separate phases so a
// fire-and-forget submit never silently counts as a fill.
type Reconciler struct {
	rpc           solana.RPCClient
	confirmations *solana.ConfirmationClient // optional fast path
	awaitTimeout  time.Duration
	logger        *log.Logger
}

// ReconcilerOption configures Reconciler.
type ReconcilerOption func(*Reconciler)

// WithConfirmationClient enables the WebSocket fast path for positions whose
// status is still unknown over HTTP.
func WithConfirmationClient(c *solana.ConfirmationClient) ReconcilerOption {
	return func(r *Reconciler) {
		r.confirmations = c
	}
}

// WithAwaitTimeout bounds the WebSocket wait per position.
func WithAwaitTimeout(d time.Duration) ReconcilerOption {
	return func(r *Reconciler) {
		r.awaitTimeout = d
	}
}

// WithReconcilerLogger sets the diagnostics logger.
func WithReconcilerLogger(logger *log.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

// NewReconciler creates a Reconciler.
func NewReconciler(rpc solana.RPCClient, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		rpc:          rpc,
		awaitTimeout: 5 * time.Second,
		logger:       log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile returns the position set with settled entries promoted and
// failed entries removed. Positions whose status is still unknown stay
// SUBMITTED for a later tick. A failed entry produces no ledger record: the
// position simply never took effect.
func (r *Reconciler) Reconcile(ctx context.Context, positions []domain.Position) (kept []domain.Position, promoted, dropped int) {
	var pending []string
	for _, p := range positions {
		if p.Phase == domain.PhaseSubmitted && p.EntryTxSig != "" {
			pending = append(pending, p.EntryTxSig)
		}
	}
	if len(pending) == 0 {
		return positions, 0, 0
	}

	statusBySig := make(map[string]*solana.SignatureStatus, len(pending))
	statuses, err := r.rpc.GetSignatureStatuses(ctx, pending)
	if err != nil {
		r.logger.Printf("signature status lookup failed, retrying next tick: %v", err)
	} else {
		for i, sig := range pending {
			if i < len(statuses) {
				statusBySig[sig] = statuses[i]
			}
		}
	}

	for _, p := range positions {
		if p.Phase != domain.PhaseSubmitted || p.EntryTxSig == "" {
			kept = append(kept, p)
			continue
		}

		status := statusBySig[p.EntryTxSig]
		if status == nil && r.confirmations != nil {
			status = r.awaitOverWS(ctx, p.EntryTxSig)
		}

		switch {
		case status == nil:
			kept = append(kept, p) // still unknown
		case status.Failed():
			dropped++
			r.logger.Printf("entry %s for %s failed on-chain, removing position %s",
				p.EntryTxSig, p.Mint, p.PositionID)
		case status.Settled():
			p.Phase = domain.PhaseConfirmed
			promoted++
			kept = append(kept, p)
		default:
			kept = append(kept, p) // processed but not yet confirmed
		}
	}

	return kept, promoted, dropped
}

// awaitOverWS waits briefly for a confirmation notification.
func (r *Reconciler) awaitOverWS(ctx context.Context, signature string) *solana.SignatureStatus {
	waitCtx, cancel := context.WithTimeout(ctx, r.awaitTimeout)
	defer cancel()

	result, err := r.confirmations.AwaitSignature(waitCtx, signature)
	if err != nil {
		return nil
	}
	return &solana.SignatureStatus{
		Slot:               result.Slot,
		ConfirmationStatus: "confirmed",
		Err:                result.Err,
	}
}
