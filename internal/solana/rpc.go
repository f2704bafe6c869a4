// Package solana provides the JSON-RPC and WebSocket clients used to talk to
// a Solana node, plus the agent custody keypair.
package solana

import "context"

// WSOLMint is the wrapped SOL mint address.
const WSOLMint = "So11111111111111111111111111111111111111112"

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = 1_000_000_000

// RPCClient defines the Solana RPC HTTP interface used by the agent.
type RPCClient interface {
	// GetBalance retrieves the lamport balance of an account.
	GetBalance(ctx context.Context, pubkey string) (uint64, error)

	// GetLatestBlockhash retrieves the most recent blockhash.
	GetLatestBlockhash(ctx context.Context) (string, error)

	// SendTransaction submits a signed, base64-encoded transaction and
	// returns its signature. skipPreflight bypasses simulation.
	SendTransaction(ctx context.Context, txBase64 string, skipPreflight bool) (string, error)

	// GetSignatureStatuses retrieves settlement status per signature.
	// Unknown signatures yield nil entries.
	GetSignatureStatuses(ctx context.Context, signatures []string) ([]*SignatureStatus, error)
}

// SignatureStatus is the settlement state of a submitted transaction.
type SignatureStatus struct {
	Slot               int64
	Confirmations      *int64 // nil once rooted
	ConfirmationStatus string // "processed" | "confirmed" | "finalized"
	Err                interface{}
}

// Settled reports whether the transaction reached at least confirmed
// commitment.
func (s *SignatureStatus) Settled() bool {
	return s != nil && (s.ConfirmationStatus == "confirmed" || s.ConfirmationStatus == "finalized")
}

// Failed reports whether the transaction was rooted with an error.
func (s *SignatureStatus) Failed() bool {
	return s != nil && s.Err != nil
}
