package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeTradeID computes a deterministic trade_id using SHA256.
// Formula: SHA256(trade|mint|opened_at)
// Returns hex-encoded hash (64 characters).
//
// The close time is deliberately excluded: a position re-closed after a
// crash between the ledger write and the position write must produce the
// same id so the ledger can recognize the record it already holds.
func ComputeTradeID(mint string, openedAt int64) string {
	data := fmt.Sprintf("trade|%s|%d", mint, openedAt)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
