package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputePositionID computes a deterministic position_id using SHA256.
// Formula: SHA256(mint|opened_at)
// Returns hex-encoded hash (64 characters).
func ComputePositionID(mint string, openedAt int64) string {
	data := fmt.Sprintf("%s|%d", mint, openedAt)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
