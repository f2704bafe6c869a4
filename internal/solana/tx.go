package solana

import (
	"encoding/base64"
	"fmt"
)

// SignTransaction signs a serialized, base64-encoded transaction with the
// keypair as fee payer and returns the signed transaction, base64-encoded.
//
// Wire layout: a compact-u16 count of signature slots, the 64-byte slots
// themselves, then the message bytes. The swap venue builds the transaction
// with the fee payer in slot 0; only that slot is filled here.
func SignTransaction(kp *Keypair, txBase64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(txBase64)
	if err != nil {
		return "", fmt.Errorf("decode transaction: %w", err)
	}

	numSigs, offset, err := decodeCompactU16(raw)
	if err != nil {
		return "", fmt.Errorf("parse signature count: %w", err)
	}
	if numSigs < 1 {
		return "", fmt.Errorf("transaction has no signature slots")
	}

	sigBytes := numSigs * 64
	if len(raw) < offset+sigBytes {
		return "", fmt.Errorf("transaction truncated: %d bytes for %d signatures", len(raw), numSigs)
	}

	message := raw[offset+sigBytes:]
	signature := kp.Sign(message)
	copy(raw[offset:offset+64], signature)

	return base64.StdEncoding.EncodeToString(raw), nil
}

// decodeCompactU16 decodes Solana's compact-u16 length prefix.
// Returns the value and the number of bytes consumed.
func decodeCompactU16(data []byte) (int, int, error) {
	var value, shift uint
	for i := 0; i < 3; i++ {
		if i >= len(data) {
			return 0, 0, fmt.Errorf("short buffer")
		}
		b := uint(data[i])
		value |= (b & 0x7f) << shift
		if b&0x80 == 0 {
			return int(value), i + 1, nil
		}
		shift += 7
	}
	return 0, 0, fmt.Errorf("compact-u16 too long")
}
