package solana

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"strings"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Keypair is the agent custody key. The secret never leaves this package;
// callers get the public address and a signing primitive only.
type Keypair struct {
	priv ed25519.PrivateKey
}

// ParseKeypair loads a keypair from its serialized form: either a base58
// string or a JSON byte array, both holding the 64-byte ed25519 secret key.
func ParseKeypair(raw string) (*Keypair, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty private key")
	}

	var secret []byte
	if strings.HasPrefix(raw, "[") {
		var arr []byte
		if err := json.Unmarshal([]byte(raw), &arr); err != nil {
			return nil, fmt.Errorf("parse JSON array private key: %w", err)
		}
		secret = arr
	} else {
		decoded, err := base58.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("decode base58 private key: %w", err)
		}
		secret = decoded
	}

	if len(secret) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("private key must be %d bytes, got %d", ed25519.PrivateKeySize, len(secret))
	}

	kp := &Keypair{priv: ed25519.PrivateKey(secret)}
	if !ValidPublicKey(kp.PublicKey()) {
		return nil, fmt.Errorf("private key embeds an off-curve public key")
	}
	return kp, nil
}

// NewKeypair generates a fresh random keypair.
func NewKeypair() (*Keypair, error) {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}
	return &Keypair{priv: priv}, nil
}

// PublicKey returns the base58-encoded public key (the wallet address).
func (k *Keypair) PublicKey() string {
	return base58.Encode(k.priv.Public().(ed25519.PublicKey))
}

// Secret returns the serialized 64-byte secret key as a JSON byte array.
// Used only by the keygen tool.
func (k *Keypair) Secret() []byte {
	out := make([]byte, len(k.priv))
	copy(out, k.priv)
	return out
}

// SecretBase58 returns the base58 form of the secret key.
func (k *Keypair) SecretBase58() string {
	return base58.Encode(k.priv)
}

// Sign signs a message with the custody key.
func (k *Keypair) Sign(message []byte) []byte {
	return ed25519.Sign(k.priv, message)
}

// ValidPublicKey reports whether addr is a base58-encoded point on the
// ed25519 curve.
func ValidPublicKey(addr string) bool {
	decoded, err := base58.Decode(addr)
	if err != nil || len(decoded) != ed25519.PublicKeySize {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(decoded)
	return err == nil
}
