// Package main generates a custody keypair for the trading agent and prints
// it in the formats WALLET_KEYPAIR accepts.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"solana-trade-agent/internal/solana"
)

func main() {
	logger := log.New(os.Stderr, "[keygen] ", 0)

	keypair, err := solana.NewKeypair()
	if err != nil {
		logger.Fatalf("generate keypair: %v", err)
	}

	secret := keypair.Secret()
	parts := make([]string, len(secret))
	for i, b := range secret {
		parts[i] = fmt.Sprintf("%d", b)
	}

	fmt.Printf("Public key:  %s\n", keypair.PublicKey())
	fmt.Printf("Secret (base58): %s\n", keypair.SecretBase58())
	fmt.Printf("Secret (JSON):   [%s]\n", strings.Join(parts, ","))
	fmt.Println()
	fmt.Println("Fund the public key, then export WALLET_KEYPAIR with either secret form.")
}
