// Package swap executes entries through the Jupiter aggregator: quote, swap
// transaction, custody signing, optimistic submission, and the follow-up
// settlement reconciliation.
package swap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultQuoteEndpoint is the public Jupiter quote/swap API.
const DefaultQuoteEndpoint = "https://quote-api.jup.ag/v6"

// Venue is the swap venue interface used by the executor.
type Venue interface {
	// Quote requests a price quote for inputMint→outputMint.
	Quote(ctx context.Context, inputMint, outputMint string, amountLamports uint64, slippageBps int) (*Quote, error)

	// SwapTransaction requests a serialized, ready-to-sign transaction
	// built from a quote. Returns the base64-encoded transaction.
	SwapTransaction(ctx context.Context, q *Quote, userPublicKey string) (string, error)
}

// Quote is a Jupiter quote. The raw response is retained verbatim because
// the swap endpoint expects it back unchanged.
type Quote struct {
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
	InAmount   string `json:"inAmount"`
	OutAmount  string `json:"outAmount"`

	raw json.RawMessage
}

// JupiterClient implements Venue against the Jupiter v6 API.
type JupiterClient struct {
	endpoint string
	client   *http.Client
}

// JupiterOption configures JupiterClient.
type JupiterOption func(*JupiterClient)

// WithEndpoint overrides the quote API endpoint.
func WithEndpoint(endpoint string) JupiterOption {
	return func(c *JupiterClient) {
		c.endpoint = endpoint
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) JupiterOption {
	return func(c *JupiterClient) {
		c.client = client
	}
}

// NewJupiterClient creates a new Jupiter client.
func NewJupiterClient(opts ...JupiterOption) *JupiterClient {
	c := &JupiterClient{
		endpoint: DefaultQuoteEndpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Quote requests a price quote.
func (c *JupiterClient) Quote(ctx context.Context, inputMint, outputMint string, amountLamports uint64, slippageBps int) (*Quote, error) {
	url := fmt.Sprintf("%s/quote?inputMint=%s&outputMint=%s&amount=%d&slippageBps=%d",
		c.endpoint, inputMint, outputMint, amountLamports, slippageBps)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch quote: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read quote: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote: status %d: %s", resp.StatusCode, body)
	}

	var q Quote
	if err := json.Unmarshal(body, &q); err != nil {
		return nil, fmt.Errorf("decode quote: %w", err)
	}
	if q.OutAmount == "" || q.OutAmount == "0" {
		return nil, fmt.Errorf("quote has no output amount")
	}
	q.raw = body
	return &q, nil
}

type swapRequest struct {
	QuoteResponse    json.RawMessage `json:"quoteResponse"`
	UserPublicKey    string          `json:"userPublicKey"`
	WrapAndUnwrapSol bool            `json:"wrapAndUnwrapSol"`
}

type swapResponse struct {
	SwapTransaction string `json:"swapTransaction"`
}

// SwapTransaction requests a serialized transaction built from a quote.
func (c *JupiterClient) SwapTransaction(ctx context.Context, q *Quote, userPublicKey string) (string, error) {
	if q == nil || len(q.raw) == 0 {
		return "", fmt.Errorf("quote missing raw response")
	}

	payload, err := json.Marshal(swapRequest{
		QuoteResponse:    q.raw,
		UserPublicKey:    userPublicKey,
		WrapAndUnwrapSol: true,
	})
	if err != nil {
		return "", fmt.Errorf("marshal swap request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/swap", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch swap transaction: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("swap: status %d: %s", resp.StatusCode, body)
	}

	var sr swapResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", fmt.Errorf("decode swap response: %w", err)
	}
	if sr.SwapTransaction == "" {
		return "", fmt.Errorf("swap response missing transaction")
	}
	return sr.SwapTransaction, nil
}

var _ Venue = (*JupiterClient)(nil)
