package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultPriceEndpoint is the public Jupiter price API.
const DefaultPriceEndpoint = "https://price.jup.ag/v6/price"

// PriceClient fetches the reference SOL/USD price from Jupiter.
type PriceClient struct {
	endpoint string
	client   *http.Client
}

// PriceOption configures PriceClient.
type PriceOption func(*PriceClient)

// WithPriceEndpoint overrides the price API endpoint.
func WithPriceEndpoint(endpoint string) PriceOption {
	return func(c *PriceClient) {
		c.endpoint = endpoint
	}
}

// WithPriceHTTPClient sets a custom http.Client.
func WithPriceHTTPClient(client *http.Client) PriceOption {
	return func(c *PriceClient) {
		c.client = client
	}
}

// NewPriceClient creates a new Jupiter price client.
func NewPriceClient(opts ...PriceOption) *PriceClient {
	c := &PriceClient{
		endpoint: DefaultPriceEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type priceResponse struct {
	Data map[string]struct {
		Price float64 `json:"price"`
	} `json:"data"`
}

// SOLUSD returns the current SOL/USD price.
// Returns ErrUnavailable when the feed cannot be reached and ErrMalformed
// when it answers without a positive SOL price.
func (c *PriceClient) SOLUSD(ctx context.Context) (float64, error) {
	url := c.endpoint + "?ids=SOL"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var body priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	sol, ok := body.Data["SOL"]
	if !ok || sol.Price <= 0 {
		return 0, fmt.Errorf("%w: missing SOL price", ErrMalformed)
	}
	return sol.Price, nil
}
