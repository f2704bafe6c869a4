package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultPairsEndpoint is the public DexScreener search API.
const DefaultPairsEndpoint = "https://api.dexscreener.com/latest/dex/search"

// solanaChainID filters the feed to Solana pairs.
const solanaChainID = "solana"

// PairsClient fetches newly observed trading pairs from DexScreener.
type PairsClient struct {
	endpoint string
	query    string
	client   *http.Client
}

// PairsOption configures PairsClient.
type PairsOption func(*PairsClient)

// WithPairsEndpoint overrides the pairs API endpoint.
func WithPairsEndpoint(endpoint string) PairsOption {
	return func(c *PairsClient) {
		c.endpoint = endpoint
	}
}

// WithPairsQuery overrides the search query.
func WithPairsQuery(query string) PairsOption {
	return func(c *PairsClient) {
		c.query = query
	}
}

// WithPairsHTTPClient sets a custom http.Client.
func WithPairsHTTPClient(client *http.Client) PairsOption {
	return func(c *PairsClient) {
		c.client = client
	}
}

// NewPairsClient creates a new DexScreener pairs client.
func NewPairsClient(opts ...PairsOption) *PairsClient {
	c := &PairsClient{
		endpoint: DefaultPairsEndpoint,
		query:    "SOL",
		client:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type pairsResponse struct {
	SchemaVersion string `json:"schemaVersion"`
	Pairs         []Pair `json:"pairs"`
}

// NewPairs returns the current Solana pairs from the feed, newest first as
// the API reports them. Pairs on other chains are dropped.
func (c *PairsClient) NewPairs(ctx context.Context) ([]Pair, error) {
	url := c.endpoint + "?q=" + c.query
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var body pairsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var pairs []Pair
	for _, p := range body.Pairs {
		if p.ChainID != solanaChainID {
			continue
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}
