package safety

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultEndpoint is the public Rugcheck report API.
const DefaultEndpoint = "https://api.rugcheck.xyz/v1/tokens"

// Risk flag names reported by the API.
const (
	riskHoneypot        = "honeypot"
	riskFreezeAuthority = "freeze authority"
)

// Client fetches token risk assessments from Rugcheck.
type Client struct {
	endpoint string
	client   *http.Client
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithEndpoint overrides the report API endpoint.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a new Rugcheck client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		endpoint: DefaultEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type reportSummary struct {
	Score float64 `json:"score"`
	Risks []struct {
		Name string `json:"name"`
	} `json:"risks"`
}

// Assess fetches the report summary for a mint. A transport or decode
// failure returns a nil assessment and an error; the gate treats nil as
// fail-closed.
func (c *Client) Assess(ctx context.Context, mint string) (*Assessment, error) {
	url := fmt.Sprintf("%s/%s/report/summary", c.endpoint, mint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch assessment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("assessment lookup: status %d", resp.StatusCode)
	}

	var summary reportSummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, fmt.Errorf("decode assessment: %w", err)
	}

	a := &Assessment{Score: summary.Score}
	for _, r := range summary.Risks {
		name := strings.ToLower(r.Name)
		if strings.Contains(name, riskHoneypot) {
			a.IsHoneypot = true
		}
		if strings.Contains(name, riskFreezeAuthority) {
			a.FreezeAuthority = true
		}
	}
	return a, nil
}
