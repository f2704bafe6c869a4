// Package market supplies the reference SOL/USD price and the list of newly
// observed trading pairs with short-term price-change statistics.
package market

import "errors"

// Feed errors. Callers branch on these explicitly instead of defaulting
// through missing fields.
var (
	// ErrUnavailable is returned when a feed cannot be reached or answers
	// with a non-OK status.
	ErrUnavailable = errors.New("market feed unavailable")

	// ErrMalformed is returned when a feed answers with a body that does
	// not parse into the expected shape.
	ErrMalformed = errors.New("market feed response malformed")
)

// Pair is one trading pair as reported by the DexScreener API.
type Pair struct {
	ChainID       string       `json:"chainId"`
	DexID         string       `json:"dexId"`
	PairAddress   string       `json:"pairAddress"`
	BaseToken     Token        `json:"baseToken"`
	QuoteToken    Token        `json:"quoteToken"`
	PriceUsd      string       `json:"priceUsd"`
	PriceChange   *PriceChange `json:"priceChange"` // nil when the API omits change stats
	Liquidity     *Liquidity   `json:"liquidity"`
	PairCreatedAt int64        `json:"pairCreatedAt"` // Unix timestamp in milliseconds
}

// Token identifies one side of a pair.
type Token struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// PriceChange holds percentage price changes per window.
type PriceChange struct {
	M5  float64 `json:"m5"`
	H1  float64 `json:"h1"`
	H6  float64 `json:"h6"`
	H24 float64 `json:"h24"`
}

// Liquidity holds pool liquidity figures.
type Liquidity struct {
	USD   float64 `json:"usd"`
	Base  float64 `json:"base"`
	Quote float64 `json:"quote"`
}
