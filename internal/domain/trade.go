package domain

// TradeRecord is one closed trade in the ledger. Records are immutable once
// written; the ledger is append-only and capped at LedgerCap entries with the
// oldest evicted first.
type TradeRecord struct {
	TradeID  string  `json:"tradeId"` // deterministic hash, see idhash
	Mint     string  `json:"mint"`
	Symbol   string  `json:"symbol"`
	SizeUSD  float64 `json:"sizeUsd"`
	OpenedAt int64   `json:"openedAt"` // Unix timestamp in milliseconds
	ClosedAt int64   `json:"closedAt"` // Unix timestamp in milliseconds
	PnLUSD   float64 `json:"pnlUsd"`   // realized profit/loss in fiat
}

// LedgerCap is the maximum number of trade records retained.
const LedgerCap = 200
