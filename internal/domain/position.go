package domain

// PositionPhase tracks settlement of the entry transaction.
// A position is created SUBMITTED the moment a signature is returned and is
// promoted to CONFIRMED (or removed) by the reconciler on a later tick.
type PositionPhase string

// Position phase constants
const (
	PhaseSubmitted PositionPhase = "SUBMITTED"
	PhaseConfirmed PositionPhase = "CONFIRMED"
)

// Position represents an open holding. Exactly one open position may exist
// per mint. Corresponds to one element of the positions document in storage.
type Position struct {
	PositionID      string        `json:"positionId"` // deterministic hash, see idhash
	Mint            string        `json:"mint"`       // token mint address
	Symbol          string        `json:"symbol"`
	OpenedAt        int64         `json:"openedAt"` // Unix timestamp in milliseconds
	SizeUSD         float64       `json:"sizeUsd"`  // fiat deployed at entry
	EntryTxSig      string        `json:"entryTxSig"`
	TimeStopMinutes int           `json:"timeStopMinutes"` // force-close age
	Phase           PositionPhase `json:"phase"`
}

// DefaultTimeStopMinutes is the holding duration after which a position is
// force-closed regardless of price.
const DefaultTimeStopMinutes = 60
