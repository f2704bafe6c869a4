package domain

// Candidate is a newly observed trading pair considered for entry in the
// current tick. Candidates are derived from the pair feed and never persisted.
type Candidate struct {
	Mint        string  // token mint address
	Symbol      string
	ChangeM5Pct float64 // 5-minute price change, percent
	ChangeH1Pct float64 // 1-hour price change, percent
}

// Momentum is the ranking score used by the selector.
func (c Candidate) Momentum() float64 {
	return c.ChangeM5Pct + c.ChangeH1Pct
}
