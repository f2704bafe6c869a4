// Package safety screens candidate tokens through a third-party risk
// assessment before any capital is deployed.
package safety

// MinScore is the minimum assessment score accepted by the gate.
const MinScore = 70

// Assessment is the normalized risk assessment for a token.
type Assessment struct {
	Score           float64 // 0-100, higher is safer
	IsHoneypot      bool    // token cannot be sold back
	FreezeAuthority bool    // issuer retained the freeze authority
}

// Passes reports whether an assessment clears the safety gate.
//
// A nil assessment (lookup failure) always fails: the gate guards
// capital-at-risk and is fail-closed, never fail-open.
func Passes(a *Assessment) bool {
	if a == nil {
		return false
	}
	return a.Score >= MinScore && !a.IsHoneypot && !a.FreezeAuthority
}
