// Package sizing converts a risk mode and wallet valuation into a fiat trade
// size. Sizing is deterministic and side-effect free so every deployed
// dollar is auditable from the inputs alone.
package sizing

import (
	"math"

	"solana-trade-agent/internal/domain"
)

// WalletFraction is the hard risk ceiling: no trade may exceed this fraction
// of the wallet valuation regardless of mode.
const WalletFraction = 0.10

// MinTradeUSD is the floor for custom-mode sizes.
const MinTradeUSD = 0.01

// band is the [min,max] fiat range for a preset risk mode.
type band struct {
	min, max float64
}

var bands = map[domain.RiskMode]band{
	domain.RiskModeSafe:       {min: 0.10, max: 1},
	domain.RiskModeMedium:     {min: 5, max: 50},
	domain.RiskModeAggressive: {min: 100, max: 500},
}

// Size returns the fiat amount to deploy for one trade.
//
// The ceiling is walletUSD*WalletFraction. Custom mode clamps customUSD into
// [MinTradeUSD, ceiling]. Preset modes take the midpoint of the band with
// its max bounded by the ceiling; when even the band minimum exceeds the
// ceiling the size collapses to the ceiling.
func Size(mode domain.RiskMode, customUSD, walletUSD float64) float64 {
	ceiling := walletUSD * WalletFraction
	if ceiling < 0 || math.IsNaN(ceiling) {
		ceiling = 0
	}

	if mode == domain.RiskModeCustom {
		return clamp(customUSD, MinTradeUSD, ceiling)
	}

	b, ok := bands[mode]
	if !ok {
		b = bands[domain.RiskModeSafe]
	}
	if b.min > ceiling {
		return ceiling
	}
	effectiveMax := math.Min(b.max, ceiling)
	return (b.min + effectiveMax) / 2
}

// clamp bounds v into [lo, hi]. The upper bound wins when hi < lo.
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}
