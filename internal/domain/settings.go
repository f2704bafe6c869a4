package domain

// RiskMode selects the position sizing band.
type RiskMode string

// Risk mode constants
const (
	RiskModeSafe       RiskMode = "safe"
	RiskModeMedium     RiskMode = "medium"
	RiskModeAggressive RiskMode = "aggressive"
	RiskModeCustom     RiskMode = "custom"
)

// Valid reports whether m is one of the enumerated risk modes.
func (m RiskMode) Valid() bool {
	switch m {
	case RiskModeSafe, RiskModeMedium, RiskModeAggressive, RiskModeCustom:
		return true
	}
	return false
}

// Settings is the agent control document. It is a singleton mutated by the
// dashboard control surface and read once at the start of every tick.
// Corresponds to the settings document in storage.
type Settings struct {
	Run          bool     `json:"run"`                    // master enable switch
	RiskMode     RiskMode `json:"riskMode"`               // sizing band selector
	CustomUSD    float64  `json:"customUsd"`              // only meaningful for RiskModeCustom
	NotifyTarget string   `json:"notifyTarget,omitempty"` // Telegram chat ID, empty disables notifications
	LastUpdated  int64    `json:"lastUpdated"`            // Unix timestamp in milliseconds
}

// DefaultSettings returns the document used when storage holds none yet.
// The agent starts paused.
func DefaultSettings() Settings {
	return Settings{
		Run:      false,
		RiskMode: RiskModeSafe,
	}
}
