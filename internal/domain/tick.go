package domain

import "time"

// TickStatus is the terminal state of one orchestrator invocation.
type TickStatus string

// Tick status constants
const (
	TickCompleted TickStatus = "COMPLETED" // full pipeline ran
	TickDisabled  TickStatus = "DISABLED"  // settings.run=false, short-circuited
	TickSkipped   TickStatus = "SKIPPED"   // another invocation holds the tick lease
	TickFailed    TickStatus = "FAILED"    // a non-candidate fault aborted the tick
)

// TickReport is the structured result of one tick. The orchestrator always
// returns a report and never propagates a raw error to the trigger.
type TickReport struct {
	Status      TickStatus    `json:"status"`
	Message     string        `json:"message"`
	Seq         int64         `json:"seq"` // monotonic tick sequence from the lease
	Closed      int           `json:"closed"`
	Promoted    int           `json:"promoted"` // submitted swaps confirmed on-chain
	Dropped     int           `json:"dropped"`  // submitted swaps that failed on-chain
	Considered  int           `json:"considered"`
	ScreenedOut int           `json:"screenedOut"`
	Opened      int           `json:"opened"`
	Skipped     int           `json:"skipped"` // candidates skipped on per-candidate failure
	Elapsed     time.Duration `json:"elapsed"`
}
