package service

import (
	"math"
	"time"

	"tripmatch/internal/domain"
)

// DefaultReversalWindow is how long a rejection or cancellation can be undone.
const DefaultReversalWindow = 24 * time.Hour

// ReversalInfo describes whether a rejected confirmation can still be
// reversed and how much of the window remains.
type ReversalInfo struct {
	CanReverse    bool
	TimeRemaining time.Duration
	// HoursLeft is the remaining window rounded up, so an open window
	// never displays as zero hours.
	HoursLeft int
}

// EvaluateReversal computes reversal eligibility for a confirmation at
// the given instant. Pure: no side effects, no clock access.
//
// Eligibility is independent of who is asking; both parties see the same
// window. Whether a particular user may fire the reversal is decided by
// the state machine.
func EvaluateReversal(c *domain.Confirmation, now time.Time, window time.Duration) ReversalInfo {
	if c.Status != domain.ConfirmationRejected || c.Reason == domain.ReasonExpired {
		return ReversalInfo{}
	}

	elapsed := now.Sub(c.ConfirmedAt)
	if elapsed > window {
		return ReversalInfo{}
	}

	remaining := window - elapsed
	return ReversalInfo{
		CanReverse:    true,
		TimeRemaining: remaining,
		HoursLeft:     int(math.Ceil(remaining.Hours())),
	}
}
