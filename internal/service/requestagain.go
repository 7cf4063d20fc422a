package service

import (
	"time"

	"tripmatch/internal/domain"
)

// DefaultRequestCooldown is the courtesy delay after a rejection before
// the same passenger may request the same ride or trip again. A single
// fixed duration, not a backoff: this models politeness, not throttling.
const DefaultRequestCooldown = time.Hour

// RequestAgainInfo describes whether a passenger may re-request a ride
// or trip after a rejection.
type RequestAgainInfo struct {
	CanRequest    bool
	CooldownUntil time.Time // zero when no cooldown applies
}

// EvaluateRequestAgain computes re-request eligibility given the most
// recent rejected confirmation for the passenger/target pair, or nil if
// there is none. Pure: no side effects, no clock access.
//
// The cooldown is keyed to the latest rejection only; earlier rejections
// for the same pair are history and do not extend it.
func EvaluateRequestAgain(lastRejected *domain.Confirmation, now time.Time, cooldown time.Duration) RequestAgainInfo {
	if lastRejected == nil || lastRejected.Status != domain.ConfirmationRejected {
		return RequestAgainInfo{CanRequest: true}
	}

	until := lastRejected.ConfirmedAt.Add(cooldown)
	if now.Before(until) {
		return RequestAgainInfo{CanRequest: false, CooldownUntil: until}
	}

	return RequestAgainInfo{CanRequest: true}
}
