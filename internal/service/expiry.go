package service

import (
	"time"

	"tripmatch/internal/domain"
)

// DefaultExpiringSoonWindow is how far ahead of departure a pending
// request is flagged as expiring soon.
const DefaultExpiringSoonWindow = 24 * time.Hour

// ExpiryInfo is the read-only expiry classification of a confirmation.
// It never implies a state change; the sweeper performs those.
type ExpiryInfo struct {
	// WillExpire is true for a pending request whose departure is within
	// the expiring-soon window.
	WillExpire bool

	// IsExpired is true for a pending request whose departure has passed
	// but which the sweeper has not yet picked up.
	IsExpired bool

	TimeUntilExpiry time.Duration // zero once departure has passed
}

// EvaluateExpiry classifies a confirmation against its departure at the
// given instant. Pure: no side effects, no clock access.
func EvaluateExpiry(c *domain.Confirmation, now time.Time, soonWindow time.Duration) ExpiryInfo {
	if c.Status != domain.ConfirmationPending {
		return ExpiryInfo{}
	}

	until := c.DepartureAt.Sub(now)
	if until <= 0 {
		return ExpiryInfo{IsExpired: true}
	}

	return ExpiryInfo{
		WillExpire:      until <= soonWindow,
		TimeUntilExpiry: until,
	}
}
