package service

import (
	"time"

	"tripmatch/internal/domain"
)

// Event is a requested confirmation transition.
type Event string

const (
	// EventAccept moves PENDING to ACCEPTED. Owner only.
	EventAccept Event = "ACCEPT"

	// EventReject moves PENDING to REJECTED (rejected_by_owner). Owner only.
	EventReject Event = "REJECT"

	// EventCancelRequest moves PENDING to REJECTED (cancelled_by_passenger).
	// Passenger only.
	EventCancelRequest Event = "CANCEL_REQUEST"

	// EventCancel moves ACCEPTED to REJECTED (cancelled_by_*). Either party.
	EventCancel Event = "CANCEL"

	// EventReverse undoes a rejection/cancellation, restoring ACCEPTED.
	// Only the participant who did not cause the terminal state may fire
	// it, and only within the reversal window (checked separately).
	EventReverse Event = "REVERSE"

	// EventExpire force-rejects a stale PENDING request. System only.
	EventExpire Event = "EXPIRE"
)

// Transition is the pure decision function of the confirmation state
// machine. Given the current record, a requested event, the acting user
// and the current time, it either returns the resulting record or a
// domain error. It never mutates its input and never blocks, so it is
// safe to call from any goroutine without locking.
//
// EventExpire is the only edge with no acting user; pass an empty actorID.
func Transition(c *domain.Confirmation, event Event, actorID string, now time.Time) (*domain.Confirmation, error) {
	if event == EventExpire {
		return expire(c, now)
	}

	role := c.RoleOf(actorID)
	if role == domain.RoleNone {
		return nil, ErrForbidden
	}

	switch event {
	case EventAccept, EventReject:
		if c.Status != domain.ConfirmationPending {
			return nil, ErrInvalidTransition
		}
		if role != domain.RoleOwner {
			return nil, ErrForbidden
		}
		next := *c
		if event == EventAccept {
			next.Status = domain.ConfirmationAccepted
		} else {
			next.Status = domain.ConfirmationRejected
			next.Reason = domain.ReasonRejectedByOwner
		}
		next.ConfirmedAt = now
		next.UpdatedAt = now
		return &next, nil

	case EventCancelRequest:
		if c.Status != domain.ConfirmationPending {
			return nil, ErrInvalidTransition
		}
		if role != domain.RolePassenger {
			return nil, ErrForbidden
		}
		next := *c
		next.Status = domain.ConfirmationRejected
		next.Reason = domain.ReasonCancelledByPassenger
		next.ConfirmedAt = now
		next.UpdatedAt = now
		return &next, nil

	case EventCancel:
		if c.Status != domain.ConfirmationAccepted {
			return nil, ErrInvalidTransition
		}
		next := *c
		if role == domain.RoleOwner {
			next.Reason = domain.ReasonCancelledByOwner
		} else {
			next.Reason = domain.ReasonCancelledByPassenger
		}
		next.Status = domain.ConfirmationRejected
		next.ConfirmedAt = now
		next.UpdatedAt = now
		return &next, nil

	case EventReverse:
		if c.Status != domain.ConfirmationRejected {
			return nil, ErrInvalidTransition
		}
		// Expiry has no causing user and cannot be undone: the
		// departure is already in the past.
		if c.Reason == domain.ReasonExpired {
			return nil, ErrInvalidTransition
		}
		if actorID == c.CausedBy() {
			return nil, ErrForbidden
		}
		next := *c
		next.Status = domain.ConfirmationAccepted
		next.Reason = ""
		next.ConfirmedAt = now
		next.UpdatedAt = now
		return &next, nil

	default:
		return nil, ErrInvalidTransition
	}
}

func expire(c *domain.Confirmation, now time.Time) (*domain.Confirmation, error) {
	if c.Status != domain.ConfirmationPending {
		return nil, ErrInvalidTransition
	}
	next := *c
	next.Status = domain.ConfirmationRejected
	next.Reason = domain.ReasonExpired
	next.ConfirmedAt = now
	next.UpdatedAt = now
	return &next, nil
}
