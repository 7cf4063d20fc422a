package domain

import "time"

// ConfirmationStatus represents the current status of a confirmation.
type ConfirmationStatus string

const (
	ConfirmationPending  ConfirmationStatus = "PENDING"
	ConfirmationAccepted ConfirmationStatus = "ACCEPTED"
	ConfirmationRejected ConfirmationStatus = "REJECTED"
)

// TerminalReason distinguishes how a confirmation reached REJECTED.
// The three-state status alone is not enough for user-facing messaging:
// an owner rejecting a request and a passenger backing out of an accepted
// seat both end in REJECTED but read very differently.
type TerminalReason string

const (
	ReasonRejectedByOwner      TerminalReason = "REJECTED_BY_OWNER"
	ReasonCancelledByPassenger TerminalReason = "CANCELLED_BY_PASSENGER"
	ReasonCancelledByOwner     TerminalReason = "CANCELLED_BY_OWNER"
	ReasonExpired              TerminalReason = "EXPIRED"
)

// TargetKind identifies what a confirmation attaches to.
type TargetKind string

const (
	TargetRide TargetKind = "RIDE"
	TargetTrip TargetKind = "TRIP"
)

// TargetRef is a tagged reference to either a car ride or an airport trip.
// A confirmation always points at exactly one of the two.
type TargetRef struct {
	Kind TargetKind
	ID   string
}

// RideTarget builds a ride reference.
func RideTarget(rideID string) TargetRef {
	return TargetRef{Kind: TargetRide, ID: rideID}
}

// TripTarget builds a trip reference.
func TripTarget(tripID string) TargetRef {
	return TargetRef{Kind: TargetTrip, ID: tripID}
}

// IsZero reports whether the reference is unset.
func (t TargetRef) IsZero() bool {
	return t.Kind == "" || t.ID == ""
}

// Role identifies which side of a confirmation a user is on.
type Role string

const (
	RoleOwner     Role = "OWNER"
	RolePassenger Role = "PASSENGER"
	RoleNone      Role = "NONE"
)

// Confirmation represents a passenger's request to join a ride or trip
// and its resolution. Terminal records are permanent history; a fresh
// request after rejection is always a new Confirmation.
type Confirmation struct {
	ID          string
	Target      TargetRef
	OwnerID     string
	PassengerID string
	Status      ConfirmationStatus
	Reason      TerminalReason // set iff Status == REJECTED
	Message     string         // optional note from the passenger
	DepartureAt time.Time      // snapshot of the target's departure
	CreatedAt   time.Time
	ConfirmedAt time.Time // zero iff Status == PENDING
	UpdatedAt   time.Time // optimistic-concurrency token
}

// RoleOf returns the user's role on this confirmation.
func (c *Confirmation) RoleOf(userID string) Role {
	switch userID {
	case c.OwnerID:
		return RoleOwner
	case c.PassengerID:
		return RolePassenger
	default:
		return RoleNone
	}
}

// OtherParty returns the participant opposite the given user.
func (c *Confirmation) OtherParty(userID string) string {
	if userID == c.OwnerID {
		return c.PassengerID
	}
	return c.OwnerID
}

// IsTerminal reports whether the confirmation is in a terminal state.
func (c *Confirmation) IsTerminal() bool {
	return c.Status == ConfirmationRejected
}

// CausedBy returns the id of the user whose action produced the terminal
// state, or "" when the system did (expiry).
func (c *Confirmation) CausedBy() string {
	switch c.Reason {
	case ReasonRejectedByOwner, ReasonCancelledByOwner:
		return c.OwnerID
	case ReasonCancelledByPassenger:
		return c.PassengerID
	default:
		return ""
	}
}
