package service

import "errors"

var (
	// ErrDuplicateRequest is returned when a passenger already has an
	// active (non-rejected) confirmation for the same ride or trip.
	ErrDuplicateRequest = errors.New("active request already exists for this ride or trip")

	// ErrForbidden is returned when the actor is not a participant of the
	// confirmation or lacks the role required by the attempted transition.
	ErrForbidden = errors.New("actor not allowed to perform this transition")

	// ErrInvalidTransition is returned when the confirmation's current
	// status does not support the requested transition.
	ErrInvalidTransition = errors.New("transition not valid from current status")

	// ErrConflict is returned when a concurrent transition won the race;
	// the caller should refetch and retry if still desired.
	ErrConflict = errors.New("confirmation was modified concurrently")

	// ErrReversalWindowClosed is returned when a reversal is attempted
	// after the policy window has elapsed.
	ErrReversalWindowClosed = errors.New("reversal window has closed")

	// ErrCooldownActive is returned when a re-request is attempted before
	// the cooldown after the last rejection has elapsed.
	ErrCooldownActive = errors.New("request-again cooldown still active")

	// ErrRideDeparted is returned when creating a request for a ride or
	// trip whose departure has already passed.
	ErrRideDeparted = errors.New("ride or trip has already departed")

	// ErrInvalidPassengerID is returned when passenger ID is empty.
	ErrInvalidPassengerID = errors.New("invalid passenger id")

	// ErrInvalidActorID is returned when the acting user ID is empty.
	ErrInvalidActorID = errors.New("invalid actor id")

	// ErrInvalidConfirmationID is returned when confirmation ID is empty.
	ErrInvalidConfirmationID = errors.New("invalid confirmation id")

	// ErrInvalidTarget is returned when neither or both of ride/trip are referenced.
	ErrInvalidTarget = errors.New("exactly one of ride or trip must be referenced")

	// ErrOwnRide is returned when a passenger requests to join their own ride or trip.
	ErrOwnRide = errors.New("cannot request to join own ride or trip")
)
