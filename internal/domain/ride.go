package domain

import "time"

// Ride represents a car ride posted by an owner looking for passengers.
type Ride struct {
	ID          string
	OwnerID     string
	Origin      string
	Destination string
	DepartureAt time.Time
	Seats       int
	CreatedAt   time.Time
}
