package domain

import "time"

// TripDirection indicates whether an airport trip is an arrival or a departure.
type TripDirection string

const (
	TripArrival   TripDirection = "ARRIVAL"
	TripDeparture TripDirection = "DEPARTURE"
)

// Trip represents an airport-assistance trip posted by an owner.
type Trip struct {
	ID           string
	OwnerID      string
	Airport      string
	FlightNumber string
	Direction    TripDirection
	DepartureAt  time.Time
	CreatedAt    time.Time
}
