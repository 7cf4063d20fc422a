package repository

import (
	"context"
	"time"

	"tripmatch/internal/domain"
)

// ConfirmationRepository defines the persistence operations for confirmations.
//
// Update takes the UpdatedAt value the caller last read; implementations
// must apply the write only if the stored row still carries that value and
// return ErrVersionConflict otherwise. This is the engine's only defense
// against concurrent transitions on the same record.
type ConfirmationRepository interface {
	// Create persists a new confirmation. Returns ErrDuplicateActive if a
	// non-rejected confirmation already exists for the same passenger and
	// target.
	Create(ctx context.Context, c *domain.Confirmation) error

	// GetByID retrieves a confirmation by ID.
	GetByID(ctx context.Context, id string) (*domain.Confirmation, error)

	// Update applies a mutation with compare-and-swap on expectedUpdatedAt.
	Update(ctx context.Context, c *domain.Confirmation, expectedUpdatedAt time.Time) error

	// GetActiveByPassengerAndTarget returns the non-rejected confirmation
	// for the pair, or ErrNotFound.
	GetActiveByPassengerAndTarget(ctx context.Context, passengerID string, target domain.TargetRef) (*domain.Confirmation, error)

	// GetLatestRejected returns the most recently resolved rejected
	// confirmation for the pair, or ErrNotFound.
	GetLatestRejected(ctx context.Context, passengerID string, target domain.TargetRef) (*domain.Confirmation, error)

	// ListPendingPastDeparture returns pending confirmations whose
	// departure timestamp is at or before now.
	ListPendingPastDeparture(ctx context.Context, now time.Time) ([]*domain.Confirmation, error)

	// ListByPassenger returns all confirmations requested by a passenger.
	ListByPassenger(ctx context.Context, passengerID string) ([]*domain.Confirmation, error)

	// ListByTarget returns all confirmations attached to a ride or trip.
	ListByTarget(ctx context.Context, target domain.TargetRef) ([]*domain.Confirmation, error)
}
