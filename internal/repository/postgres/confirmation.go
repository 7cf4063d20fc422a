package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"tripmatch/internal/domain"
	"tripmatch/internal/repository"
)

// ConfirmationRepository is a PostgreSQL implementation of
// repository.ConfirmationRepository.
//
// The one-active-request-per-passenger-per-target invariant is enforced by
// a partial unique index on (passenger_id, target_kind, target_id) WHERE
// status <> 'REJECTED'; inserts hitting it surface as ErrDuplicateActive.
type ConfirmationRepository struct {
	q Querier
}

// NewConfirmationRepository creates a new PostgreSQL confirmation repository.
func NewConfirmationRepository(db *sql.DB) *ConfirmationRepository {
	return &ConfirmationRepository{q: db}
}

// NewConfirmationRepositoryWithTx creates a confirmation repository using a transaction.
func NewConfirmationRepositoryWithTx(tx *sql.Tx) *ConfirmationRepository {
	return &ConfirmationRepository{q: tx}
}

const confirmationColumns = `id, target_kind, target_id, owner_id, passenger_id, status, terminal_reason, message, departure_at, created_at, confirmed_at, updated_at`

// Create persists a new confirmation.
func (r *ConfirmationRepository) Create(ctx context.Context, c *domain.Confirmation) error {
	query := `
		INSERT INTO confirmations (` + confirmationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	var reason sql.NullString
	if c.Reason != "" {
		reason = sql.NullString{String: string(c.Reason), Valid: true}
	}

	var message sql.NullString
	if c.Message != "" {
		message = sql.NullString{String: c.Message, Valid: true}
	}

	var confirmedAt sql.NullTime
	if !c.ConfirmedAt.IsZero() {
		confirmedAt = sql.NullTime{Time: c.ConfirmedAt, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		c.ID,
		c.Target.Kind,
		c.Target.ID,
		c.OwnerID,
		c.PassengerID,
		c.Status,
		reason,
		message,
		c.DepartureAt,
		c.CreatedAt,
		confirmedAt,
		c.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return repository.ErrDuplicateActive
		}
		return err
	}

	return nil
}

// GetByID retrieves a confirmation by ID.
func (r *ConfirmationRepository) GetByID(ctx context.Context, id string) (*domain.Confirmation, error) {
	query := `SELECT ` + confirmationColumns + ` FROM confirmations WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// Update applies a mutation with compare-and-swap on expectedUpdatedAt.
func (r *ConfirmationRepository) Update(ctx context.Context, c *domain.Confirmation, expectedUpdatedAt time.Time) error {
	query := `
		UPDATE confirmations
		SET status = $1, terminal_reason = $2, confirmed_at = $3, updated_at = $4
		WHERE id = $5 AND updated_at = $6
	`

	var reason sql.NullString
	if c.Reason != "" {
		reason = sql.NullString{String: string(c.Reason), Valid: true}
	}

	var confirmedAt sql.NullTime
	if !c.ConfirmedAt.IsZero() {
		confirmedAt = sql.NullTime{Time: c.ConfirmedAt, Valid: true}
	}

	result, err := r.q.ExecContext(ctx, query,
		c.Status,
		reason,
		confirmedAt,
		c.UpdatedAt,
		c.ID,
		expectedUpdatedAt,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		// Distinguish a lost race from a missing record.
		var exists bool
		checkErr := r.q.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM confirmations WHERE id = $1)`, c.ID,
		).Scan(&exists)
		if checkErr != nil {
			return checkErr
		}
		if !exists {
			return repository.ErrNotFound
		}
		return repository.ErrVersionConflict
	}

	return nil
}

// GetActiveByPassengerAndTarget returns the non-rejected confirmation for the pair.
func (r *ConfirmationRepository) GetActiveByPassengerAndTarget(ctx context.Context, passengerID string, target domain.TargetRef) (*domain.Confirmation, error) {
	query := `
		SELECT ` + confirmationColumns + `
		FROM confirmations
		WHERE passenger_id = $1 AND target_kind = $2 AND target_id = $3 AND status <> $4
	`
	return r.scanOne(r.q.QueryRowContext(ctx, query, passengerID, target.Kind, target.ID, domain.ConfirmationRejected))
}

// GetLatestRejected returns the most recently resolved rejected confirmation for the pair.
func (r *ConfirmationRepository) GetLatestRejected(ctx context.Context, passengerID string, target domain.TargetRef) (*domain.Confirmation, error) {
	query := `
		SELECT ` + confirmationColumns + `
		FROM confirmations
		WHERE passenger_id = $1 AND target_kind = $2 AND target_id = $3 AND status = $4
		ORDER BY confirmed_at DESC
		LIMIT 1
	`
	return r.scanOne(r.q.QueryRowContext(ctx, query, passengerID, target.Kind, target.ID, domain.ConfirmationRejected))
}

// ListPendingPastDeparture returns pending confirmations whose departure is at or before now.
func (r *ConfirmationRepository) ListPendingPastDeparture(ctx context.Context, now time.Time) ([]*domain.Confirmation, error) {
	query := `
		SELECT ` + confirmationColumns + `
		FROM confirmations
		WHERE status = $1 AND departure_at <= $2
		ORDER BY departure_at ASC
	`
	rows, err := r.q.QueryContext(ctx, query, domain.ConfirmationPending, now)
	if err != nil {
		return nil, err
	}
	return r.scanAll(rows)
}

// ListByPassenger returns all confirmations requested by a passenger.
func (r *ConfirmationRepository) ListByPassenger(ctx context.Context, passengerID string) ([]*domain.Confirmation, error) {
	query := `
		SELECT ` + confirmationColumns + `
		FROM confirmations
		WHERE passenger_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.q.QueryContext(ctx, query, passengerID)
	if err != nil {
		return nil, err
	}
	return r.scanAll(rows)
}

// ListByTarget returns all confirmations attached to a ride or trip.
func (r *ConfirmationRepository) ListByTarget(ctx context.Context, target domain.TargetRef) ([]*domain.Confirmation, error) {
	query := `
		SELECT ` + confirmationColumns + `
		FROM confirmations
		WHERE target_kind = $1 AND target_id = $2
		ORDER BY created_at DESC
	`
	rows, err := r.q.QueryContext(ctx, query, target.Kind, target.ID)
	if err != nil {
		return nil, err
	}
	return r.scanAll(rows)
}

func (r *ConfirmationRepository) scanOne(row *sql.Row) (*domain.Confirmation, error) {
	var c domain.Confirmation
	var reason sql.NullString
	var message sql.NullString
	var confirmedAt sql.NullTime

	err := row.Scan(
		&c.ID,
		&c.Target.Kind,
		&c.Target.ID,
		&c.OwnerID,
		&c.PassengerID,
		&c.Status,
		&reason,
		&message,
		&c.DepartureAt,
		&c.CreatedAt,
		&confirmedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if reason.Valid {
		c.Reason = domain.TerminalReason(reason.String)
	}
	if message.Valid {
		c.Message = message.String
	}
	if confirmedAt.Valid {
		c.ConfirmedAt = confirmedAt.Time
	}

	return &c, nil
}

func (r *ConfirmationRepository) scanAll(rows *sql.Rows) ([]*domain.Confirmation, error) {
	defer rows.Close()

	var confirmations []*domain.Confirmation
	for rows.Next() {
		var c domain.Confirmation
		var reason sql.NullString
		var message sql.NullString
		var confirmedAt sql.NullTime

		if err := rows.Scan(
			&c.ID,
			&c.Target.Kind,
			&c.Target.ID,
			&c.OwnerID,
			&c.PassengerID,
			&c.Status,
			&reason,
			&message,
			&c.DepartureAt,
			&c.CreatedAt,
			&confirmedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, err
		}

		if reason.Valid {
			c.Reason = domain.TerminalReason(reason.String)
		}
		if message.Valid {
			c.Message = message.String
		}
		if confirmedAt.Valid {
			c.ConfirmedAt = confirmedAt.Time
		}

		confirmations = append(confirmations, &c)
	}
	return confirmations, rows.Err()
}
