package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"campusride/internal/domain"
	"campusride/internal/pagination"
	"campusride/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

const rideColumns = `id, driver_id, origin, destination, earliest_departure, latest_departure, preferred_departure, distance_category, price_cents, seats_total, seats_available, status, pickup_notes, dropoff_notes, created_at`

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	var preferred sql.NullTime
	if !ride.PreferredDeparture.IsZero() {
		preferred = sql.NullTime{Time: ride.PreferredDeparture, Valid: true}
	}

	var pickupNotes, dropoffNotes sql.NullString
	if ride.PickupNotes != "" {
		pickupNotes = sql.NullString{String: ride.PickupNotes, Valid: true}
	}
	if ride.DropoffNotes != "" {
		dropoffNotes = sql.NullString{String: ride.DropoffNotes, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.DriverID,
		ride.Origin,
		ride.Destination,
		ride.EarliestDeparture,
		ride.LatestDeparture,
		preferred,
		ride.DistanceCategory,
		ride.PriceCents,
		ride.SeatsTotal,
		ride.SeatsAvailable,
		ride.Status,
		pickupNotes,
		dropoffNotes,
		ride.CreatedAt,
	)

	return mapInsertErr(err)
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return ride, nil
}

// List returns ACTIVE, not-yet-departed rides matching the filter, in keyset
// order after the cursor.
func (r *RideRepository) List(ctx context.Context, filter repository.RideFilter, after *pagination.Cursor, limit int) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE status = $1 AND latest_departure > $2`
	args := []any{domain.RideStatusActive, time.Now()}

	if filter.Origin != "" {
		args = append(args, "%"+filter.Origin+"%")
		query += fmt.Sprintf(" AND origin ILIKE $%d", len(args))
	}
	if filter.Destination != "" {
		args = append(args, "%"+filter.Destination+"%")
		query += fmt.Sprintf(" AND destination ILIKE $%d", len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND distance_category = $%d", len(args))
	}
	if filter.MinSeats > 0 {
		args = append(args, filter.MinSeats)
		query += fmt.Sprintf(" AND seats_available >= $%d", len(args))
	}
	if after != nil {
		args = append(args, after.Time, after.ID)
		query += fmt.Sprintf(" AND (earliest_departure, id) > ($%d, $%d)", len(args)-1, len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY earliest_departure ASC, id ASC LIMIT $%d", len(args))

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

// ReserveSeats is the conditional decrement behind direct bookings. The
// WHERE clause carries every guard, so the update touches exactly one row
// iff the ride is ACTIVE, not yet departed, and has enough seats left; any
// concurrent reservation that would overshoot simply affects zero rows.
func (r *RideRepository) ReserveSeats(ctx context.Context, rideID string, seats int, now time.Time) (bool, error) {
	query := `
		UPDATE rides
		SET seats_available = seats_available - $2
		WHERE id = $1 AND status = $3 AND latest_departure > $4 AND seats_available >= $2
	`

	result, err := r.q.ExecContext(ctx, query, rideID, seats, domain.RideStatusActive, now)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// ReleaseSeats reverses a prior successful ReserveSeats of the same
// magnitude.
func (r *RideRepository) ReleaseSeats(ctx context.Context, rideID string, seats int) error {
	query := `UPDATE rides SET seats_available = seats_available + $2 WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, rideID, seats)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (*domain.Ride, error) {
	var ride domain.Ride
	var preferred sql.NullTime
	var pickupNotes, dropoffNotes sql.NullString

	err := row.Scan(
		&ride.ID,
		&ride.DriverID,
		&ride.Origin,
		&ride.Destination,
		&ride.EarliestDeparture,
		&ride.LatestDeparture,
		&preferred,
		&ride.DistanceCategory,
		&ride.PriceCents,
		&ride.SeatsTotal,
		&ride.SeatsAvailable,
		&ride.Status,
		&pickupNotes,
		&dropoffNotes,
		&ride.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if preferred.Valid {
		ride.PreferredDeparture = preferred.Time
	}
	if pickupNotes.Valid {
		ride.PickupNotes = pickupNotes.String
	}
	if dropoffNotes.Valid {
		ride.DropoffNotes = dropoffNotes.String
	}

	return &ride, nil
}
