package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"campusride/internal/domain"
	"campusride/internal/repository"
)

// BookingRepository is a PostgreSQL implementation of
// repository.BookingRepository.
type BookingRepository struct {
	q Querier
}

// NewBookingRepository creates a new PostgreSQL booking repository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{q: db}
}

const bookingColumns = `id, ride_id, trip_request_id, driver_id, rider_id, seats, price_cents, status, created_at, cancelled_at`

// Create persists a new booking. The partial unique index on
// (ride_id, rider_id) over CONFIRMED rows rejects a second live direct
// booking from the same rider; that surfaces here as ErrDuplicate.
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	var rideID, tripRequestID sql.NullString
	if booking.RideID != "" {
		rideID = sql.NullString{String: booking.RideID, Valid: true}
	}
	if booking.TripRequestID != "" {
		tripRequestID = sql.NullString{String: booking.TripRequestID, Valid: true}
	}

	var cancelledAt sql.NullTime
	if !booking.CancelledAt.IsZero() {
		cancelledAt = sql.NullTime{Time: booking.CancelledAt, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		booking.ID,
		rideID,
		tripRequestID,
		booking.DriverID,
		booking.RiderID,
		booking.Seats,
		booking.PriceCents,
		booking.Status,
		booking.CreatedAt,
		cancelledAt,
	)

	return mapInsertErr(err)
}

// GetByID retrieves a booking by ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return booking, nil
}

// GetConfirmedByRideAndRider retrieves the rider's CONFIRMED booking on a
// ride.
func (r *BookingRepository) GetConfirmedByRideAndRider(ctx context.Context, rideID, riderID string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ride_id = $1 AND rider_id = $2 AND status = $3`

	booking, err := scanBooking(r.q.QueryRowContext(ctx, query, rideID, riderID, domain.BookingStatusConfirmed))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return booking, nil
}

// GetConfirmedMatched retrieves the CONFIRMED booking produced by accepting
// the given driver's offer on the trip request.
func (r *BookingRepository) GetConfirmedMatched(ctx context.Context, tripRequestID, driverID string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE trip_request_id = $1 AND driver_id = $2 AND status = $3`

	booking, err := scanBooking(r.q.QueryRowContext(ctx, query, tripRequestID, driverID, domain.BookingStatusConfirmed))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return booking, nil
}

// Cancel transitions the booking from CONFIRMED to CANCELLED.
func (r *BookingRepository) Cancel(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `UPDATE bookings SET status = $2, cancelled_at = $3 WHERE id = $1 AND status = $4`

	result, err := r.q.ExecContext(ctx, query, id, domain.BookingStatusCancelled, at, domain.BookingStatusConfirmed)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var rideID, tripRequestID sql.NullString
	var cancelledAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&rideID,
		&tripRequestID,
		&booking.DriverID,
		&booking.RiderID,
		&booking.Seats,
		&booking.PriceCents,
		&booking.Status,
		&booking.CreatedAt,
		&cancelledAt,
	)
	if err != nil {
		return nil, err
	}

	if rideID.Valid {
		booking.RideID = rideID.String
	}
	if tripRequestID.Valid {
		booking.TripRequestID = tripRequestID.String
	}
	if cancelledAt.Valid {
		booking.CancelledAt = cancelledAt.Time
	}

	return &booking, nil
}
