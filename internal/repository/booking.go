package repository

import (
	"context"
	"time"

	"campusride/internal/domain"
)

// BookingRepository defines the persistence operations for bookings.
type BookingRepository interface {
	// Create persists a new booking. Returns ErrDuplicate when the rider
	// already holds a CONFIRMED booking on the same ride.
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by ID.
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// GetConfirmedByRideAndRider retrieves the rider's CONFIRMED booking on
	// a ride. Returns nil if none exists.
	GetConfirmedByRideAndRider(ctx context.Context, rideID, riderID string) (*domain.Booking, error)

	// GetConfirmedMatched retrieves the CONFIRMED booking produced by
	// accepting the given driver's offer on the trip request.
	// Returns nil if none exists.
	GetConfirmedMatched(ctx context.Context, tripRequestID, driverID string) (*domain.Booking, error)

	// Cancel transitions the booking from CONFIRMED to CANCELLED, stamping
	// the cancellation time. Returns false (and no error) when the row is
	// absent or not CONFIRMED.
	Cancel(ctx context.Context, id string, at time.Time) (bool, error)
}
