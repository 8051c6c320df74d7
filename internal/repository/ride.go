package repository

import (
	"context"
	"time"

	"campusride/internal/domain"
	"campusride/internal/pagination"
)

// RideFilter narrows ride listings. Zero values mean "no filter".
type RideFilter struct {
	Origin      string // substring match
	Destination string // substring match
	Category    domain.DistanceCategory
	MinSeats    int // minimum seats still available
}

// RideRepository defines the persistence operations for rides. ReserveSeats
// and ReleaseSeats are the only two paths that may write SeatsAvailable.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// List returns ACTIVE, not-yet-departed rides matching the filter,
	// ordered by (earliest departure, id) strictly after the cursor.
	List(ctx context.Context, filter RideFilter, after *pagination.Cursor, limit int) ([]*domain.Ride, error)

	// ReserveSeats atomically decrements SeatsAvailable by seats, but only
	// if the ride is ACTIVE, its latest departure is after now, and enough
	// seats remain. Returns false (and no error) when any condition fails;
	// the caller re-reads the ride to classify the failure.
	ReserveSeats(ctx context.Context, rideID string, seats int, now time.Time) (bool, error)

	// ReleaseSeats atomically increments SeatsAvailable by seats. Used only
	// to reverse a previously successful ReserveSeats of the same magnitude,
	// which is what preserves SeatsAvailable <= SeatsTotal.
	ReleaseSeats(ctx context.Context, rideID string, seats int) error
}
