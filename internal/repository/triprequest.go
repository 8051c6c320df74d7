package repository

import (
	"context"

	"campusride/internal/domain"
	"campusride/internal/pagination"
)

// TripRequestFilter narrows trip request listings. Zero values mean
// "no filter".
type TripRequestFilter struct {
	Origin      string // substring match
	Destination string // substring match
	Category    domain.DistanceCategory
	MaxSeats    int // requests needing at most this many seats
}

// TripRequestRepository defines the persistence operations for trip requests.
type TripRequestRepository interface {
	// Create persists a new trip request.
	Create(ctx context.Context, tr *domain.TripRequest) error

	// GetByID retrieves a trip request by ID.
	GetByID(ctx context.Context, id string) (*domain.TripRequest, error)

	// List returns ACTIVE, not-yet-departed trip requests matching the
	// filter, ordered by (earliest departure, id) strictly after the cursor.
	List(ctx context.Context, filter TripRequestFilter, after *pagination.Cursor, limit int) ([]*domain.TripRequest, error)

	// UpdateStatus transitions the trip request from one status to another.
	// Returns false (and no error) when the row is absent or not in the
	// expected from status, so lost races surface as guard failures rather
	// than blind overwrites.
	UpdateStatus(ctx context.Context, id string, from, to domain.TripRequestStatus) (bool, error)
}
