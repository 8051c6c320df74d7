package redis

import (
	"context"

	"campusride/internal/domain"
)

// ListingCacheInterface defines the listing cache operations. Services take
// this interface (nil disables caching) so tests can run without Redis.
type ListingCacheInterface interface {
	GetRides(ctx context.Context) ([]*domain.Ride, error)
	SetRides(ctx context.Context, rides []*domain.Ride) error
	InvalidateRides(ctx context.Context) error

	GetTripRequests(ctx context.Context) ([]*domain.TripRequest, error)
	SetTripRequests(ctx context.Context, trs []*domain.TripRequest) error
	InvalidateTripRequests(ctx context.Context) error
}

// Ensure concrete type implements the interface.
var _ ListingCacheInterface = (*ListingCache)(nil)
