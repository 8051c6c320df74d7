package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"campusride/internal/domain"
)

// ListingCache caches the default first page of the two browse listings.
// Filtered or cursored pages are never cached; they are cheap keyset scans
// and the combinations would thrash the cache. Any write that changes what
// the listing shows invalidates the page.
type ListingCache struct {
	client *redis.Client
}

// NewListingCache creates a new ListingCache.
func NewListingCache(client *redis.Client) *ListingCache {
	return &ListingCache{client: client}
}

// ListingTTL is deliberately short: listings tolerate a few seconds of
// staleness, bookings and offers never go through this path.
const ListingTTL = 5 * time.Second

const (
	rideListKey        = "cache:listing:rides"
	tripRequestListKey = "cache:listing:trip_requests"
)

// GetRides retrieves the cached first page of rides. Returns nil on miss.
func (c *ListingCache) GetRides(ctx context.Context) ([]*domain.Ride, error) {
	data, err := c.client.Get(ctx, rideListKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var rides []*domain.Ride
	if err := json.Unmarshal(data, &rides); err != nil {
		return nil, err
	}
	return rides, nil
}

// SetRides stores the first page of rides.
func (c *ListingCache) SetRides(ctx context.Context, rides []*domain.Ride) error {
	data, err := json.Marshal(rides)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, rideListKey, data, ListingTTL).Err()
}

// InvalidateRides drops the cached ride page.
func (c *ListingCache) InvalidateRides(ctx context.Context) error {
	return c.client.Del(ctx, rideListKey).Err()
}

// GetTripRequests retrieves the cached first page of trip requests.
// Returns nil on miss.
func (c *ListingCache) GetTripRequests(ctx context.Context) ([]*domain.TripRequest, error) {
	data, err := c.client.Get(ctx, tripRequestListKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var trs []*domain.TripRequest
	if err := json.Unmarshal(data, &trs); err != nil {
		return nil, err
	}
	return trs, nil
}

// SetTripRequests stores the first page of trip requests.
func (c *ListingCache) SetTripRequests(ctx context.Context, trs []*domain.TripRequest) error {
	data, err := json.Marshal(trs)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, tripRequestListKey, data, ListingTTL).Err()
}

// InvalidateTripRequests drops the cached trip request page.
func (c *ListingCache) InvalidateTripRequests(ctx context.Context) error {
	return c.client.Del(ctx, tripRequestListKey).Err()
}
