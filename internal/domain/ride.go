package domain

import "time"

// RideStatus represents the current status of a posted ride.
type RideStatus string

const (
	RideStatusActive RideStatus = "ACTIVE"
)

// DistanceCategory buckets a trip by rough length.
type DistanceCategory string

const (
	DistanceShort  DistanceCategory = "SHORT"
	DistanceMedium DistanceCategory = "MEDIUM"
	DistanceLong   DistanceCategory = "LONG"
)

// Ride is a driver-posted ride with a fixed seat inventory that riders book
// directly. SeatsAvailable is owned by the inventory operations on the ride
// repository; no other code path may write it. Invariant:
// 0 <= SeatsAvailable <= SeatsTotal, with the two equal at creation.
type Ride struct {
	ID                 string
	DriverID           string
	Origin             string
	Destination        string
	EarliestDeparture  time.Time
	LatestDeparture    time.Time
	PreferredDeparture time.Time // zero if the driver did not state one
	DistanceCategory   DistanceCategory
	PriceCents         int64
	SeatsTotal         int
	SeatsAvailable     int
	Status             RideStatus
	PickupNotes        string
	DropoffNotes       string
	CreatedAt          time.Time
}

// Departed reports whether the ride's departure window has closed.
func (r *Ride) Departed(now time.Time) bool {
	return !r.LatestDeparture.After(now)
}
