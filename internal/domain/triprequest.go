package domain

import "time"

// TripRequestStatus represents the current status of a trip request.
type TripRequestStatus string

const (
	TripRequestStatusActive    TripRequestStatus = "ACTIVE"
	TripRequestStatusClosed    TripRequestStatus = "CLOSED"
	TripRequestStatusCancelled TripRequestStatus = "CANCELLED"
)

// TripRequest is a rider-posted request that drivers compete for via offers.
// It is created ACTIVE, moves to CLOSED when an offer is accepted, and back
// to ACTIVE if that acceptance is later undone. CANCELLED is written only by
// the rider-withdrawal flow outside this engine; here it just means
// "not ACTIVE".
type TripRequest struct {
	ID                 string
	RiderID            string
	Origin             string
	Destination        string
	EarliestDeparture  time.Time
	LatestDeparture    time.Time
	PreferredDeparture time.Time // zero if the rider did not state one
	DistanceCategory   DistanceCategory
	SeatsNeeded        int
	Status             TripRequestStatus
	PickupNotes        string
	DropoffNotes       string
	CreatedAt          time.Time
}
