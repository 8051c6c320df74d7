package domain

import "time"

// BookingStatus represents the current status of a booking.
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// BookingKind tags which of the two marketplace flows produced a booking.
type BookingKind string

const (
	// BookingKindDirect is a rider booking seats on a driver-posted ride.
	BookingKindDirect BookingKind = "DIRECT"
	// BookingKindMatched is the booking created when a rider accepts a
	// driver's offer on their trip request.
	BookingKindMatched BookingKind = "MATCHED"
)

// Booking is a confirmed reservation. Exactly one of RideID and
// TripRequestID is set: RideID for the direct flow, TripRequestID (plus the
// offering driver's DriverID) for the matched flow. At most one CONFIRMED
// booking exists per (ride, rider) pair.
type Booking struct {
	ID            string
	RideID        string // direct flow only
	TripRequestID string // matched flow only
	DriverID      string
	RiderID       string
	Seats         int
	PriceCents    int64
	Status        BookingStatus
	CreatedAt     time.Time
	CancelledAt   time.Time
}

// Kind reports which flow produced the booking.
func (b *Booking) Kind() BookingKind {
	if b.RideID != "" {
		return BookingKindDirect
	}
	return BookingKindMatched
}
