package domain

import "time"

// OperationKind identifies which create operation an idempotency record
// belongs to. The same client key may be reused across kinds.
type OperationKind string

const (
	OperationKindRide        OperationKind = "RIDE"
	OperationKindTripRequest OperationKind = "TRIP_REQUEST"
	OperationKindOffer       OperationKind = "OFFER"
	OperationKindBooking     OperationKind = "BOOKING"
)

// IdempotencyRecord maps (actor, client-supplied key, operation kind) to the
// entity created by that operation. Exactly one of the four references is
// set, matching Kind. Records are written in the same transaction as the
// entity they point to and are never updated afterwards; a record whose
// referenced entity cannot be loaded is corrupt and is deleted so the retry
// can proceed cleanly.
type IdempotencyRecord struct {
	ActorID       string
	Key           string
	Kind          OperationKind
	RideID        string
	TripRequestID string
	OfferID       string
	BookingID     string
	CreatedAt     time.Time
}

// EntityID returns the reference matching the record's kind.
func (r *IdempotencyRecord) EntityID() string {
	switch r.Kind {
	case OperationKindRide:
		return r.RideID
	case OperationKindTripRequest:
		return r.TripRequestID
	case OperationKindOffer:
		return r.OfferID
	case OperationKindBooking:
		return r.BookingID
	}
	return ""
}
