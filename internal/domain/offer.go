package domain

import "time"

// OfferStatus represents the current status of an offer.
type OfferStatus string

const (
	OfferStatusPending   OfferStatus = "PENDING"
	OfferStatusAccepted  OfferStatus = "ACCEPTED"
	OfferStatusCancelled OfferStatus = "CANCELLED"
)

// Offer is a driver's bid on a trip request. RiderID is denormalized from
// the trip request so offers can be indexed per rider. A driver holds at
// most one non-terminal (PENDING or ACCEPTED) offer per trip request, and a
// trip request has at most one ACCEPTED offer at any time; both are enforced
// by partial unique indexes in addition to the application checks.
type Offer struct {
	ID            string
	TripRequestID string
	DriverID      string
	RiderID       string
	Seats         int
	PriceCents    int64
	Message       string
	Status        OfferStatus
	CreatedAt     time.Time
}

// Terminal reports whether the offer can no longer change state on its own.
func (o *Offer) Terminal() bool {
	return o.Status == OfferStatusCancelled
}
