package service

import "errors"

// Validation errors. The outer layer validates field syntax before the core
// is invoked, but creation boundaries re-check defensively.
var (
	// ErrInvalidActor is returned when the actor id is empty.
	ErrInvalidActor = errors.New("actor id is required")

	// ErrInvalidIdempotencyKey is returned when a replay-safe create is
	// attempted without a client key.
	ErrInvalidIdempotencyKey = errors.New("idempotency key is required")

	// ErrInvalidRoute is returned when origin or destination is empty.
	ErrInvalidRoute = errors.New("origin and destination are required")

	// ErrInvalidWindow is returned when the earliest departure does not
	// precede the latest.
	ErrInvalidWindow = errors.New("earliest departure must precede latest departure")

	// ErrWindowTooWide is returned when the departure window exceeds 48h.
	ErrWindowTooWide = errors.New("departure window exceeds 48 hours")

	// ErrWindowClosed is returned when the latest departure is already in
	// the past at creation time.
	ErrWindowClosed = errors.New("departure window has already closed")

	// ErrPreferredOutsideWindow is returned when the preferred departure
	// falls outside [earliest, latest].
	ErrPreferredOutsideWindow = errors.New("preferred departure outside the departure window")

	// ErrInvalidCategory is returned when the distance category is unknown.
	ErrInvalidCategory = errors.New("invalid distance category")

	// ErrInvalidSeats is returned when a seat count is out of range.
	ErrInvalidSeats = errors.New("seats must be between 1 and 8")

	// ErrInvalidPrice is returned when a price is negative.
	ErrInvalidPrice = errors.New("price must not be negative")

	// ErrSelfOffer is returned when a driver offers on their own trip
	// request.
	ErrSelfOffer = errors.New("cannot offer on your own trip request")

	// ErrOwnRideBooking is returned when a driver books seats on their own
	// ride.
	ErrOwnRideBooking = errors.New("cannot book seats on your own ride")
)

// Permission errors.
var (
	// ErrNotTripRequestOwner is returned when someone other than the trip
	// request's rider accepts an offer on it.
	ErrNotTripRequestOwner = errors.New("only the trip request's rider may accept offers")

	// ErrNotOfferParty is returned when someone other than the offer's
	// driver or rider cancels it.
	ErrNotOfferParty = errors.New("only the offer's driver or rider may cancel it")

	// ErrNotBookingOwner is returned when someone other than the booking's
	// rider cancels it.
	ErrNotBookingOwner = errors.New("only the booking's rider may cancel it")

	// ErrNotBookingParty is returned when someone other than the booking's
	// rider or driver reads it.
	ErrNotBookingParty = errors.New("only the booking's rider or driver may view it")
)

// State-guard (conflict) errors.
var (
	// ErrTripRequestNotActive is returned when the trip request cannot take
	// offers.
	ErrTripRequestNotActive = errors.New("trip request is not active")

	// ErrDuplicateOffer is returned when the driver already holds a live
	// offer on the trip request.
	ErrDuplicateOffer = errors.New("driver already has an active offer on this trip request")

	// ErrOfferNotPending is returned when accepting an offer that is no
	// longer pending.
	ErrOfferNotPending = errors.New("offer is not pending")

	// ErrOfferAlreadyAccepted is returned when the trip request already has
	// an accepted offer.
	ErrOfferAlreadyAccepted = errors.New("trip request already has an accepted offer")

	// ErrAcceptedOfferDriverCancel is returned when a driver tries to
	// withdraw an offer the rider already accepted.
	ErrAcceptedOfferDriverCancel = errors.New("drivers cannot withdraw an accepted offer")

	// ErrOfferStateChanged is returned when an offer's status moved under a
	// concurrent operation mid-cancellation.
	ErrOfferStateChanged = errors.New("offer state changed, retry")

	// ErrRideNotActive is returned when the ride cannot take bookings.
	ErrRideNotActive = errors.New("ride is not active")

	// ErrRideDeparted is returned when the ride's departure window has
	// closed.
	ErrRideDeparted = errors.New("ride has already departed")

	// ErrNotEnoughSeats is returned when fewer seats remain than requested.
	ErrNotEnoughSeats = errors.New("not enough seats available")

	// ErrDuplicateBooking is returned when the rider already holds a
	// confirmed booking on the ride.
	ErrDuplicateBooking = errors.New("rider already has a confirmed booking on this ride")

	// ErrMatchedBookingCancel is returned when a matched booking is
	// cancelled directly instead of through its offer.
	ErrMatchedBookingCancel = errors.New("matched bookings are cancelled through their offer")
)
