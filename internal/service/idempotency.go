package service

import (
	"context"
	"errors"

	"campusride/internal/domain"
	"campusride/internal/observability"
	"campusride/internal/repository"
)

// The idempotency ledger maps (actor, client key, operation kind) to the
// entity that operation created. The helpers below implement the read side:
// a hit loads and returns the stored entity verbatim; a record whose entity
// no longer loads is corrupt and is deleted so the retry proceeds as a fresh
// create. The write side is a plain Idempotency.Create in the same
// transaction as the entity insert — the unique constraint on the triple is
// what decides the winner when two first uses race.

func replayedRide(ctx context.Context, r repository.Repositories, actorID, key string) (*domain.Ride, error) {
	rec, err := r.Idempotency.Get(ctx, actorID, key, domain.OperationKindRide)
	if err != nil || rec == nil {
		return nil, err
	}

	ride, err := r.Rides.GetByID(ctx, rec.RideID)
	if rec.RideID == "" || errors.Is(err, repository.ErrNotFound) {
		return nil, discardCorrupt(ctx, r, actorID, key, domain.OperationKindRide)
	}
	if err != nil {
		return nil, err
	}

	observability.IdempotentReplays.Inc()
	return ride, nil
}

func replayedTripRequest(ctx context.Context, r repository.Repositories, actorID, key string) (*domain.TripRequest, error) {
	rec, err := r.Idempotency.Get(ctx, actorID, key, domain.OperationKindTripRequest)
	if err != nil || rec == nil {
		return nil, err
	}

	tr, err := r.TripRequests.GetByID(ctx, rec.TripRequestID)
	if rec.TripRequestID == "" || errors.Is(err, repository.ErrNotFound) {
		return nil, discardCorrupt(ctx, r, actorID, key, domain.OperationKindTripRequest)
	}
	if err != nil {
		return nil, err
	}

	observability.IdempotentReplays.Inc()
	return tr, nil
}

func replayedOffer(ctx context.Context, r repository.Repositories, actorID, key string) (*domain.Offer, error) {
	rec, err := r.Idempotency.Get(ctx, actorID, key, domain.OperationKindOffer)
	if err != nil || rec == nil {
		return nil, err
	}

	offer, err := r.Offers.GetByID(ctx, rec.OfferID)
	if rec.OfferID == "" || errors.Is(err, repository.ErrNotFound) {
		return nil, discardCorrupt(ctx, r, actorID, key, domain.OperationKindOffer)
	}
	if err != nil {
		return nil, err
	}

	observability.IdempotentReplays.Inc()
	return offer, nil
}

func replayedBooking(ctx context.Context, r repository.Repositories, actorID, key string) (*domain.Booking, error) {
	rec, err := r.Idempotency.Get(ctx, actorID, key, domain.OperationKindBooking)
	if err != nil || rec == nil {
		return nil, err
	}

	booking, err := r.Bookings.GetByID(ctx, rec.BookingID)
	if rec.BookingID == "" || errors.Is(err, repository.ErrNotFound) {
		return nil, discardCorrupt(ctx, r, actorID, key, domain.OperationKindBooking)
	}
	if err != nil {
		return nil, err
	}

	observability.IdempotentReplays.Inc()
	return booking, nil
}

// discardCorrupt deletes a ledger record whose entity is missing and lets
// the caller take the fresh-create path. Never surfaced to the client.
func discardCorrupt(ctx context.Context, r repository.Repositories, actorID, key string, kind domain.OperationKind) error {
	observability.IdempotencyCorruptRecords.Inc()
	return r.Idempotency.Delete(ctx, actorID, key, kind)
}
