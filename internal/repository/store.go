package repository

import "context"

// Repositories bundles one repository per entity. Inside RunInTx every
// repository in the set is scoped to the same transaction.
type Repositories struct {
	Users        UserRepository
	Rides        RideRepository
	TripRequests TripRequestRepository
	Offers       OfferRepository
	Bookings     BookingRepository
	Idempotency  IdempotencyRepository
}

// Store is the unit of concurrency control. Every mutating marketplace
// operation runs as exactly one RunInTx call: idempotency check, guarded
// mutation, idempotency commit — all atomic. If fn returns an error the
// transaction is rolled back in full; no partial state is ever visible.
type Store interface {
	// Repos returns repositories bound to the base connection, for reads
	// that need no transaction.
	Repos() Repositories

	// RunInTx runs fn inside a single transaction, committing when fn
	// returns nil and rolling back otherwise.
	RunInTx(ctx context.Context, fn func(Repositories) error) error
}
