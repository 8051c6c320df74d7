package repository

import (
	"context"

	"campusride/internal/domain"
)

// IdempotencyRepository defines the persistence operations for the
// idempotency ledger. The (actor, key, kind) triple is the duplicate
// suppression scope; its unique constraint is the sole mechanism that
// decides the winner when two retries race on first use.
type IdempotencyRepository interface {
	// Get retrieves the record for the triple. Returns nil if none exists.
	Get(ctx context.Context, actorID, key string, kind domain.OperationKind) (*domain.IdempotencyRecord, error)

	// Create persists a new record. Returns ErrDuplicate when the triple is
	// already recorded.
	Create(ctx context.Context, rec *domain.IdempotencyRecord) error

	// Delete removes the record for the triple. Used only to clear a corrupt
	// record whose referenced entity no longer loads.
	Delete(ctx context.Context, actorID, key string, kind domain.OperationKind) error
}
