package postgres

import (
	"context"
	"database/sql"
	"errors"

	"campusride/internal/domain"
)

// IdempotencyRepository is a PostgreSQL implementation of
// repository.IdempotencyRepository.
type IdempotencyRepository struct {
	q Querier
}

// NewIdempotencyRepository creates a new PostgreSQL idempotency repository.
func NewIdempotencyRepository(db *sql.DB) *IdempotencyRepository {
	return &IdempotencyRepository{q: db}
}

// Get retrieves the record for the (actor, key, kind) triple.
func (r *IdempotencyRepository) Get(ctx context.Context, actorID, key string, kind domain.OperationKind) (*domain.IdempotencyRecord, error) {
	query := `
		SELECT actor_id, key, kind, ride_id, trip_request_id, offer_id, booking_id, created_at
		FROM idempotency_records
		WHERE actor_id = $1 AND key = $2 AND kind = $3
	`

	var rec domain.IdempotencyRecord
	var rideID, tripRequestID, offerID, bookingID sql.NullString

	err := r.q.QueryRowContext(ctx, query, actorID, key, kind).Scan(
		&rec.ActorID,
		&rec.Key,
		&rec.Kind,
		&rideID,
		&tripRequestID,
		&offerID,
		&bookingID,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if rideID.Valid {
		rec.RideID = rideID.String
	}
	if tripRequestID.Valid {
		rec.TripRequestID = tripRequestID.String
	}
	if offerID.Valid {
		rec.OfferID = offerID.String
	}
	if bookingID.Valid {
		rec.BookingID = bookingID.String
	}

	return &rec, nil
}

// Create persists a new record. The unique constraint on
// (actor_id, key, kind) makes the first committer win; the loser receives
// ErrDuplicate and replays the winner's result.
func (r *IdempotencyRepository) Create(ctx context.Context, rec *domain.IdempotencyRecord) error {
	query := `
		INSERT INTO idempotency_records (actor_id, key, kind, ride_id, trip_request_id, offer_id, booking_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var rideID, tripRequestID, offerID, bookingID sql.NullString
	if rec.RideID != "" {
		rideID = sql.NullString{String: rec.RideID, Valid: true}
	}
	if rec.TripRequestID != "" {
		tripRequestID = sql.NullString{String: rec.TripRequestID, Valid: true}
	}
	if rec.OfferID != "" {
		offerID = sql.NullString{String: rec.OfferID, Valid: true}
	}
	if rec.BookingID != "" {
		bookingID = sql.NullString{String: rec.BookingID, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		rec.ActorID,
		rec.Key,
		rec.Kind,
		rideID,
		tripRequestID,
		offerID,
		bookingID,
		rec.CreatedAt,
	)

	return mapInsertErr(err)
}

// Delete removes the record for the triple.
func (r *IdempotencyRepository) Delete(ctx context.Context, actorID, key string, kind domain.OperationKind) error {
	query := `DELETE FROM idempotency_records WHERE actor_id = $1 AND key = $2 AND kind = $3`

	_, err := r.q.ExecContext(ctx, query, actorID, key, kind)
	return err
}
