package postgres

import (
	"context"
	"database/sql"
	"errors"

	"campusride/internal/domain"
	"campusride/internal/repository"
)

// OfferRepository is a PostgreSQL implementation of
// repository.OfferRepository.
type OfferRepository struct {
	q Querier
}

// NewOfferRepository creates a new PostgreSQL offer repository.
func NewOfferRepository(db *sql.DB) *OfferRepository {
	return &OfferRepository{q: db}
}

const offerColumns = `id, trip_request_id, driver_id, rider_id, seats, price_cents, message, status, created_at`

// Create persists a new offer. The partial unique index on
// (trip_request_id, driver_id) over non-terminal statuses rejects a second
// live offer from the same driver; that surfaces here as ErrDuplicate.
func (r *OfferRepository) Create(ctx context.Context, offer *domain.Offer) error {
	query := `
		INSERT INTO offers (` + offerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var message sql.NullString
	if offer.Message != "" {
		message = sql.NullString{String: offer.Message, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		offer.ID,
		offer.TripRequestID,
		offer.DriverID,
		offer.RiderID,
		offer.Seats,
		offer.PriceCents,
		message,
		offer.Status,
		offer.CreatedAt,
	)

	return mapInsertErr(err)
}

// GetByID retrieves an offer by ID.
func (r *OfferRepository) GetByID(ctx context.Context, id string) (*domain.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`

	offer, err := scanOffer(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return offer, nil
}

// ListByTripRequest retrieves all offers on a trip request, newest first.
func (r *OfferRepository) ListByTripRequest(ctx context.Context, tripRequestID string) ([]*domain.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE trip_request_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.q.QueryContext(ctx, query, tripRequestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []*domain.Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, offer)
	}
	return offers, rows.Err()
}

// GetActive retrieves the driver's non-terminal offer on the trip request.
func (r *OfferRepository) GetActive(ctx context.Context, tripRequestID, driverID string) (*domain.Offer, error) {
	query := `
		SELECT ` + offerColumns + ` FROM offers
		WHERE trip_request_id = $1 AND driver_id = $2 AND status IN ($3, $4)
	`

	offer, err := scanOffer(r.q.QueryRowContext(ctx, query, tripRequestID, driverID, domain.OfferStatusPending, domain.OfferStatusAccepted))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return offer, nil
}

// GetAccepted retrieves the trip request's ACCEPTED offer.
func (r *OfferRepository) GetAccepted(ctx context.Context, tripRequestID string) (*domain.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE trip_request_id = $1 AND status = $2`

	offer, err := scanOffer(r.q.QueryRowContext(ctx, query, tripRequestID, domain.OfferStatusAccepted))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return offer, nil
}

// UpdateStatus transitions the offer between statuses, guarded on the
// expected current status.
func (r *OfferRepository) UpdateStatus(ctx context.Context, id string, from, to domain.OfferStatus) (bool, error) {
	query := `UPDATE offers SET status = $3 WHERE id = $1 AND status = $2`

	result, err := r.q.ExecContext(ctx, query, id, from, to)
	if err != nil {
		return false, mapInsertErr(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// CancelPendingExcept cancels every PENDING offer on the trip request except
// the given one. Used to sweep the losing offers when one is accepted.
func (r *OfferRepository) CancelPendingExcept(ctx context.Context, tripRequestID, exceptOfferID string) (int, error) {
	query := `UPDATE offers SET status = $3 WHERE trip_request_id = $1 AND status = $4 AND id <> $2`

	result, err := r.q.ExecContext(ctx, query, tripRequestID, exceptOfferID, domain.OfferStatusCancelled, domain.OfferStatusPending)
	if err != nil {
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(affected), nil
}

func scanOffer(row rowScanner) (*domain.Offer, error) {
	var offer domain.Offer
	var message sql.NullString

	err := row.Scan(
		&offer.ID,
		&offer.TripRequestID,
		&offer.DriverID,
		&offer.RiderID,
		&offer.Seats,
		&offer.PriceCents,
		&message,
		&offer.Status,
		&offer.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if message.Valid {
		offer.Message = message.String
	}

	return &offer, nil
}
