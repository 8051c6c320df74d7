package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"campusride/internal/domain"
	"campusride/internal/pagination"
	"campusride/internal/repository"
)

// TripRequestRepository is a PostgreSQL implementation of
// repository.TripRequestRepository.
type TripRequestRepository struct {
	q Querier
}

// NewTripRequestRepository creates a new PostgreSQL trip request repository.
func NewTripRequestRepository(db *sql.DB) *TripRequestRepository {
	return &TripRequestRepository{q: db}
}

const tripRequestColumns = `id, rider_id, origin, destination, earliest_departure, latest_departure, preferred_departure, distance_category, seats_needed, status, pickup_notes, dropoff_notes, created_at`

// Create persists a new trip request.
func (r *TripRequestRepository) Create(ctx context.Context, tr *domain.TripRequest) error {
	query := `
		INSERT INTO trip_requests (` + tripRequestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	var preferred sql.NullTime
	if !tr.PreferredDeparture.IsZero() {
		preferred = sql.NullTime{Time: tr.PreferredDeparture, Valid: true}
	}

	var pickupNotes, dropoffNotes sql.NullString
	if tr.PickupNotes != "" {
		pickupNotes = sql.NullString{String: tr.PickupNotes, Valid: true}
	}
	if tr.DropoffNotes != "" {
		dropoffNotes = sql.NullString{String: tr.DropoffNotes, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		tr.ID,
		tr.RiderID,
		tr.Origin,
		tr.Destination,
		tr.EarliestDeparture,
		tr.LatestDeparture,
		preferred,
		tr.DistanceCategory,
		tr.SeatsNeeded,
		tr.Status,
		pickupNotes,
		dropoffNotes,
		tr.CreatedAt,
	)

	return mapInsertErr(err)
}

// GetByID retrieves a trip request by ID.
func (r *TripRequestRepository) GetByID(ctx context.Context, id string) (*domain.TripRequest, error) {
	query := `SELECT ` + tripRequestColumns + ` FROM trip_requests WHERE id = $1`

	tr, err := scanTripRequest(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return tr, nil
}

// List returns ACTIVE, not-yet-departed trip requests matching the filter,
// in keyset order after the cursor.
func (r *TripRequestRepository) List(ctx context.Context, filter repository.TripRequestFilter, after *pagination.Cursor, limit int) ([]*domain.TripRequest, error) {
	query := `SELECT ` + tripRequestColumns + ` FROM trip_requests WHERE status = $1 AND latest_departure > $2`
	args := []any{domain.TripRequestStatusActive, time.Now()}

	if filter.Origin != "" {
		args = append(args, "%"+filter.Origin+"%")
		query += fmt.Sprintf(" AND origin ILIKE $%d", len(args))
	}
	if filter.Destination != "" {
		args = append(args, "%"+filter.Destination+"%")
		query += fmt.Sprintf(" AND destination ILIKE $%d", len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND distance_category = $%d", len(args))
	}
	if filter.MaxSeats > 0 {
		args = append(args, filter.MaxSeats)
		query += fmt.Sprintf(" AND seats_needed <= $%d", len(args))
	}
	if after != nil {
		args = append(args, after.Time, after.ID)
		query += fmt.Sprintf(" AND (earliest_departure, id) > ($%d, $%d)", len(args)-1, len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY earliest_departure ASC, id ASC LIMIT $%d", len(args))

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trs []*domain.TripRequest
	for rows.Next() {
		tr, err := scanTripRequest(rows)
		if err != nil {
			return nil, err
		}
		trs = append(trs, tr)
	}
	return trs, rows.Err()
}

// UpdateStatus transitions the trip request between statuses, guarded on the
// expected current status.
func (r *TripRequestRepository) UpdateStatus(ctx context.Context, id string, from, to domain.TripRequestStatus) (bool, error) {
	query := `UPDATE trip_requests SET status = $3 WHERE id = $1 AND status = $2`

	result, err := r.q.ExecContext(ctx, query, id, from, to)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func scanTripRequest(row rowScanner) (*domain.TripRequest, error) {
	var tr domain.TripRequest
	var preferred sql.NullTime
	var pickupNotes, dropoffNotes sql.NullString

	err := row.Scan(
		&tr.ID,
		&tr.RiderID,
		&tr.Origin,
		&tr.Destination,
		&tr.EarliestDeparture,
		&tr.LatestDeparture,
		&preferred,
		&tr.DistanceCategory,
		&tr.SeatsNeeded,
		&tr.Status,
		&pickupNotes,
		&dropoffNotes,
		&tr.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if preferred.Valid {
		tr.PreferredDeparture = preferred.Time
	}
	if pickupNotes.Valid {
		tr.PickupNotes = pickupNotes.String
	}
	if dropoffNotes.Valid {
		tr.DropoffNotes = dropoffNotes.String
	}

	return &tr, nil
}
