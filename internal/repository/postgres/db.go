package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"campusride/internal/repository"
)

// Querier is an interface satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Ensure interfaces are satisfied.
var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// uniqueViolation is the PostgreSQL error code for unique_violation.
const uniqueViolation = pq.ErrorCode("23505")

// isUniqueViolation reports whether err is a unique-constraint rejection.
// This is the constraint backstop the engine's concurrency model relies on:
// the loser of a race sees this, rolls back, and re-reads.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// mapInsertErr translates unique violations into repository.ErrDuplicate so
// callers above the postgres layer never see driver-level errors.
func mapInsertErr(err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// Store implements repository.Store over a PostgreSQL connection pool.
type Store struct {
	db *sql.DB
}

// Ensure interface is satisfied.
var _ repository.Store = (*Store)(nil)

// NewStore creates a new PostgreSQL-backed store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func reposFor(q Querier) repository.Repositories {
	return repository.Repositories{
		Users:        &UserRepository{q: q},
		Rides:        &RideRepository{q: q},
		TripRequests: &TripRequestRepository{q: q},
		Offers:       &OfferRepository{q: q},
		Bookings:     &BookingRepository{q: q},
		Idempotency:  &IdempotencyRepository{q: q},
	}
}

// Repos returns repositories bound to the base connection pool.
func (s *Store) Repos() repository.Repositories {
	return reposFor(s.db)
}

// RunInTx runs fn inside a single transaction. Unique violations raised at
// commit time are mapped to repository.ErrDuplicate like any other insert
// rejection.
func (s *Store) RunInTx(ctx context.Context, fn func(repository.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(reposFor(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return mapInsertErr(err)
	}

	return nil
}
