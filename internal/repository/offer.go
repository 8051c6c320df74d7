package repository

import (
	"context"

	"campusride/internal/domain"
)

// OfferRepository defines the persistence operations for offers.
type OfferRepository interface {
	// Create persists a new offer. Returns ErrDuplicate when the driver
	// already holds a non-terminal offer on the same trip request.
	Create(ctx context.Context, offer *domain.Offer) error

	// GetByID retrieves an offer by ID.
	GetByID(ctx context.Context, id string) (*domain.Offer, error)

	// ListByTripRequest retrieves all offers on a trip request, newest first.
	ListByTripRequest(ctx context.Context, tripRequestID string) ([]*domain.Offer, error)

	// GetActive retrieves the driver's non-terminal (PENDING or ACCEPTED)
	// offer on the trip request. Returns nil if none exists.
	GetActive(ctx context.Context, tripRequestID, driverID string) (*domain.Offer, error)

	// GetAccepted retrieves the trip request's ACCEPTED offer.
	// Returns nil if none exists.
	GetAccepted(ctx context.Context, tripRequestID string) (*domain.Offer, error)

	// UpdateStatus transitions the offer from one status to another.
	// Returns false (and no error) when the row is absent or not in the
	// expected from status.
	UpdateStatus(ctx context.Context, id string, from, to domain.OfferStatus) (bool, error)

	// CancelPendingExcept sets every PENDING offer on the trip request to
	// CANCELLED, except the given offer. Returns the number of offers
	// cancelled.
	CancelPendingExcept(ctx context.Context, tripRequestID, exceptOfferID string) (int, error)
}
