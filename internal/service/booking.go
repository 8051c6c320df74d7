package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"campusride/internal/domain"
	"campusride/internal/observability"
	"campusride/internal/redis"
	"campusride/internal/repository"
)

// BookingService handles the direct-ride booking flow. Matched bookings are
// created and cancelled only through OfferService.
type BookingService struct {
	store repository.Store
	cache redis.ListingCacheInterface
}

// NewBookingService creates a new BookingService. cache may be nil.
func NewBookingService(store repository.Store, cache redis.ListingCacheInterface) *BookingService {
	return &BookingService{store: store, cache: cache}
}

// CreateBookingRequest contains the parameters for booking seats on a ride.
type CreateBookingRequest struct {
	RiderID    string
	RiderEmail string
	Key        string
	RideID     string
	Seats      int
}

// CreateBooking books seats on an ACTIVE ride, or replays the booking
// previously created under the same (rider, key). The seat decrement and the
// booking insert commit in one transaction, so a booking that loses against
// the live-booking constraint never leaks seats. The returned bool reports a
// replay.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, bool, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, false, err
	}

	now := time.Now()
	var result *domain.Booking
	replayed := false

	err := s.store.RunInTx(ctx, func(r repository.Repositories) error {
		if err := r.Users.Ensure(ctx, &domain.User{ID: req.RiderID, Email: req.RiderEmail, CreatedAt: now}); err != nil {
			return err
		}

		prev, err := replayedBooking(ctx, r, req.RiderID, req.Key)
		if err != nil {
			return err
		}
		if prev != nil {
			result, replayed = prev, true
			return nil
		}

		ride, err := r.Rides.GetByID(ctx, req.RideID)
		if err != nil {
			return err
		}
		if ride.DriverID == req.RiderID {
			return ErrOwnRideBooking
		}

		ok, err := r.Rides.ReserveSeats(ctx, req.RideID, req.Seats, now)
		if err != nil {
			return err
		}
		if !ok {
			observability.SeatConflicts.Inc()
			return s.classifyReserveFailure(ctx, r, req.RideID, req.Seats, now)
		}

		b := &domain.Booking{
			ID:         uuid.New().String(),
			RideID:     ride.ID,
			DriverID:   ride.DriverID,
			RiderID:    req.RiderID,
			Seats:      req.Seats,
			PriceCents: ride.PriceCents,
			Status:     domain.BookingStatusConfirmed,
			CreatedAt:  now,
		}
		if err := r.Bookings.Create(ctx, b); err != nil {
			return err
		}
		if err := r.Idempotency.Create(ctx, &domain.IdempotencyRecord{
			ActorID:   req.RiderID,
			Key:       req.Key,
			Kind:      domain.OperationKindBooking,
			BookingID: b.ID,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		result = b
		return nil
	})

	if errors.Is(err, repository.ErrDuplicate) {
		return s.classifyCreateConflict(ctx, req)
	}
	if err != nil {
		return nil, false, err
	}

	if !replayed {
		observability.BookingsCreated.Inc()
		s.invalidateListing(ctx)
	}

	return result, replayed, nil
}

// classifyReserveFailure re-reads the ride after a zero-row conditional
// decrement and reports the precise guard that failed, in priority order:
// missing, not active, departed, insufficient seats.
func (s *BookingService) classifyReserveFailure(ctx context.Context, r repository.Repositories, rideID string, seats int, now time.Time) error {
	ride, err := r.Rides.GetByID(ctx, rideID)
	if err != nil {
		return err
	}
	if ride.Status != domain.RideStatusActive {
		return ErrRideNotActive
	}
	if ride.Departed(now) {
		return ErrRideDeparted
	}
	return ErrNotEnoughSeats
}

// classifyCreateConflict turns a unique-constraint rejection during
// CreateBooking into its user-facing outcome: a replay if the idempotency
// triple won the race, otherwise the duplicate-booking conflict. The losing
// transaction was rolled back in full, so its seat decrement never happened.
func (s *BookingService) classifyCreateConflict(ctx context.Context, req CreateBookingRequest) (*domain.Booking, bool, error) {
	r := s.store.Repos()

	prev, err := replayedBooking(ctx, r, req.RiderID, req.Key)
	if err != nil {
		return nil, false, err
	}
	if prev != nil {
		return prev, true, nil
	}

	return nil, false, ErrDuplicateBooking
}

// CancelBooking cancels a direct booking and releases its seats, both in one
// transaction. Only the booking's rider may cancel; cancelling an already-
// cancelled booking succeeds with no further effect.
func (s *BookingService) CancelBooking(ctx context.Context, riderID, bookingID string) error {
	if riderID == "" {
		return ErrInvalidActor
	}
	if bookingID == "" {
		return repository.ErrNotFound
	}

	now := time.Now()
	wrote := false

	err := s.store.RunInTx(ctx, func(r repository.Repositories) error {
		b, err := r.Bookings.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.RiderID != riderID {
			return ErrNotBookingOwner
		}
		if b.Status == domain.BookingStatusCancelled {
			return nil
		}
		if b.Kind() == domain.BookingKindMatched {
			return ErrMatchedBookingCancel
		}

		ok, err := r.Bookings.Cancel(ctx, b.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			// A concurrent cancel won; nothing left to release.
			return nil
		}

		if err := r.Rides.ReleaseSeats(ctx, b.RideID, b.Seats); err != nil {
			return err
		}

		wrote = true
		return nil
	})
	if err != nil {
		return err
	}

	if wrote {
		observability.BookingsCancelled.Inc()
		s.invalidateListing(ctx)
	}

	return nil
}

// GetBooking retrieves a booking, visible only to its rider or driver.
func (s *BookingService) GetBooking(ctx context.Context, actorID, bookingID string) (*domain.Booking, error) {
	if actorID == "" {
		return nil, ErrInvalidActor
	}
	if bookingID == "" {
		return nil, repository.ErrNotFound
	}

	b, err := s.store.Repos().Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actorID != b.RiderID && actorID != b.DriverID {
		return nil, ErrNotBookingParty
	}

	return b, nil
}

func (s *BookingService) invalidateListing(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.InvalidateRides(ctx)
	}
}

func (s *BookingService) validateCreateRequest(req CreateBookingRequest) error {
	if req.RiderID == "" {
		return ErrInvalidActor
	}
	if req.Key == "" {
		return ErrInvalidIdempotencyKey
	}
	if req.RideID == "" {
		return repository.ErrNotFound
	}
	if !validSeats(req.Seats) {
		return ErrInvalidSeats
	}
	return nil
}
