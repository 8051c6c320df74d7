package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"campusride/internal/domain"
	"campusride/internal/observability"
	"campusride/internal/pagination"
	"campusride/internal/redis"
	"campusride/internal/repository"
)

// RideService handles the driver-posted ride flow.
type RideService struct {
	store repository.Store
	cache redis.ListingCacheInterface
}

// NewRideService creates a new RideService. cache may be nil.
func NewRideService(store repository.Store, cache redis.ListingCacheInterface) *RideService {
	return &RideService{store: store, cache: cache}
}

// RideParams contains the driver-supplied fields of a new ride.
type RideParams struct {
	Origin             string
	Destination        string
	EarliestDeparture  time.Time
	LatestDeparture    time.Time
	PreferredDeparture time.Time
	DistanceCategory   domain.DistanceCategory
	PriceCents         int64
	SeatsTotal         int
	PickupNotes        string
	DropoffNotes       string
}

// CreateRideRequest contains the parameters for posting a ride.
type CreateRideRequest struct {
	DriverID    string
	DriverEmail string
	Key         string
	Params      RideParams
}

// CreateRide posts a new ride, or replays the ride previously created under
// the same (driver, key). The returned bool reports a replay.
func (s *RideService) CreateRide(ctx context.Context, req CreateRideRequest) (*domain.Ride, bool, error) {
	now := time.Now()
	if err := s.validateCreateRequest(req, now); err != nil {
		return nil, false, err
	}

	ride := &domain.Ride{
		ID:                 uuid.New().String(),
		DriverID:           req.DriverID,
		Origin:             req.Params.Origin,
		Destination:        req.Params.Destination,
		EarliestDeparture:  req.Params.EarliestDeparture,
		LatestDeparture:    req.Params.LatestDeparture,
		PreferredDeparture: req.Params.PreferredDeparture,
		DistanceCategory:   req.Params.DistanceCategory,
		PriceCents:         req.Params.PriceCents,
		SeatsTotal:         req.Params.SeatsTotal,
		SeatsAvailable:     req.Params.SeatsTotal,
		Status:             domain.RideStatusActive,
		PickupNotes:        req.Params.PickupNotes,
		DropoffNotes:       req.Params.DropoffNotes,
		CreatedAt:          now,
	}

	var result *domain.Ride
	replayed := false

	err := s.store.RunInTx(ctx, func(r repository.Repositories) error {
		if err := r.Users.Ensure(ctx, &domain.User{ID: req.DriverID, Email: req.DriverEmail, CreatedAt: now}); err != nil {
			return err
		}

		prev, err := replayedRide(ctx, r, req.DriverID, req.Key)
		if err != nil {
			return err
		}
		if prev != nil {
			result, replayed = prev, true
			return nil
		}

		if err := r.Rides.Create(ctx, ride); err != nil {
			return err
		}
		if err := r.Idempotency.Create(ctx, &domain.IdempotencyRecord{
			ActorID:   req.DriverID,
			Key:       req.Key,
			Kind:      domain.OperationKindRide,
			RideID:    ride.ID,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		result = ride
		return nil
	})

	if errors.Is(err, repository.ErrDuplicate) {
		// Lost the first-use race: the winner's ledger row is committed now.
		prev, lookupErr := replayedRide(ctx, s.store.Repos(), req.DriverID, req.Key)
		if lookupErr != nil {
			return nil, false, lookupErr
		}
		if prev != nil {
			return prev, true, nil
		}
		return nil, false, err
	}
	if err != nil {
		return nil, false, err
	}

	if !replayed {
		observability.RidesCreated.Inc()
		s.invalidateListing(ctx)
	}

	return result, replayed, nil
}

// GetRide retrieves a ride by ID.
func (s *RideService) GetRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, repository.ErrNotFound
	}
	return s.store.Repos().Rides.GetByID(ctx, rideID)
}

// RidePage is one page of a ride listing.
type RidePage struct {
	Rides      []*domain.Ride
	NextCursor string
}

// ListRides returns ACTIVE upcoming rides in (earliest departure, id) order.
// cursorToken is the opaque token from a previous page, empty for the first.
func (s *RideService) ListRides(ctx context.Context, filter repository.RideFilter, cursorToken string, limit int) (*RidePage, error) {
	after, err := pagination.Decode(cursorToken)
	if err != nil {
		return nil, err
	}
	limit = pagination.ClampLimit(limit)

	cacheable := s.cache != nil && after == nil && limit == pagination.DefaultLimit && filter == (repository.RideFilter{})
	if cacheable {
		if rides, err := s.cache.GetRides(ctx); err == nil && rides != nil {
			return pageOfRides(rides, limit), nil
		}
	}

	rides, err := s.store.Repos().Rides.List(ctx, filter, after, limit)
	if err != nil {
		return nil, err
	}

	if cacheable {
		_ = s.cache.SetRides(ctx, rides)
	}

	return pageOfRides(rides, limit), nil
}

func pageOfRides(rides []*domain.Ride, limit int) *RidePage {
	page := &RidePage{Rides: rides}
	if len(rides) == limit {
		last := rides[len(rides)-1]
		page.NextCursor = pagination.Cursor{Time: last.EarliestDeparture, ID: last.ID}.Encode()
	}
	return page
}

func (s *RideService) invalidateListing(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.InvalidateRides(ctx)
	}
}

func (s *RideService) validateCreateRequest(req CreateRideRequest, now time.Time) error {
	if req.DriverID == "" {
		return ErrInvalidActor
	}
	if req.Key == "" {
		return ErrInvalidIdempotencyKey
	}
	if strings.TrimSpace(req.Params.Origin) == "" || strings.TrimSpace(req.Params.Destination) == "" {
		return ErrInvalidRoute
	}
	if err := validateWindow(req.Params.EarliestDeparture, req.Params.LatestDeparture, req.Params.PreferredDeparture, now); err != nil {
		return err
	}
	if !validCategory(req.Params.DistanceCategory) {
		return ErrInvalidCategory
	}
	if !validSeats(req.Params.SeatsTotal) {
		return ErrInvalidSeats
	}
	if req.Params.PriceCents < 0 {
		return ErrInvalidPrice
	}
	return nil
}
