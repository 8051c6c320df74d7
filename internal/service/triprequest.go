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

// TripRequestService handles the rider-posted trip request flow.
type TripRequestService struct {
	store repository.Store
	cache redis.ListingCacheInterface
}

// NewTripRequestService creates a new TripRequestService. cache may be nil.
func NewTripRequestService(store repository.Store, cache redis.ListingCacheInterface) *TripRequestService {
	return &TripRequestService{store: store, cache: cache}
}

// TripRequestParams contains the rider-supplied fields of a new trip request.
type TripRequestParams struct {
	Origin             string
	Destination        string
	EarliestDeparture  time.Time
	LatestDeparture    time.Time
	PreferredDeparture time.Time
	DistanceCategory   domain.DistanceCategory
	SeatsNeeded        int
	PickupNotes        string
	DropoffNotes       string
}

// CreateTripRequestRequest contains the parameters for posting a trip
// request.
type CreateTripRequestRequest struct {
	RiderID    string
	RiderEmail string
	Key        string
	Params     TripRequestParams
}

// CreateTripRequest posts a new trip request, or replays the one previously
// created under the same (rider, key). The returned bool reports a replay.
func (s *TripRequestService) CreateTripRequest(ctx context.Context, req CreateTripRequestRequest) (*domain.TripRequest, bool, error) {
	now := time.Now()
	if err := s.validateCreateRequest(req, now); err != nil {
		return nil, false, err
	}

	tr := &domain.TripRequest{
		ID:                 uuid.New().String(),
		RiderID:            req.RiderID,
		Origin:             req.Params.Origin,
		Destination:        req.Params.Destination,
		EarliestDeparture:  req.Params.EarliestDeparture,
		LatestDeparture:    req.Params.LatestDeparture,
		PreferredDeparture: req.Params.PreferredDeparture,
		DistanceCategory:   req.Params.DistanceCategory,
		SeatsNeeded:        req.Params.SeatsNeeded,
		Status:             domain.TripRequestStatusActive,
		PickupNotes:        req.Params.PickupNotes,
		DropoffNotes:       req.Params.DropoffNotes,
		CreatedAt:          now,
	}

	var result *domain.TripRequest
	replayed := false

	err := s.store.RunInTx(ctx, func(r repository.Repositories) error {
		if err := r.Users.Ensure(ctx, &domain.User{ID: req.RiderID, Email: req.RiderEmail, CreatedAt: now}); err != nil {
			return err
		}

		prev, err := replayedTripRequest(ctx, r, req.RiderID, req.Key)
		if err != nil {
			return err
		}
		if prev != nil {
			result, replayed = prev, true
			return nil
		}

		if err := r.TripRequests.Create(ctx, tr); err != nil {
			return err
		}
		if err := r.Idempotency.Create(ctx, &domain.IdempotencyRecord{
			ActorID:       req.RiderID,
			Key:           req.Key,
			Kind:          domain.OperationKindTripRequest,
			TripRequestID: tr.ID,
			CreatedAt:     now,
		}); err != nil {
			return err
		}

		result = tr
		return nil
	})

	if errors.Is(err, repository.ErrDuplicate) {
		prev, lookupErr := replayedTripRequest(ctx, s.store.Repos(), req.RiderID, req.Key)
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
		observability.TripRequestsCreated.Inc()
		s.invalidateListing(ctx)
	}

	return result, replayed, nil
}

// GetTripRequest retrieves a trip request by ID.
func (s *TripRequestService) GetTripRequest(ctx context.Context, id string) (*domain.TripRequest, error) {
	if id == "" {
		return nil, repository.ErrNotFound
	}
	return s.store.Repos().TripRequests.GetByID(ctx, id)
}

// TripRequestPage is one page of a trip request listing.
type TripRequestPage struct {
	TripRequests []*domain.TripRequest
	NextCursor   string
}

// ListTripRequests returns ACTIVE upcoming trip requests in
// (earliest departure, id) order.
func (s *TripRequestService) ListTripRequests(ctx context.Context, filter repository.TripRequestFilter, cursorToken string, limit int) (*TripRequestPage, error) {
	after, err := pagination.Decode(cursorToken)
	if err != nil {
		return nil, err
	}
	limit = pagination.ClampLimit(limit)

	cacheable := s.cache != nil && after == nil && limit == pagination.DefaultLimit && filter == (repository.TripRequestFilter{})
	if cacheable {
		if trs, err := s.cache.GetTripRequests(ctx); err == nil && trs != nil {
			return pageOfTripRequests(trs, limit), nil
		}
	}

	trs, err := s.store.Repos().TripRequests.List(ctx, filter, after, limit)
	if err != nil {
		return nil, err
	}

	if cacheable {
		_ = s.cache.SetTripRequests(ctx, trs)
	}

	return pageOfTripRequests(trs, limit), nil
}

func pageOfTripRequests(trs []*domain.TripRequest, limit int) *TripRequestPage {
	page := &TripRequestPage{TripRequests: trs}
	if len(trs) == limit {
		last := trs[len(trs)-1]
		page.NextCursor = pagination.Cursor{Time: last.EarliestDeparture, ID: last.ID}.Encode()
	}
	return page
}

func (s *TripRequestService) invalidateListing(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.InvalidateTripRequests(ctx)
	}
}

func (s *TripRequestService) validateCreateRequest(req CreateTripRequestRequest, now time.Time) error {
	if req.RiderID == "" {
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
	if !validSeats(req.Params.SeatsNeeded) {
		return ErrInvalidSeats
	}
	return nil
}
