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

// OfferService handles the competing-offers protocol on trip requests:
// creation, the acceptance cascade, and the cancellation cascade.
type OfferService struct {
	store repository.Store
	cache redis.ListingCacheInterface
}

// NewOfferService creates a new OfferService. cache may be nil.
func NewOfferService(store repository.Store, cache redis.ListingCacheInterface) *OfferService {
	return &OfferService{store: store, cache: cache}
}

// OfferParams contains the driver-supplied fields of a new offer.
type OfferParams struct {
	Seats      int
	PriceCents int64
	Message    string
}

// CreateOfferRequest contains the parameters for bidding on a trip request.
type CreateOfferRequest struct {
	DriverID      string
	DriverEmail   string
	Key           string
	TripRequestID string
	Params        OfferParams
}

// CreateOffer bids on an ACTIVE trip request, or replays the offer
// previously created under the same (driver, key). The returned bool reports
// a replay.
func (s *OfferService) CreateOffer(ctx context.Context, req CreateOfferRequest) (*domain.Offer, bool, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, false, err
	}

	now := time.Now()
	var result *domain.Offer
	replayed := false

	err := s.store.RunInTx(ctx, func(r repository.Repositories) error {
		if err := r.Users.Ensure(ctx, &domain.User{ID: req.DriverID, Email: req.DriverEmail, CreatedAt: now}); err != nil {
			return err
		}

		prev, err := replayedOffer(ctx, r, req.DriverID, req.Key)
		if err != nil {
			return err
		}
		if prev != nil {
			result, replayed = prev, true
			return nil
		}

		tr, err := r.TripRequests.GetByID(ctx, req.TripRequestID)
		if err != nil {
			return err
		}
		if tr.RiderID == req.DriverID {
			return ErrSelfOffer
		}
		if tr.Status != domain.TripRequestStatusActive {
			return ErrTripRequestNotActive
		}

		// Optimistic duplicate check; the partial unique index catches any
		// race that slips past it.
		active, err := r.Offers.GetActive(ctx, tr.ID, req.DriverID)
		if err != nil {
			return err
		}
		if active != nil {
			return ErrDuplicateOffer
		}

		offer := &domain.Offer{
			ID:            uuid.New().String(),
			TripRequestID: tr.ID,
			DriverID:      req.DriverID,
			RiderID:       tr.RiderID,
			Seats:         req.Params.Seats,
			PriceCents:    req.Params.PriceCents,
			Message:       req.Params.Message,
			Status:        domain.OfferStatusPending,
			CreatedAt:     now,
		}
		if err := r.Offers.Create(ctx, offer); err != nil {
			return err
		}
		if err := r.Idempotency.Create(ctx, &domain.IdempotencyRecord{
			ActorID:   req.DriverID,
			Key:       req.Key,
			Kind:      domain.OperationKindOffer,
			OfferID:   offer.ID,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		result = offer
		return nil
	})

	if errors.Is(err, repository.ErrDuplicate) {
		return s.classifyCreateConflict(ctx, req)
	}
	if err != nil {
		return nil, false, err
	}

	if !replayed {
		observability.OffersCreated.Inc()
	}

	return result, replayed, nil
}

// classifyCreateConflict turns a unique-constraint rejection during
// CreateOffer into its user-facing outcome: a replay if the idempotency
// triple won the race, otherwise the duplicate-offer conflict.
func (s *OfferService) classifyCreateConflict(ctx context.Context, req CreateOfferRequest) (*domain.Offer, bool, error) {
	r := s.store.Repos()

	prev, err := replayedOffer(ctx, r, req.DriverID, req.Key)
	if err != nil {
		return nil, false, err
	}
	if prev != nil {
		return prev, true, nil
	}

	return nil, false, ErrDuplicateOffer
}

// AcceptOffer is the engine's core atomic multi-row transition. The trip
// request's rider accepts one PENDING offer; in one transaction the offer
// becomes ACCEPTED, a CONFIRMED matched booking is created, the trip request
// closes, and every other PENDING offer on it is cancelled. All five effects
// commit together or none do.
func (s *OfferService) AcceptOffer(ctx context.Context, riderID, offerID string) (*domain.Offer, *domain.Booking, error) {
	if riderID == "" {
		return nil, nil, ErrInvalidActor
	}
	if offerID == "" {
		return nil, nil, repository.ErrNotFound
	}

	now := time.Now()
	var offer *domain.Offer
	var booking *domain.Booking

	err := s.store.RunInTx(ctx, func(r repository.Repositories) error {
		o, err := r.Offers.GetByID(ctx, offerID)
		if err != nil {
			return err
		}

		tr, err := r.TripRequests.GetByID(ctx, o.TripRequestID)
		if err != nil {
			return err
		}
		if tr.RiderID != riderID {
			return ErrNotTripRequestOwner
		}
		if o.Status != domain.OfferStatusPending {
			return ErrOfferNotPending
		}
		if tr.Status != domain.TripRequestStatusActive {
			return ErrTripRequestNotActive
		}

		// Defense in depth: the partial unique index on accepted offers
		// still backstops this read.
		accepted, err := r.Offers.GetAccepted(ctx, tr.ID)
		if err != nil {
			return err
		}
		if accepted != nil {
			return ErrOfferAlreadyAccepted
		}

		ok, err := r.Offers.UpdateStatus(ctx, o.ID, domain.OfferStatusPending, domain.OfferStatusAccepted)
		if err != nil {
			return err
		}
		if !ok {
			return ErrOfferNotPending
		}

		b := &domain.Booking{
			ID:            uuid.New().String(),
			TripRequestID: tr.ID,
			DriverID:      o.DriverID,
			RiderID:       tr.RiderID,
			Seats:         o.Seats,
			PriceCents:    o.PriceCents,
			Status:        domain.BookingStatusConfirmed,
			CreatedAt:     now,
		}
		if err := r.Bookings.Create(ctx, b); err != nil {
			return err
		}

		ok, err = r.TripRequests.UpdateStatus(ctx, tr.ID, domain.TripRequestStatusActive, domain.TripRequestStatusClosed)
		if err != nil {
			return err
		}
		if !ok {
			return ErrTripRequestNotActive
		}

		if _, err := r.Offers.CancelPendingExcept(ctx, tr.ID, o.ID); err != nil {
			return err
		}

		o.Status = domain.OfferStatusAccepted
		offer, booking = o, b
		return nil
	})

	if errors.Is(err, repository.ErrDuplicate) {
		// Another acceptance committed first.
		return nil, nil, ErrOfferAlreadyAccepted
	}
	if err != nil {
		return nil, nil, err
	}

	observability.OffersAccepted.Inc()
	observability.BookingsCreated.Inc()
	s.invalidateListing(ctx)

	return offer, booking, nil
}

// CancelOffer cancels an offer. Drivers may withdraw only while PENDING;
// the rider may cancel at any non-terminal state. Cancelling an ACCEPTED
// offer cascades: the matched booking is cancelled and the trip request
// reopens, all in the same transaction. Cancelling an already-CANCELLED
// offer is a no-op success.
func (s *OfferService) CancelOffer(ctx context.Context, actorID, offerID string) (*domain.Offer, error) {
	if actorID == "" {
		return nil, ErrInvalidActor
	}
	if offerID == "" {
		return nil, repository.ErrNotFound
	}

	now := time.Now()
	var result *domain.Offer
	wrote := false

	err := s.store.RunInTx(ctx, func(r repository.Repositories) error {
		o, err := r.Offers.GetByID(ctx, offerID)
		if err != nil {
			return err
		}
		if actorID != o.DriverID && actorID != o.RiderID {
			return ErrNotOfferParty
		}

		if o.Status == domain.OfferStatusCancelled {
			result = o
			return nil
		}

		if o.Status == domain.OfferStatusAccepted {
			if actorID == o.DriverID {
				return ErrAcceptedOfferDriverCancel
			}

			ok, err := r.Offers.UpdateStatus(ctx, o.ID, domain.OfferStatusAccepted, domain.OfferStatusCancelled)
			if err != nil {
				return err
			}
			if !ok {
				return ErrOfferStateChanged
			}

			b, err := r.Bookings.GetConfirmedMatched(ctx, o.TripRequestID, o.DriverID)
			if err != nil {
				return err
			}
			if b != nil {
				if _, err := r.Bookings.Cancel(ctx, b.ID, now); err != nil {
					return err
				}
			}

			// Reopen the trip request. The guard keeps a rider-withdrawn
			// (CANCELLED) request from being resurrected.
			if _, err := r.TripRequests.UpdateStatus(ctx, o.TripRequestID, domain.TripRequestStatusClosed, domain.TripRequestStatusActive); err != nil {
				return err
			}
		} else {
			ok, err := r.Offers.UpdateStatus(ctx, o.ID, domain.OfferStatusPending, domain.OfferStatusCancelled)
			if err != nil {
				return err
			}
			if !ok {
				return ErrOfferStateChanged
			}
		}

		o.Status = domain.OfferStatusCancelled
		result = o
		wrote = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if wrote {
		observability.OffersCancelled.Inc()
		s.invalidateListing(ctx)
	}

	return result, nil
}

// ListOffers returns the offers on a trip request visible to the actor: the
// request's rider sees all of them, anyone else only their own.
func (s *OfferService) ListOffers(ctx context.Context, actorID, tripRequestID string) ([]*domain.Offer, error) {
	if actorID == "" {
		return nil, ErrInvalidActor
	}

	r := s.store.Repos()
	tr, err := r.TripRequests.GetByID(ctx, tripRequestID)
	if err != nil {
		return nil, err
	}

	offers, err := r.Offers.ListByTripRequest(ctx, tripRequestID)
	if err != nil {
		return nil, err
	}

	if actorID == tr.RiderID {
		return offers, nil
	}

	var own []*domain.Offer
	for _, o := range offers {
		if o.DriverID == actorID {
			own = append(own, o)
		}
	}
	return own, nil
}

func (s *OfferService) invalidateListing(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.InvalidateTripRequests(ctx)
	}
}

func (s *OfferService) validateCreateRequest(req CreateOfferRequest) error {
	if req.DriverID == "" {
		return ErrInvalidActor
	}
	if req.Key == "" {
		return ErrInvalidIdempotencyKey
	}
	if req.TripRequestID == "" {
		return repository.ErrNotFound
	}
	if !validSeats(req.Params.Seats) {
		return ErrInvalidSeats
	}
	if req.Params.PriceCents < 0 {
		return ErrInvalidPrice
	}
	return nil
}
