package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"campusride/internal/domain"
	"campusride/internal/service"
)

// ──────────────────────────────────────────────
// 5. OFFER CREATION
// ──────────────────────────────────────────────

func seedTripRequest(store *MockStore, id, riderID string, status domain.TripRequestStatus) {
	now := time.Now()
	store.TripRequests.AddTripRequest(&domain.TripRequest{
		ID:                id,
		RiderID:           riderID,
		Origin:            "East Hall",
		Destination:       "Mall",
		EarliestDeparture: now.Add(time.Hour),
		LatestDeparture:   now.Add(3 * time.Hour),
		DistanceCategory:  domain.DistanceShort,
		SeatsNeeded:       2,
		Status:            status,
	})
}

func makeOffer(ctx context.Context, t *testing.T, svc *service.OfferService, driverID, key, trID string) *domain.Offer {
	t.Helper()
	offer, replayed, err := svc.CreateOffer(ctx, service.CreateOfferRequest{
		DriverID:      driverID,
		DriverEmail:   driverID + "@campus.edu",
		Key:           key,
		TripRequestID: trID,
		Params:        service.OfferParams{Seats: 2, PriceCents: 900},
	})
	if err != nil {
		t.Fatalf("unexpected error creating offer: %v", err)
	}
	if replayed {
		t.Fatal("fresh offer reported as replay")
	}
	return offer
}

func TestCreateOffer_Success(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewOfferService(store, nil)
	seedTripRequest(store, "tr-1", "rider-1", domain.TripRequestStatusActive)

	offer := makeOffer(context.Background(), t, svc, "driver-1", "key-1", "tr-1")

	if offer.Status != domain.OfferStatusPending {
		t.Errorf("expected PENDING, got %s", offer.Status)
	}
	if offer.RiderID != "rider-1" {
		t.Errorf("expected denormalized rider id, got %q", offer.RiderID)
	}
}

func TestCreateOffer_OnOwnTripRequest(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewOfferService(store, nil)
	seedTripRequest(store, "tr-1", "rider-1", domain.TripRequestStatusActive)

	_, _, err := svc.CreateOffer(context.Background(), service.CreateOfferRequest{
		DriverID:      "rider-1",
		DriverEmail:   "rider-1@campus.edu",
		Key:           "key-1",
		TripRequestID: "tr-1",
		Params:        service.OfferParams{Seats: 2, PriceCents: 900},
	})
	if !errors.Is(err, service.ErrSelfOffer) {
		t.Errorf("expected ErrSelfOffer, got %v", err)
	}
}

func TestCreateOffer_ClosedTripRequest(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewOfferService(store, nil)
	seedTripRequest(store, "tr-1", "rider-1", domain.TripRequestStatusClosed)

	_, _, err := svc.CreateOffer(context.Background(), service.CreateOfferRequest{
		DriverID:      "driver-1",
		DriverEmail:   "driver-1@campus.edu",
		Key:           "key-1",
		TripRequestID: "tr-1",
		Params:        service.OfferParams{Seats: 2, PriceCents: 900},
	})
	if !errors.Is(err, service.ErrTripRequestNotActive) {
		t.Errorf("expected ErrTripRequestNotActive, got %v", err)
	}
}

func TestCreateOffer_SecondLiveOfferRejected(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewOfferService(store, nil)
	seedTripRequest(store, "tr-1", "rider-1", domain.TripRequestStatusActive)

	makeOffer(context.Background(), t, svc, "driver-1", "key-1", "tr-1")

	_, _, err := svc.CreateOffer(context.Background(), service.CreateOfferRequest{
		DriverID:      "driver-1",
		DriverEmail:   "driver-1@campus.edu",
		Key:           "key-2",
		TripRequestID: "tr-1",
		Params:        service.OfferParams{Seats: 1, PriceCents: 500},
	})
	if !errors.Is(err, service.ErrDuplicateOffer) {
		t.Errorf("expected ErrDuplicateOffer, got %v", err)
	}
}

func TestCreateOffer_AfterCancel_Allowed(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewOfferService(store, nil)
	seedTripRequest(store, "tr-1", "rider-1", domain.TripRequestStatusActive)

	ctx := context.Background()
	first := makeOffer(ctx, t, svc, "driver-1", "key-1", "tr-1")
	if _, err := svc.CancelOffer(ctx, "driver-1", first.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A cancelled offer no longer blocks a new one from the same driver.
	second := makeOffer(ctx, t, svc, "driver-1", "key-2", "tr-1")
	if second.ID == first.ID {
		t.Error("expected a fresh offer, got the cancelled one")
	}
}

// ──────────────────────────────────────────────
// 6. OFFER ACCEPTANCE CASCADE
// ──────────────────────────────────────────────

func TestAcceptOffer_Cascade(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewOfferService(store, nil)
	seedTripRequest(store, "tr-1", "rider-1", domain.TripRequestStatusActive)

	ctx := context.Background()
	o1 := makeOffer(ctx, t, svc, "driver-1", "key-1", "tr-1")
	o2 := makeOffer(ctx, t, svc, "driver-2", "key-2", "tr-1")

	accepted, booking, err := svc.AcceptOffer(ctx, "rider-1", o1.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if accepted.Status != domain.OfferStatusAccepted {
		t.Errorf("expected ACCEPTED, got %s", accepted.Status)
	}
	if booking.Status != domain.BookingStatusConfirmed {
		t.Errorf("expected CONFIRMED booking, got %s", booking.Status)
	}
	if booking.Kind() != domain.BookingKindMatched {
		t.Errorf("expected matched booking, got %s", booking.Kind())
	}
	if booking.Seats != o1.Seats || booking.PriceCents != o1.PriceCents {
		t.Error("booking must carry the accepted offer's seats and price")
	}
	if booking.DriverID != "driver-1" || booking.RiderID != "rider-1" {
		t.Error("booking parties do not match the accepted offer")
	}

	// The trip request closed and the competing offer was cancelled.
	if got := store.TripRequests.GetTripRequest("tr-1").Status; got != domain.TripRequestStatusClosed {
		t.Errorf("expected trip request CLOSED, got %s", got)
	}
	if got := store.Offers.GetOffer(o2.ID).Status; got != domain.OfferStatusCancelled {
		t.Errorf("expected competing offer CANCELLED, got %s", got)
	}
}

func TestAcceptOffer_LoserOffer_Conflicts(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewOfferService(store, nil)
	seedTripRequest(store, "tr-1", "rider-1", domain.TripRequestStatusActive)

	ctx := context.Background()
	o1 := makeOffer(ctx, t, svc, "driver-1", "key-1", "tr-1")
	o2 := makeOffer(ctx, t, svc, "driver-2", "key-2", "tr-1")

	if _, _, err := svc.AcceptOffer(ctx, "rider-1", o1.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The cascade already cancelled o2; accepting it must fail cleanly.
	_, _, err := svc.AcceptOffer(ctx, "rider-1", o2.ID)
	if !errors.Is(err, service.ErrOfferNotPending) {
		t.Errorf("expected ErrOfferNotPending, got %v", err)
	}
}

func TestAcceptOffer_ExistingAcceptance_Conflicts(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewOfferService(store, nil)
	seedTripRequest(store, "tr-1", "rider-1", domain.TripRequestStatusActive)

	// A stale PENDING offer next to an already ACCEPTED one, with the trip
	// request still ACTIVE. The accepted-offer read must catch it.
	store.Offers.AddOffer(&domain.Offer{
		ID: "o-accepted", TripRequestID: "tr-1", DriverID: "driver-1", RiderID: "rider-1",
		Seats: 2, PriceCents: 900, Status: domain.OfferStatusAccepted,
	})
	store.Offers.AddOffer(&domain.Offer{
		ID: "o-stale", TripRequestID: "tr-1", DriverID: "driver-2", RiderID: "rider-1",
		Seats: 2, PriceCents: 700, Status: domain.OfferStatusPending,
	})

	_, _, err := svc.AcceptOffer(context.Background(), "rider-1", "o-stale")
	if !errors.Is(err, service.ErrOfferAlreadyAccepted) {
		t.Errorf("expected ErrOfferAlreadyAccepted, got %v", err)
	}
	// Nothing may have been written.
	if got := store.Offers.GetOffer("o-stale").Status; got != domain.OfferStatusPending {
		t.Errorf("stale offer mutated to %s", got)
	}
	if store.Bookings.CreateCallCount != 0 {
		t.Error("no booking may be created on a failed acceptance")
	}
}

func TestAcceptOffer_NotOwner(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewOfferService(store, nil)
	seedTripRequest(store, "tr-1", "rider-1", domain.TripRequestStatusActive)

	ctx := context.Background()
	o1 := makeOffer(ctx, t, svc, "driver-1", "key-1", "tr-1")

	_, _, err := svc.AcceptOffer(ctx, "someone-else", o1.ID)
	if !errors.Is(err, service.ErrNotTripRequestOwner) {
		t.Errorf("expected ErrNotTripRequestOwner, got %v", err)
	}
}

// ──────────────────────────────────────────────
// 7. OFFER CANCELLATION
// ──────────────────────────────────────────────

func TestCancelOffer_PendingByDriver(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewOfferService(store, nil)
	seedTripRequest(store, "tr-1", "rider-1", domain.TripRequestStatusActive)

	ctx := context.Background()
	o1 := makeOffer(ctx, t, svc, "driver-1", "key-1", "tr-1")

	cancelled, err := svc.CancelOffer(ctx, "driver-1", o1.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != domain.OfferStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", cancelled.Status)
	}

	// A pending cancellation touches nothing else.
	if got := store.TripRequests.GetTripRequest("tr-1").Status; got != domain.TripRequestStatusActive {
		t.Errorf("trip request mutated to %s", got)
	}
	if store.Bookings.CancelCallCount != 0 {
		t.Error("no booking cancellation expected")
	}
}

func TestCancelOffer_AcceptedByDriver_Rejected(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewOfferService(store, nil)
	seedTripRequest(store, "tr-1", "rider-1", domain.TripRequestStatusActive)

	ctx := context.Background()
	o1 := makeOffer(ctx, t, svc, "driver-1", "key-1", "tr-1")
	if _, _, err := svc.AcceptOffer(ctx, "rider-1", o1.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.CancelOffer(ctx, "driver-1", o1.ID)
	if !errors.Is(err, service.ErrAcceptedOfferDriverCancel) {
		t.Errorf("expected ErrAcceptedOfferDriverCancel, got %v", err)
	}
}

func TestCancelOffer_AcceptedByRider_Cascade(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewOfferService(store, nil)
	seedTripRequest(store, "tr-1", "rider-1", domain.TripRequestStatusActive)

	ctx := context.Background()
	o1 := makeOffer(ctx, t, svc, "driver-1", "key-1", "tr-1")
	_, booking, err := svc.AcceptOffer(ctx, "rider-1", o1.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cancelled, err := svc.CancelOffer(ctx, "rider-1", o1.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != domain.OfferStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", cancelled.Status)
	}

	// The matched booking was cancelled and the trip request reopened.
	if got := store.Bookings.GetBooking(booking.ID).Status; got != domain.BookingStatusCancelled {
		t.Errorf("expected booking CANCELLED, got %s", got)
	}
	if got := store.TripRequests.GetTripRequest("tr-1").Status; got != domain.TripRequestStatusActive {
		t.Errorf("expected trip request reopened, got %s", got)
	}
}

func TestCancelOffer_Twice_IsIdempotent(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewOfferService(store, nil)
	seedTripRequest(store, "tr-1", "rider-1", domain.TripRequestStatusActive)

	ctx := context.Background()
	o1 := makeOffer(ctx, t, svc, "driver-1", "key-1", "tr-1")

	if _, err := svc.CancelOffer(ctx, "driver-1", o1.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	writes := store.Offers.UpdateStatusCallCount

	cancelled, err := svc.CancelOffer(ctx, "driver-1", o1.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != domain.OfferStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", cancelled.Status)
	}
	if store.Offers.UpdateStatusCallCount != writes {
		t.Error("second cancel must not write")
	}
}

func TestCancelOffer_Stranger_Rejected(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewOfferService(store, nil)
	seedTripRequest(store, "tr-1", "rider-1", domain.TripRequestStatusActive)

	ctx := context.Background()
	o1 := makeOffer(ctx, t, svc, "driver-1", "key-1", "tr-1")

	_, err := svc.CancelOffer(ctx, "stranger", o1.ID)
	if !errors.Is(err, service.ErrNotOfferParty) {
		t.Errorf("expected ErrNotOfferParty, got %v", err)
	}
}

// ──────────────────────────────────────────────
// 8. OFFER VISIBILITY
// ──────────────────────────────────────────────

func TestListOffers_Visibility(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewOfferService(store, nil)
	seedTripRequest(store, "tr-1", "rider-1", domain.TripRequestStatusActive)

	ctx := context.Background()
	makeOffer(ctx, t, svc, "driver-1", "key-1", "tr-1")
	makeOffer(ctx, t, svc, "driver-2", "key-2", "tr-1")

	// The rider sees every offer.
	offers, err := svc.ListOffers(ctx, "rider-1", "tr-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(offers) != 2 {
		t.Errorf("rider expected 2 offers, got %d", len(offers))
	}

	// A driver sees only their own.
	offers, err = svc.ListOffers(ctx, "driver-1", "tr-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(offers) != 1 {
		t.Fatalf("driver expected 1 offer, got %d", len(offers))
	}
	if offers[0].DriverID != "driver-1" {
		t.Errorf("driver saw someone else's offer")
	}

	// A stranger sees none.
	offers, err = svc.ListOffers(ctx, "stranger", "tr-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(offers) != 0 {
		t.Errorf("stranger expected 0 offers, got %d", len(offers))
	}
}
