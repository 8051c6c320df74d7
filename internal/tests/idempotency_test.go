package tests

import (
	"context"
	"sync"
	"testing"
	"time"

	"campusride/internal/domain"
	"campusride/internal/service"
)

// ──────────────────────────────────────────────
// 13. IDEMPOTENT WRITE PROTOCOL
// ──────────────────────────────────────────────

func TestCreateRide_ReplaySameKey(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewRideService(store, nil)

	now := time.Now()
	req := service.CreateRideRequest{
		DriverID:    "driver-1",
		DriverEmail: "driver-1@campus.edu",
		Key:         "key-1",
		Params:      validRideParams(now),
	}

	ctx := context.Background()
	first, replayed, err := svc.CreateRide(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if replayed {
		t.Error("first create should not be a replay")
	}

	second, replayed, err := svc.CreateRide(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !replayed {
		t.Error("second create with the same key must be a replay")
	}
	if second.ID != first.ID {
		t.Errorf("replay returned a different ride: %s vs %s", second.ID, first.ID)
	}

	// Exactly one ride was written.
	if store.Rides.CreateCallCount != 1 {
		t.Errorf("expected 1 ride insert, got %d", store.Rides.CreateCallCount)
	}
}

func TestCreateRide_DifferentKeys_CreateTwice(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewRideService(store, nil)

	now := time.Now()
	ctx := context.Background()
	for _, key := range []string{"key-1", "key-2"} {
		if _, _, err := svc.CreateRide(ctx, service.CreateRideRequest{
			DriverID:    "driver-1",
			DriverEmail: "driver-1@campus.edu",
			Key:         key,
			Params:      validRideParams(now),
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if store.Rides.CreateCallCount != 2 {
		t.Errorf("expected 2 ride inserts, got %d", store.Rides.CreateCallCount)
	}
}

func TestCreateRide_SameKeyDifferentKind_Independent(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	rideSvc := service.NewRideService(store, nil)
	trSvc := service.NewTripRequestService(store, nil)

	now := time.Now()
	ctx := context.Background()

	if _, _, err := rideSvc.CreateRide(ctx, service.CreateRideRequest{
		DriverID:    "user-1",
		DriverEmail: "user-1@campus.edu",
		Key:         "shared-key",
		Params:      validRideParams(now),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The same key under a different operation kind is a fresh create.
	tr, replayed, err := trSvc.CreateTripRequest(ctx, service.CreateTripRequestRequest{
		RiderID:    "user-1",
		RiderEmail: "user-1@campus.edu",
		Key:        "shared-key",
		Params:     validTripRequestParams(now),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if replayed {
		t.Error("different kind must not replay")
	}
	if tr == nil {
		t.Fatal("expected a trip request")
	}
}

func TestCreateRide_ConcurrentSameKey_OneWinner(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewRideService(store, nil)

	now := time.Now()
	req := service.CreateRideRequest{
		DriverID:    "driver-1",
		DriverEmail: "driver-1@campus.edu",
		Key:         "key-1",
		Params:      validRideParams(now),
	}

	ctx := context.Background()
	const attempts = 4
	ids := make([]string, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ride, _, err := svc.CreateRide(ctx, req)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			ids[i] = ride.ID
		}(i)
	}
	wg.Wait()

	// Every racer got the same ride back.
	for i := 1; i < attempts; i++ {
		if ids[i] != ids[0] {
			t.Errorf("attempt %d got ride %s, want %s", i, ids[i], ids[0])
		}
	}
	if store.Rides.CreateCallCount != 1 {
		t.Errorf("expected 1 ride insert, got %d", store.Rides.CreateCallCount)
	}
}

// ──────────────────────────────────────────────
// 14. CORRUPT LEDGER RECORDS
// ──────────────────────────────────────────────

func TestCreateBooking_CorruptRecord_ProceedsFresh(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewBookingService(store, nil)
	seedRide(store, "ride-1", "driver-1", 4)

	// A ledger record whose booking no longer loads.
	store.Idempotency.AddRecord(&domain.IdempotencyRecord{
		ActorID:   "rider-1",
		Key:       "key-1",
		Kind:      domain.OperationKindBooking,
		BookingID: "vanished",
		CreatedAt: time.Now().Add(-time.Hour),
	})

	booking, replayed, err := svc.CreateBooking(context.Background(), service.CreateBookingRequest{
		RiderID: "rider-1", RiderEmail: "rider-1@campus.edu",
		Key: "key-1", RideID: "ride-1", Seats: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if replayed {
		t.Error("corrupt record must not replay")
	}

	// The stale record was discarded and replaced by one pointing at the
	// fresh booking.
	if store.Idempotency.DeleteCallCount != 1 {
		t.Errorf("expected 1 ledger delete, got %d", store.Idempotency.DeleteCallCount)
	}
	rec := store.Idempotency.GetRecord("rider-1", "key-1", domain.OperationKindBooking)
	if rec == nil {
		t.Fatal("fresh idempotency record not written")
	}
	if rec.BookingID != booking.ID {
		t.Errorf("record references %q, want %q", rec.BookingID, booking.ID)
	}
}

func TestCreateOffer_RecordWithoutReference_ProceedsFresh(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewOfferService(store, nil)
	seedTripRequest(store, "tr-1", "rider-1", domain.TripRequestStatusActive)

	// A ledger record missing its reference entirely.
	store.Idempotency.AddRecord(&domain.IdempotencyRecord{
		ActorID:   "driver-1",
		Key:       "key-1",
		Kind:      domain.OperationKindOffer,
		CreatedAt: time.Now().Add(-time.Hour),
	})

	offer, replayed, err := svc.CreateOffer(context.Background(), service.CreateOfferRequest{
		DriverID:      "driver-1",
		DriverEmail:   "driver-1@campus.edu",
		Key:           "key-1",
		TripRequestID: "tr-1",
		Params:        service.OfferParams{Seats: 2, PriceCents: 900},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if replayed {
		t.Error("corrupt record must not replay")
	}
	if offer.Status != domain.OfferStatusPending {
		t.Errorf("expected a fresh PENDING offer, got %s", offer.Status)
	}
}
