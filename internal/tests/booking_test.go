package tests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"campusride/internal/domain"
	"campusride/internal/repository"
	"campusride/internal/service"
)

// ──────────────────────────────────────────────
// 9. DIRECT BOOKING
// ──────────────────────────────────────────────

func seedRide(store *MockStore, id, driverID string, seats int) {
	now := time.Now()
	store.Rides.AddRide(&domain.Ride{
		ID:                id,
		DriverID:          driverID,
		Origin:            "North Campus",
		Destination:       "Airport",
		EarliestDeparture: now.Add(2 * time.Hour),
		LatestDeparture:   now.Add(4 * time.Hour),
		DistanceCategory:  domain.DistanceMedium,
		PriceCents:        1500,
		SeatsTotal:        seats,
		SeatsAvailable:    seats,
		Status:            domain.RideStatusActive,
	})
}

func TestCreateBooking_Success(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewBookingService(store, nil)
	seedRide(store, "ride-1", "driver-1", 4)

	booking, replayed, err := svc.CreateBooking(context.Background(), service.CreateBookingRequest{
		RiderID:    "rider-1",
		RiderEmail: "rider-1@campus.edu",
		Key:        "key-1",
		RideID:     "ride-1",
		Seats:      2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if replayed {
		t.Error("first booking should not be a replay")
	}
	if booking.Kind() != domain.BookingKindDirect {
		t.Errorf("expected direct booking, got %s", booking.Kind())
	}
	if booking.PriceCents != 1500 {
		t.Errorf("booking must carry the ride price, got %d", booking.PriceCents)
	}
	if booking.DriverID != "driver-1" {
		t.Errorf("booking must carry the ride's driver, got %q", booking.DriverID)
	}

	if got := store.Rides.GetRide("ride-1").SeatsAvailable; got != 2 {
		t.Errorf("expected 2 seats left, got %d", got)
	}
}

func TestCreateBooking_OwnRide(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewBookingService(store, nil)
	seedRide(store, "ride-1", "driver-1", 4)

	_, _, err := svc.CreateBooking(context.Background(), service.CreateBookingRequest{
		RiderID:    "driver-1",
		RiderEmail: "driver-1@campus.edu",
		Key:        "key-1",
		RideID:     "ride-1",
		Seats:      1,
	})
	if !errors.Is(err, service.ErrOwnRideBooking) {
		t.Errorf("expected ErrOwnRideBooking, got %v", err)
	}
}

func TestCreateBooking_InsufficientSeats(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewBookingService(store, nil)
	seedRide(store, "ride-1", "driver-1", 2)

	_, _, err := svc.CreateBooking(context.Background(), service.CreateBookingRequest{
		RiderID:    "rider-1",
		RiderEmail: "rider-1@campus.edu",
		Key:        "key-1",
		RideID:     "ride-1",
		Seats:      3,
	})
	if !errors.Is(err, service.ErrNotEnoughSeats) {
		t.Errorf("expected ErrNotEnoughSeats, got %v", err)
	}
	if got := store.Rides.GetRide("ride-1").SeatsAvailable; got != 2 {
		t.Errorf("failed booking must not touch inventory, got %d", got)
	}
}

func TestCreateBooking_DepartedRide(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewBookingService(store, nil)

	now := time.Now()
	store.Rides.AddRide(&domain.Ride{
		ID: "ride-1", DriverID: "driver-1", Origin: "A", Destination: "B",
		EarliestDeparture: now.Add(-4 * time.Hour), LatestDeparture: now.Add(-2 * time.Hour),
		DistanceCategory: domain.DistanceShort, PriceCents: 500,
		SeatsTotal: 4, SeatsAvailable: 4,
		Status: domain.RideStatusActive,
	})

	_, _, err := svc.CreateBooking(context.Background(), service.CreateBookingRequest{
		RiderID:    "rider-1",
		RiderEmail: "rider-1@campus.edu",
		Key:        "key-1",
		RideID:     "ride-1",
		Seats:      1,
	})
	if !errors.Is(err, service.ErrRideDeparted) {
		t.Errorf("expected ErrRideDeparted, got %v", err)
	}
}

func TestCreateBooking_MissingRide(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewBookingService(store, nil)

	_, _, err := svc.CreateBooking(context.Background(), service.CreateBookingRequest{
		RiderID:    "rider-1",
		RiderEmail: "rider-1@campus.edu",
		Key:        "key-1",
		RideID:     "nonexistent",
		Seats:      1,
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateBooking_SecondBookingSameRider_Conflicts(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewBookingService(store, nil)
	seedRide(store, "ride-1", "driver-1", 4)

	ctx := context.Background()
	if _, _, err := svc.CreateBooking(ctx, service.CreateBookingRequest{
		RiderID: "rider-1", RiderEmail: "rider-1@campus.edu",
		Key: "key-1", RideID: "ride-1", Seats: 2,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A different key means a genuine second attempt, not a retry.
	_, _, err := svc.CreateBooking(ctx, service.CreateBookingRequest{
		RiderID: "rider-1", RiderEmail: "rider-1@campus.edu",
		Key: "key-2", RideID: "ride-1", Seats: 1,
	})
	if !errors.Is(err, service.ErrDuplicateBooking) {
		t.Errorf("expected ErrDuplicateBooking, got %v", err)
	}

	// The losing transaction rolled back, so its seat decrement is gone.
	if got := store.Rides.GetRide("ride-1").SeatsAvailable; got != 2 {
		t.Errorf("expected 2 seats left after rollback, got %d", got)
	}
}

// ──────────────────────────────────────────────
// 10. SEAT INVENTORY UNDER CONCURRENCY
// ──────────────────────────────────────────────

func TestCreateBooking_ConcurrentOverbooking(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewBookingService(store, nil)
	seedRide(store, "ride-1", "driver-1", 4)

	// Two riders race for 3 and 2 of the 4 seats. Exactly one can win.
	ctx := context.Background()
	results := make([]error, 2)
	var wg sync.WaitGroup
	for i, seats := range []int{3, 2} {
		wg.Add(1)
		go func(i, seats int) {
			defer wg.Done()
			_, _, err := svc.CreateBooking(ctx, service.CreateBookingRequest{
				RiderID:    []string{"rider-1", "rider-2"}[i],
				RiderEmail: "rider@campus.edu",
				Key:        []string{"key-1", "key-2"}[i],
				RideID:     "ride-1",
				Seats:      seats,
			})
			results[i] = err
		}(i, seats)
	}
	wg.Wait()

	wins, losses := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, service.ErrNotEnoughSeats):
			losses++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 || losses != 1 {
		t.Errorf("expected exactly one winner and one loser, got %d/%d", wins, losses)
	}

	// Seats never go negative and reserved seats equal confirmed seats.
	ride := store.Rides.GetRide("ride-1")
	if ride.SeatsAvailable < 0 {
		t.Errorf("seat inventory went negative: %d", ride.SeatsAvailable)
	}
	held := store.Bookings.CountConfirmedSeats("ride-1")
	if ride.SeatsAvailable+held != ride.SeatsTotal {
		t.Errorf("seat conservation broken: %d available + %d held != %d total",
			ride.SeatsAvailable, held, ride.SeatsTotal)
	}
}

// ──────────────────────────────────────────────
// 11. BOOKING CANCELLATION
// ──────────────────────────────────────────────

func TestCancelBooking_ReleasesSeats(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewBookingService(store, nil)
	seedRide(store, "ride-1", "driver-1", 4)

	ctx := context.Background()
	booking, _, err := svc.CreateBooking(ctx, service.CreateBookingRequest{
		RiderID: "rider-1", RiderEmail: "rider-1@campus.edu",
		Key: "key-1", RideID: "ride-1", Seats: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.CancelBooking(ctx, "rider-1", booking.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := store.Bookings.GetBooking(booking.ID)
	if stored.Status != domain.BookingStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", stored.Status)
	}
	if stored.CancelledAt.IsZero() {
		t.Error("cancellation time not stamped")
	}
	if got := store.Rides.GetRide("ride-1").SeatsAvailable; got != 4 {
		t.Errorf("expected seats restored to 4, got %d", got)
	}
}

func TestCancelBooking_Twice_IsIdempotent(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewBookingService(store, nil)
	seedRide(store, "ride-1", "driver-1", 4)

	ctx := context.Background()
	booking, _, err := svc.CreateBooking(ctx, service.CreateBookingRequest{
		RiderID: "rider-1", RiderEmail: "rider-1@campus.edu",
		Key: "key-1", RideID: "ride-1", Seats: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.CancelBooking(ctx, "rider-1", booking.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.CancelBooking(ctx, "rider-1", booking.ID); err != nil {
		t.Fatalf("second cancel must succeed: %v", err)
	}

	// Seats are released exactly once.
	if store.Rides.ReleaseSeatsCallCount != 1 {
		t.Errorf("expected 1 release, got %d", store.Rides.ReleaseSeatsCallCount)
	}
	if got := store.Rides.GetRide("ride-1").SeatsAvailable; got != 4 {
		t.Errorf("expected 4 seats, got %d", got)
	}
}

func TestCancelBooking_NotOwner(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewBookingService(store, nil)
	seedRide(store, "ride-1", "driver-1", 4)

	ctx := context.Background()
	booking, _, err := svc.CreateBooking(ctx, service.CreateBookingRequest{
		RiderID: "rider-1", RiderEmail: "rider-1@campus.edu",
		Key: "key-1", RideID: "ride-1", Seats: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Not even the driver may cancel the rider's booking.
	err = svc.CancelBooking(ctx, "driver-1", booking.ID)
	if !errors.Is(err, service.ErrNotBookingOwner) {
		t.Errorf("expected ErrNotBookingOwner, got %v", err)
	}
}

func TestCancelBooking_Matched_Rejected(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewBookingService(store, nil)

	store.Bookings.AddBooking(&domain.Booking{
		ID: "b-matched", TripRequestID: "tr-1", DriverID: "driver-1", RiderID: "rider-1",
		Seats: 2, PriceCents: 900, Status: domain.BookingStatusConfirmed,
	})

	err := svc.CancelBooking(context.Background(), "rider-1", "b-matched")
	if !errors.Is(err, service.ErrMatchedBookingCancel) {
		t.Errorf("expected ErrMatchedBookingCancel, got %v", err)
	}
}

// ──────────────────────────────────────────────
// 12. BOOKING VISIBILITY
// ──────────────────────────────────────────────

func TestGetBooking_Visibility(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	svc := service.NewBookingService(store, nil)
	seedRide(store, "ride-1", "driver-1", 4)

	ctx := context.Background()
	booking, _, err := svc.CreateBooking(ctx, service.CreateBookingRequest{
		RiderID: "rider-1", RiderEmail: "rider-1@campus.edu",
		Key: "key-1", RideID: "ride-1", Seats: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, actor := range []string{"rider-1", "driver-1"} {
		if _, err := svc.GetBooking(ctx, actor, booking.ID); err != nil {
			t.Errorf("%s should see the booking: %v", actor, err)
		}
	}

	_, err = svc.GetBooking(ctx, "stranger", booking.ID)
	if !errors.Is(err, service.ErrNotBookingParty) {
		t.Errorf("expected ErrNotBookingParty, got %v", err)
	}
}
