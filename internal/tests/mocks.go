package tests

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"campusride/internal/domain"
	"campusride/internal/pagination"
	"campusride/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	// Counters for verification
	EnsureCallCount int32

	// Error injection
	EnsureError error
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *MockUserRepository) Ensure(ctx context.Context, user *domain.User) error {
	atomic.AddInt32(&m.EnsureCallCount, 1)
	if m.EnsureError != nil {
		return m.EnsureError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		copy := *user
		m.users[user.ID] = &copy
	}
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

func (m *MockUserRepository) snapshot() map[string]*domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := make(map[string]*domain.User, len(m.users))
	for id, u := range m.users {
		copy := *u
		snap[id] = &copy
	}
	return snap
}

func (m *MockUserRepository) restore(snap map[string]*domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = snap
}

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of RideRepository.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride

	// Counters for verification
	CreateCallCount       int32
	ReserveSeatsCallCount int32
	ReleaseSeatsCallCount int32

	// Error injection
	CreateError       error
	ReserveSeatsError error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[string]*domain.Ride),
	}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *ride
	m.rides[ride.ID] = &copy
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *ride
	m.rides[ride.ID] = &copy
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *ride
	return &copy, nil
}

func (m *MockRideRepository) List(ctx context.Context, filter repository.RideFilter, after *pagination.Cursor, limit int) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	now := time.Now()
	var result []*domain.Ride
	for _, r := range m.rides {
		if r.Status != domain.RideStatusActive || !r.LatestDeparture.After(now) {
			continue
		}
		if filter.Origin != "" && !containsFold(r.Origin, filter.Origin) {
			continue
		}
		if filter.Destination != "" && !containsFold(r.Destination, filter.Destination) {
			continue
		}
		if filter.Category != "" && r.DistanceCategory != filter.Category {
			continue
		}
		if filter.MinSeats > 0 && r.SeatsAvailable < filter.MinSeats {
			continue
		}
		if after != nil && !afterCursor(r.EarliestDeparture, r.ID, after) {
			continue
		}
		copy := *r
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].EarliestDeparture.Equal(result[j].EarliestDeparture) {
			return result[i].EarliestDeparture.Before(result[j].EarliestDeparture)
		}
		return result[i].ID < result[j].ID
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockRideRepository) ReserveSeats(ctx context.Context, rideID string, seats int, now time.Time) (bool, error) {
	atomic.AddInt32(&m.ReserveSeatsCallCount, 1)
	if m.ReserveSeatsError != nil {
		return false, m.ReserveSeatsError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return false, nil
	}
	if ride.Status != domain.RideStatusActive || !ride.LatestDeparture.After(now) || ride.SeatsAvailable < seats {
		return false, nil
	}
	ride.SeatsAvailable -= seats
	return true, nil
}

func (m *MockRideRepository) ReleaseSeats(ctx context.Context, rideID string, seats int) error {
	atomic.AddInt32(&m.ReleaseSeatsCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if ride, ok := m.rides[rideID]; ok {
		ride.SeatsAvailable += seats
	}
	return nil
}

// GetRide returns a ride for test assertions.
func (m *MockRideRepository) GetRide(id string) *domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rides[id]
}

func (m *MockRideRepository) snapshot() map[string]*domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := make(map[string]*domain.Ride, len(m.rides))
	for id, r := range m.rides {
		copy := *r
		snap[id] = &copy
	}
	return snap
}

func (m *MockRideRepository) restore(snap map[string]*domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides = snap
}

// ──────────────────────────────────────────────
// MOCK TRIP REQUEST REPOSITORY
// ──────────────────────────────────────────────

// MockTripRequestRepository is a mock implementation of TripRequestRepository.
type MockTripRequestRepository struct {
	mu       sync.RWMutex
	requests map[string]*domain.TripRequest

	// Counters for verification
	CreateCallCount       int32
	UpdateStatusCallCount int32

	// Error injection
	CreateError       error
	UpdateStatusError error
}

// NewMockTripRequestRepository creates a new mock trip request repository.
func NewMockTripRequestRepository() *MockTripRequestRepository {
	return &MockTripRequestRepository{
		requests: make(map[string]*domain.TripRequest),
	}
}

// AddTripRequest adds a trip request to the mock repository.
func (m *MockTripRequestRepository) AddTripRequest(tr *domain.TripRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *tr
	m.requests[tr.ID] = &copy
}

func (m *MockTripRequestRepository) Create(ctx context.Context, tr *domain.TripRequest) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *tr
	m.requests[tr.ID] = &copy
	return nil
}

func (m *MockTripRequestRepository) GetByID(ctx context.Context, id string) (*domain.TripRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tr, ok := m.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *tr
	return &copy, nil
}

func (m *MockTripRequestRepository) List(ctx context.Context, filter repository.TripRequestFilter, after *pagination.Cursor, limit int) ([]*domain.TripRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	now := time.Now()
	var result []*domain.TripRequest
	for _, tr := range m.requests {
		if tr.Status != domain.TripRequestStatusActive || !tr.LatestDeparture.After(now) {
			continue
		}
		if filter.Origin != "" && !containsFold(tr.Origin, filter.Origin) {
			continue
		}
		if filter.Destination != "" && !containsFold(tr.Destination, filter.Destination) {
			continue
		}
		if filter.Category != "" && tr.DistanceCategory != filter.Category {
			continue
		}
		if filter.MaxSeats > 0 && tr.SeatsNeeded > filter.MaxSeats {
			continue
		}
		if after != nil && !afterCursor(tr.EarliestDeparture, tr.ID, after) {
			continue
		}
		copy := *tr
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].EarliestDeparture.Equal(result[j].EarliestDeparture) {
			return result[i].EarliestDeparture.Before(result[j].EarliestDeparture)
		}
		return result[i].ID < result[j].ID
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockTripRequestRepository) UpdateStatus(ctx context.Context, id string, from, to domain.TripRequestStatus) (bool, error) {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return false, m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tr, ok := m.requests[id]
	if !ok || tr.Status != from {
		return false, nil
	}
	tr.Status = to
	return true, nil
}

// GetTripRequest returns a trip request for test assertions.
func (m *MockTripRequestRepository) GetTripRequest(id string) *domain.TripRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests[id]
}

func (m *MockTripRequestRepository) snapshot() map[string]*domain.TripRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := make(map[string]*domain.TripRequest, len(m.requests))
	for id, tr := range m.requests {
		copy := *tr
		snap[id] = &copy
	}
	return snap
}

func (m *MockTripRequestRepository) restore(snap map[string]*domain.TripRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = snap
}

// ──────────────────────────────────────────────
// MOCK OFFER REPOSITORY
// ──────────────────────────────────────────────

// MockOfferRepository is a mock implementation of OfferRepository. It
// emulates the two partial unique indexes on offers: one non-terminal offer
// per (trip request, driver), one ACCEPTED offer per trip request.
type MockOfferRepository struct {
	mu     sync.RWMutex
	offers map[string]*domain.Offer

	// Counters for verification
	CreateCallCount              int32
	UpdateStatusCallCount        int32
	CancelPendingExceptCallCount int32

	// Error injection
	CreateError       error
	UpdateStatusError error
}

// NewMockOfferRepository creates a new mock offer repository.
func NewMockOfferRepository() *MockOfferRepository {
	return &MockOfferRepository{
		offers: make(map[string]*domain.Offer),
	}
}

// AddOffer adds an offer to the mock repository.
func (m *MockOfferRepository) AddOffer(offer *domain.Offer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *offer
	m.offers[offer.ID] = &copy
}

func (m *MockOfferRepository) Create(ctx context.Context, offer *domain.Offer) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.offers {
		if o.TripRequestID == offer.TripRequestID && o.DriverID == offer.DriverID && !o.Terminal() {
			return repository.ErrDuplicate
		}
	}
	copy := *offer
	m.offers[offer.ID] = &copy
	return nil
}

func (m *MockOfferRepository) GetByID(ctx context.Context, id string) (*domain.Offer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	offer, ok := m.offers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *offer
	return &copy, nil
}

func (m *MockOfferRepository) ListByTripRequest(ctx context.Context, tripRequestID string) ([]*domain.Offer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Offer
	for _, o := range m.offers {
		if o.TripRequestID == tripRequestID {
			copy := *o
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (m *MockOfferRepository) GetActive(ctx context.Context, tripRequestID, driverID string) (*domain.Offer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.offers {
		if o.TripRequestID == tripRequestID && o.DriverID == driverID && !o.Terminal() {
			copy := *o
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockOfferRepository) GetAccepted(ctx context.Context, tripRequestID string) (*domain.Offer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.offers {
		if o.TripRequestID == tripRequestID && o.Status == domain.OfferStatusAccepted {
			copy := *o
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockOfferRepository) UpdateStatus(ctx context.Context, id string, from, to domain.OfferStatus) (bool, error) {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return false, m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	offer, ok := m.offers[id]
	if !ok || offer.Status != from {
		return false, nil
	}
	if to == domain.OfferStatusAccepted {
		for _, o := range m.offers {
			if o.ID != id && o.TripRequestID == offer.TripRequestID && o.Status == domain.OfferStatusAccepted {
				return false, repository.ErrDuplicate
			}
		}
	}
	offer.Status = to
	return true, nil
}

func (m *MockOfferRepository) CancelPendingExcept(ctx context.Context, tripRequestID, exceptOfferID string) (int, error) {
	atomic.AddInt32(&m.CancelPendingExceptCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, o := range m.offers {
		if o.TripRequestID == tripRequestID && o.ID != exceptOfferID && o.Status == domain.OfferStatusPending {
			o.Status = domain.OfferStatusCancelled
			n++
		}
	}
	return n, nil
}

// GetOffer returns an offer for test assertions.
func (m *MockOfferRepository) GetOffer(id string) *domain.Offer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.offers[id]
}

func (m *MockOfferRepository) snapshot() map[string]*domain.Offer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := make(map[string]*domain.Offer, len(m.offers))
	for id, o := range m.offers {
		copy := *o
		snap[id] = &copy
	}
	return snap
}

func (m *MockOfferRepository) restore(snap map[string]*domain.Offer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offers = snap
}

// ──────────────────────────────────────────────
// MOCK BOOKING REPOSITORY
// ──────────────────────────────────────────────

// MockBookingRepository is a mock implementation of BookingRepository. It
// emulates the partial unique index on one CONFIRMED booking per
// (ride, rider).
type MockBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*domain.Booking

	// Counters for verification
	CreateCallCount int32
	CancelCallCount int32

	// Error injection
	CreateError error
	CancelError error
}

// NewMockBookingRepository creates a new mock booking repository.
func NewMockBookingRepository() *MockBookingRepository {
	return &MockBookingRepository{
		bookings: make(map[string]*domain.Booking),
	}
}

// AddBooking adds a booking to the mock repository.
func (m *MockBookingRepository) AddBooking(b *domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *b
	m.bookings[b.ID] = &copy
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if booking.RideID != "" {
		for _, b := range m.bookings {
			if b.RideID == booking.RideID && b.RiderID == booking.RiderID && b.Status == domain.BookingStatusConfirmed {
				return repository.ErrDuplicate
			}
		}
	}
	copy := *booking
	m.bookings[booking.ID] = &copy
	return nil
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *b
	return &copy, nil
}

func (m *MockBookingRepository) GetConfirmedByRideAndRider(ctx context.Context, rideID, riderID string) (*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.bookings {
		if b.RideID == rideID && b.RiderID == riderID && b.Status == domain.BookingStatusConfirmed {
			copy := *b
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockBookingRepository) GetConfirmedMatched(ctx context.Context, tripRequestID, driverID string) (*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.bookings {
		if b.TripRequestID == tripRequestID && b.DriverID == driverID && b.Status == domain.BookingStatusConfirmed {
			copy := *b
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockBookingRepository) Cancel(ctx context.Context, id string, at time.Time) (bool, error) {
	atomic.AddInt32(&m.CancelCallCount, 1)
	if m.CancelError != nil {
		return false, m.CancelError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.Status != domain.BookingStatusConfirmed {
		return false, nil
	}
	b.Status = domain.BookingStatusCancelled
	b.CancelledAt = at
	return true, nil
}

// GetBooking returns a booking for test assertions.
func (m *MockBookingRepository) GetBooking(id string) *domain.Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bookings[id]
}

// CountConfirmedSeats sums the seats held by CONFIRMED bookings on a ride.
func (m *MockBookingRepository) CountConfirmedSeats(rideID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, b := range m.bookings {
		if b.RideID == rideID && b.Status == domain.BookingStatusConfirmed {
			total += b.Seats
		}
	}
	return total
}

func (m *MockBookingRepository) snapshot() map[string]*domain.Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := make(map[string]*domain.Booking, len(m.bookings))
	for id, b := range m.bookings {
		copy := *b
		snap[id] = &copy
	}
	return snap
}

func (m *MockBookingRepository) restore(snap map[string]*domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings = snap
}

// ──────────────────────────────────────────────
// MOCK IDEMPOTENCY REPOSITORY
// ──────────────────────────────────────────────

// MockIdempotencyRepository is a mock implementation of
// IdempotencyRepository keyed by the (actor, key, kind) triple.
type MockIdempotencyRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.IdempotencyRecord

	// Counters for verification
	CreateCallCount int32
	DeleteCallCount int32

	// Error injection
	GetError    error
	CreateError error
}

// NewMockIdempotencyRepository creates a new mock idempotency repository.
func NewMockIdempotencyRepository() *MockIdempotencyRepository {
	return &MockIdempotencyRepository{
		records: make(map[string]*domain.IdempotencyRecord),
	}
}

func idemKey(actorID, key string, kind domain.OperationKind) string {
	return actorID + "|" + key + "|" + string(kind)
}

// AddRecord adds a record to the mock repository.
func (m *MockIdempotencyRepository) AddRecord(rec *domain.IdempotencyRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *rec
	m.records[idemKey(rec.ActorID, rec.Key, rec.Kind)] = &copy
}

func (m *MockIdempotencyRepository) Get(ctx context.Context, actorID, key string, kind domain.OperationKind) (*domain.IdempotencyRecord, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[idemKey(actorID, key, kind)]
	if !ok {
		return nil, nil
	}
	copy := *rec
	return &copy, nil
}

func (m *MockIdempotencyRepository) Create(ctx context.Context, rec *domain.IdempotencyRecord) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := idemKey(rec.ActorID, rec.Key, rec.Kind)
	if _, ok := m.records[k]; ok {
		return repository.ErrDuplicate
	}
	copy := *rec
	m.records[k] = &copy
	return nil
}

func (m *MockIdempotencyRepository) Delete(ctx context.Context, actorID, key string, kind domain.OperationKind) error {
	atomic.AddInt32(&m.DeleteCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, idemKey(actorID, key, kind))
	return nil
}

// GetRecord returns a record for test assertions.
func (m *MockIdempotencyRepository) GetRecord(actorID, key string, kind domain.OperationKind) *domain.IdempotencyRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.records[idemKey(actorID, key, kind)]
}

func (m *MockIdempotencyRepository) snapshot() map[string]*domain.IdempotencyRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := make(map[string]*domain.IdempotencyRecord, len(m.records))
	for k, rec := range m.records {
		copy := *rec
		snap[k] = &copy
	}
	return snap
}

func (m *MockIdempotencyRepository) restore(snap map[string]*domain.IdempotencyRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = snap
}

// ──────────────────────────────────────────────
// MOCK STORE
// ──────────────────────────────────────────────

// MockStore is a mock implementation of repository.Store over the mock
// repositories. RunInTx serializes transactions with a mutex and rolls the
// whole store back to its pre-transaction state when fn fails, matching the
// all-or-nothing semantics of the real store.
type MockStore struct {
	txMu sync.Mutex

	Users        *MockUserRepository
	Rides        *MockRideRepository
	TripRequests *MockTripRequestRepository
	Offers       *MockOfferRepository
	Bookings     *MockBookingRepository
	Idempotency  *MockIdempotencyRepository

	// Counters for verification
	TxCallCount int32

	// Error injection
	TxError error
}

var _ repository.Store = (*MockStore)(nil)

// NewMockStore creates a mock store with empty repositories.
func NewMockStore() *MockStore {
	return &MockStore{
		Users:        NewMockUserRepository(),
		Rides:        NewMockRideRepository(),
		TripRequests: NewMockTripRequestRepository(),
		Offers:       NewMockOfferRepository(),
		Bookings:     NewMockBookingRepository(),
		Idempotency:  NewMockIdempotencyRepository(),
	}
}

func (s *MockStore) Repos() repository.Repositories {
	return repository.Repositories{
		Users:        s.Users,
		Rides:        s.Rides,
		TripRequests: s.TripRequests,
		Offers:       s.Offers,
		Bookings:     s.Bookings,
		Idempotency:  s.Idempotency,
	}
}

func (s *MockStore) RunInTx(ctx context.Context, fn func(repository.Repositories) error) error {
	atomic.AddInt32(&s.TxCallCount, 1)
	if s.TxError != nil {
		return s.TxError
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := storeSnapshot{
		users:        s.Users.snapshot(),
		rides:        s.Rides.snapshot(),
		tripRequests: s.TripRequests.snapshot(),
		offers:       s.Offers.snapshot(),
		bookings:     s.Bookings.snapshot(),
		idempotency:  s.Idempotency.snapshot(),
	}

	if err := fn(s.Repos()); err != nil {
		s.Users.restore(snap.users)
		s.Rides.restore(snap.rides)
		s.TripRequests.restore(snap.tripRequests)
		s.Offers.restore(snap.offers)
		s.Bookings.restore(snap.bookings)
		s.Idempotency.restore(snap.idempotency)
		return err
	}
	return nil
}

type storeSnapshot struct {
	users        map[string]*domain.User
	rides        map[string]*domain.Ride
	tripRequests map[string]*domain.TripRequest
	offers       map[string]*domain.Offer
	bookings     map[string]*domain.Booking
	idempotency  map[string]*domain.IdempotencyRecord
}

// ──────────────────────────────────────────────
// HELPERS
// ──────────────────────────────────────────────

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// afterCursor reports whether (t, id) sorts strictly after the cursor in
// (earliest departure, id) order.
func afterCursor(t time.Time, id string, c *pagination.Cursor) bool {
	if t.After(c.Time) {
		return true
	}
	return t.Equal(c.Time) && id > c.ID
}
