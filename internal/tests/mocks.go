package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"tripmatch/internal/domain"
	"tripmatch/internal/repository"
	"tripmatch/internal/service"
)

// ──────────────────────────────────────────────
// MOCK CONFIRMATION REPOSITORY
// ──────────────────────────────────────────────

// MockConfirmationRepository is an in-memory implementation of
// ConfirmationRepository with real compare-and-swap semantics, so
// concurrency behavior can be exercised without a database.
type MockConfirmationRepository struct {
	mu            sync.RWMutex
	confirmations map[string]*domain.Confirmation

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32
	ListCallCount   int32

	// Error injection
	CreateError    error
	GetError       error
	UpdateError    error
	ListError      error
	UpdateErrorIDs map[string]error

	// ListGate, when set, blocks ListPendingPastDeparture until the
	// channel is closed; it lets tests hold a sweep mid-pass.
	ListGate chan struct{}
}

// NewMockConfirmationRepository creates a new mock confirmation repository.
func NewMockConfirmationRepository() *MockConfirmationRepository {
	return &MockConfirmationRepository{
		confirmations: make(map[string]*domain.Confirmation),
	}
}

// AddConfirmation seeds a confirmation, bypassing constraint checks.
func (m *MockConfirmationRepository) AddConfirmation(c *domain.Confirmation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *c
	m.confirmations[c.ID] = &copied
}

// GetConfirmation returns the stored record for test assertions.
func (m *MockConfirmationRepository) GetConfirmation(id string) *domain.Confirmation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.confirmations[id]
	if !ok {
		return nil
	}
	copied := *c
	return &copied
}

// CountConfirmations returns the number of stored records.
func (m *MockConfirmationRepository) CountConfirmations() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.confirmations)
}

func (m *MockConfirmationRepository) Create(ctx context.Context, c *domain.Confirmation) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	// Enforce the partial unique constraint the real store carries.
	for _, existing := range m.confirmations {
		if existing.PassengerID == c.PassengerID &&
			existing.Target == c.Target &&
			existing.Status != domain.ConfirmationRejected {
			return repository.ErrDuplicateActive
		}
	}

	copied := *c
	m.confirmations[c.ID] = &copied
	return nil
}

func (m *MockConfirmationRepository) GetByID(ctx context.Context, id string) (*domain.Confirmation, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.confirmations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *MockConfirmationRepository) Update(ctx context.Context, c *domain.Confirmation, expectedUpdatedAt time.Time) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	if err, ok := m.UpdateErrorIDs[c.ID]; ok {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.confirmations[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if !stored.UpdatedAt.Equal(expectedUpdatedAt) {
		return repository.ErrVersionConflict
	}

	copied := *c
	m.confirmations[c.ID] = &copied
	return nil
}

func (m *MockConfirmationRepository) GetActiveByPassengerAndTarget(ctx context.Context, passengerID string, target domain.TargetRef) (*domain.Confirmation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.confirmations {
		if c.PassengerID == passengerID && c.Target == target && c.Status != domain.ConfirmationRejected {
			copied := *c
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockConfirmationRepository) GetLatestRejected(ctx context.Context, passengerID string, target domain.TargetRef) (*domain.Confirmation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *domain.Confirmation
	for _, c := range m.confirmations {
		if c.PassengerID != passengerID || c.Target != target || c.Status != domain.ConfirmationRejected {
			continue
		}
		if latest == nil || c.ConfirmedAt.After(latest.ConfirmedAt) {
			latest = c
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	copied := *latest
	return &copied, nil
}

func (m *MockConfirmationRepository) ListPendingPastDeparture(ctx context.Context, now time.Time) ([]*domain.Confirmation, error) {
	atomic.AddInt32(&m.ListCallCount, 1)
	if m.ListError != nil {
		return nil, m.ListError
	}
	if m.ListGate != nil {
		<-m.ListGate
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Confirmation
	for _, c := range m.confirmations {
		if c.Status == domain.ConfirmationPending && !c.DepartureAt.After(now) {
			copied := *c
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *MockConfirmationRepository) ListByPassenger(ctx context.Context, passengerID string) ([]*domain.Confirmation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Confirmation
	for _, c := range m.confirmations {
		if c.PassengerID == passengerID {
			copied := *c
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *MockConfirmationRepository) ListByTarget(ctx context.Context, target domain.TargetRef) ([]*domain.Confirmation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Confirmation
	for _, c := range m.confirmations {
		if c.Target == target {
			copied := *c
			result = append(result, &copied)
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of RideRepository.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{rides: make(map[string]*domain.Ride)}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *ride
	return &copied, nil
}

func (m *MockRideRepository) GetAll(ctx context.Context) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Ride, 0, len(m.rides))
	for _, ride := range m.rides {
		copied := *ride
		result = append(result, &copied)
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository.
type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{trips: make(map[string]*domain.Trip)}
}

// AddTrip adds a trip to the mock repository.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *trip
	return &copied, nil
}

func (m *MockTripRepository) GetAll(ctx context.Context) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Trip, 0, len(m.trips))
	for _, trip := range m.trips {
		copied := *trip
		result = append(result, &copied)
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK NOTIFICATION SENDER
// ──────────────────────────────────────────────

// MockSender records notifications instead of delivering them.
type MockSender struct {
	mu   sync.Mutex
	sent []service.Notification

	// Error injection
	SendError error
}

// NewMockSender creates a new mock notification sender.
func NewMockSender() *MockSender {
	return &MockSender{}
}

func (m *MockSender) Send(ctx context.Context, n service.Notification) error {
	if m.SendError != nil {
		return m.SendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, n)
	return nil
}

// Sent returns a copy of all recorded notifications.
func (m *MockSender) Sent() []service.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]service.Notification, len(m.sent))
	copy(result, m.sent)
	return result
}

// CountByType returns how many notifications of a type were recorded.
func (m *MockSender) CountByType(t service.NotificationType) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.sent {
		if n.Type == t {
			count++
		}
	}
	return count
}

// ──────────────────────────────────────────────
// MOCK SWEEP LOCK
// ──────────────────────────────────────────────

// MockSweepLock is a mock implementation of the sweep lock.
type MockSweepLock struct {
	// AcquireResult controls whether the lock is granted (default true
	// via NewMockSweepLock).
	AcquireResult bool
	AcquireError  error

	AcquireCallCount int32
	ReleaseCallCount int32
}

// NewMockSweepLock creates a mock sweep lock that always grants the lock.
func NewMockSweepLock() *MockSweepLock {
	return &MockSweepLock{AcquireResult: true}
}

func (m *MockSweepLock) AcquireSweepLock(ctx context.Context, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	return m.AcquireResult, nil
}

func (m *MockSweepLock) ReleaseSweepLock(ctx context.Context) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	return nil
}
