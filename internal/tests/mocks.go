package tests

import (
	"context"
	"io"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"carshare/internal/auth"
	"carshare/internal/domain"
	"carshare/internal/redis"
	"carshare/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK BOOKING REPOSITORY
// ──────────────────────────────────────────────

// MockBookingRepository is an in-memory BookingRepository. Like the
// bookings table, it rejects a second booking for the same payment intent.
type MockBookingRepository struct {
	mu              sync.RWMutex
	bookings        map[string]*domain.Booking
	byPaymentIntent map[string]string

	// Counters for verification
	CreateCallCount int32
	LookupCallCount int32

	// Error injection
	CreateError error
	LookupError error
}

// NewMockBookingRepository creates a new mock booking repository.
func NewMockBookingRepository() *MockBookingRepository {
	return &MockBookingRepository{
		bookings:        make(map[string]*domain.Booking),
		byPaymentIntent: make(map[string]string),
	}
}

// AddBooking stores a booking directly, bypassing uniqueness checks.
func (m *MockBookingRepository) AddBooking(b *domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.bookings[b.ID] = &cp
	m.byPaymentIntent[b.PaymentIntentID] = b.ID
}

// Count returns the number of stored bookings.
func (m *MockBookingRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bookings)
}

func (m *MockBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byPaymentIntent[b.PaymentIntentID]; exists {
		return repository.ErrDuplicate
	}
	cp := *b
	m.bookings[b.ID] = &cp
	m.byPaymentIntent[b.PaymentIntentID] = b.ID
	return nil
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *MockBookingRepository) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*domain.Booking, error) {
	atomic.AddInt32(&m.LookupCallCount, 1)
	if m.LookupError != nil {
		return nil, m.LookupError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byPaymentIntent[paymentIntentID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *m.bookings[id]
	return &cp, nil
}

func (m *MockBookingRepository) ListByUser(ctx context.Context, filter repository.BookingFilter) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*domain.Booking
	for _, b := range m.bookings {
		if b.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		cp := *b
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if filter.Offset >= uint64(len(result)) {
		return nil, nil
	}
	result = result[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < uint64(len(result)) {
		result = result[:filter.Limit]
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK VEHICLE REPOSITORY
// ──────────────────────────────────────────────

// MockVehicleRepository is an in-memory VehicleRepository.
type MockVehicleRepository struct {
	mu       sync.RWMutex
	vehicles map[string]*domain.Vehicle

	GetCallCount int32

	GetError error
}

// NewMockVehicleRepository creates a new mock vehicle repository.
func NewMockVehicleRepository() *MockVehicleRepository {
	return &MockVehicleRepository{
		vehicles: make(map[string]*domain.Vehicle),
	}
}

// AddVehicle adds a vehicle to the mock repository.
func (m *MockVehicleRepository) AddVehicle(v *domain.Vehicle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *v
	m.vehicles[v.ID] = &cp
}

func (m *MockVehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	if m.GetError != nil {
		return nil, m.GetError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vehicles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (m *MockVehicleRepository) GetRateCard(ctx context.Context, id string) (*domain.RateCard, error) {
	v, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &v.RateCard, nil
}

func (m *MockVehicleRepository) UpdateRateCard(ctx context.Context, id string, rc domain.RateCard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vehicles[id]
	if !ok {
		return repository.ErrNotFound
	}
	v.RateCard = rc
	return nil
}

// ──────────────────────────────────────────────
// MOCK PROFILE REPOSITORY
// ──────────────────────────────────────────────

// MockProfileRepository is an in-memory ProfileRepository.
type MockProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]*domain.Profile

	GetError error
}

// NewMockProfileRepository creates a new mock profile repository.
func NewMockProfileRepository() *MockProfileRepository {
	return &MockProfileRepository{
		profiles: make(map[string]*domain.Profile),
	}
}

// AddProfile adds a profile to the mock repository.
func (m *MockProfileRepository) AddProfile(p *domain.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.profiles[p.UserID] = &cp
}

func (m *MockProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// ──────────────────────────────────────────────
// MOCK QUOTE STORE
// ──────────────────────────────────────────────

// MockQuoteStore is an in-memory QuoteStoreInterface.
type MockQuoteStore struct {
	mu        sync.RWMutex
	snapshots map[string]*redis.QuoteSnapshot

	SaveError error
	GetError  error
}

// NewMockQuoteStore creates a new mock quote store.
func NewMockQuoteStore() *MockQuoteStore {
	return &MockQuoteStore{
		snapshots: make(map[string]*redis.QuoteSnapshot),
	}
}

func (m *MockQuoteStore) SaveSnapshot(ctx context.Context, paymentIntentID string, snapshot *redis.QuoteSnapshot) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.snapshots[paymentIntentID]; !exists {
		cp := *snapshot
		m.snapshots[paymentIntentID] = &cp
	}
	return nil
}

func (m *MockQuoteStore) GetSnapshot(ctx context.Context, paymentIntentID string) (*redis.QuoteSnapshot, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.snapshots[paymentIntentID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

// ──────────────────────────────────────────────
// MOCK CREDENTIAL VERIFIER
// ──────────────────────────────────────────────

// MockVerifier maps fixed tokens to subjects.
type MockVerifier struct {
	tokens map[string]string
}

// NewMockVerifier creates a verifier accepting the given token → user id pairs.
func NewMockVerifier(tokens map[string]string) *MockVerifier {
	return &MockVerifier{tokens: tokens}
}

func (m *MockVerifier) Verify(token string) (*auth.Claims, error) {
	userID, ok := m.tokens[token]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	claims := &auth.Claims{}
	claims.Subject = userID
	return claims, nil
}

// ──────────────────────────────────────────────
// MOCK EVENT PUBLISHER
// ──────────────────────────────────────────────

// MockPublisher records published events.
type MockPublisher struct {
	mu       sync.Mutex
	Messages []string

	SendError error
}

func (m *MockPublisher) Send(ctx context.Context, key, value []byte) error {
	if m.SendError != nil {
		return m.SendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, string(value))
	return nil
}

// Sent returns the number of published events.
func (m *MockPublisher) Sent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Messages)
}

// quietLogger returns a logger that discards output.
func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
