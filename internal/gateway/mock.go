package gateway

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/google/uuid"

	"carshare/internal/domain"
)

// MockGateway is an in-memory payment gateway for development and tests.
// Intents start as created unless autoSucceed is set.
type MockGateway struct {
	mu          sync.RWMutex
	intents     map[string]*domain.PaymentIntent
	autoSucceed bool

	// Error injection
	CreateErr error
	GetErr    error

	CreateCalls int
	GetCalls    int
}

// NewMockGateway creates a new MockGateway.
func NewMockGateway(autoSucceed bool) *MockGateway {
	return &MockGateway{
		intents:     make(map[string]*domain.PaymentIntent),
		autoSucceed: autoSucceed,
	}
}

// CreateAuthorization records a new intent.
func (g *MockGateway) CreateAuthorization(ctx context.Context, amount int64, currency string, metadata map[string]string) (*domain.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.CreateCalls++
	if g.CreateErr != nil {
		return nil, g.CreateErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := "pi_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	status := domain.PaymentStatusCreated
	if g.autoSucceed {
		status = domain.PaymentStatusSucceeded
	}

	intent := &domain.PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret_" + uuid.New().String()[:8],
		Amount:       amount,
		Currency:     currency,
		Status:       status,
		Metadata:     maps.Clone(metadata),
	}
	g.intents[id] = intent

	return copyIntent(intent), nil
}

// GetAuthorization returns a copy of the stored intent.
func (g *MockGateway) GetAuthorization(ctx context.Context, id string) (*domain.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.GetCalls++
	if g.GetErr != nil {
		return nil, g.GetErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	intent, ok := g.intents[id]
	if !ok {
		return nil, ErrIntentNotFound
	}
	return copyIntent(intent), nil
}

// Put stores an intent as-is, replacing any intent with the same id.
func (g *MockGateway) Put(intent *domain.PaymentIntent) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.intents[intent.ID] = copyIntent(intent)
}

// MarkSucceeded simulates the customer completing payment.
func (g *MockGateway) MarkSucceeded(id string) error {
	return g.setStatus(id, domain.PaymentStatusSucceeded)
}

// MarkFailed simulates a declined or cancelled payment.
func (g *MockGateway) MarkFailed(id string) error {
	return g.setStatus(id, domain.PaymentStatusFailed)
}

func (g *MockGateway) setStatus(id string, status domain.PaymentStatus) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	intent, ok := g.intents[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrIntentNotFound, id)
	}
	intent.Status = status
	return nil
}

func copyIntent(intent *domain.PaymentIntent) *domain.PaymentIntent {
	cp := *intent
	cp.Metadata = maps.Clone(intent.Metadata)
	return &cp
}
