package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carshare/internal/domain"
)

func TestMockGateway_Lifecycle(t *testing.T) {
	g := NewMockGateway(false)
	ctx := context.Background()

	intent, err := g.CreateAuthorization(ctx, 41800, "jpy", map[string]string{"vehicle_id": "v-1"})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCreated, intent.Status)
	assert.NotEmpty(t, intent.ClientSecret)

	require.NoError(t, g.MarkSucceeded(intent.ID))

	got, err := g.GetAuthorization(ctx, intent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusSucceeded, got.Status)
	assert.Equal(t, int64(41800), got.Amount)
	assert.Equal(t, "v-1", got.Metadata["vehicle_id"])
}

func TestMockGateway_AutoSucceed(t *testing.T) {
	g := NewMockGateway(true)

	intent, err := g.CreateAuthorization(context.Background(), 100, "jpy", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusSucceeded, intent.Status)
}

func TestMockGateway_UnknownIntent(t *testing.T) {
	g := NewMockGateway(false)

	_, err := g.GetAuthorization(context.Background(), "pi_missing")
	assert.ErrorIs(t, err, ErrIntentNotFound)
	assert.ErrorIs(t, g.MarkFailed("pi_missing"), ErrIntentNotFound)
}

func TestMockGateway_ReturnsCopies(t *testing.T) {
	g := NewMockGateway(false)
	g.Put(&domain.PaymentIntent{ID: "pi_123", Amount: 500, Status: domain.PaymentStatusSucceeded, Metadata: map[string]string{"k": "v"}})

	got, err := g.GetAuthorization(context.Background(), "pi_123")
	require.NoError(t, err)
	got.Metadata["k"] = "changed"
	got.Status = domain.PaymentStatusFailed

	again, err := g.GetAuthorization(context.Background(), "pi_123")
	require.NoError(t, err)
	assert.Equal(t, "v", again.Metadata["k"])
	assert.Equal(t, domain.PaymentStatusSucceeded, again.Status)
}

func TestMockGateway_ErrorInjection(t *testing.T) {
	g := NewMockGateway(false)
	g.CreateErr = errors.New("connection refused")

	_, err := g.CreateAuthorization(context.Background(), 100, "jpy", nil)
	require.Error(t, err)
	assert.Equal(t, 1, g.CreateCalls)
}
