package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carshare/internal/domain"
)

func newTestStore(t *testing.T, ttl time.Duration) (*QuoteStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewQuoteStore(client, ttl), mr
}

func TestQuoteStore_SaveAndGet(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()
	rc := domain.RateCard{DailyRate: 6000, HourlyRate: 800, PerKmRate: 25, DepositAmount: 30000}

	require.NoError(t, store.SaveSnapshot(ctx, "pi_1", NewQuoteSnapshot("vehicle-1", rc)))

	got, err := store.GetSnapshot(ctx, "pi_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "vehicle-1", got.VehicleID)
	assert.Equal(t, rc, got.RateCard())
}

func TestQuoteStore_Miss(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)

	got, err := store.GetSnapshot(context.Background(), "pi_missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestQuoteStore_FirstSnapshotWins(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.SaveSnapshot(ctx, "pi_1", NewQuoteSnapshot("vehicle-1", domain.RateCard{HourlyRate: 800})))
	require.NoError(t, store.SaveSnapshot(ctx, "pi_1", NewQuoteSnapshot("vehicle-1", domain.RateCard{HourlyRate: 1200})))

	got, err := store.GetSnapshot(ctx, "pi_1")
	require.NoError(t, err)
	assert.Equal(t, int64(800), got.HourlyRate)
}

func TestQuoteStore_Expires(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.SaveSnapshot(ctx, "pi_1", NewQuoteSnapshot("vehicle-1", domain.RateCard{})))
	mr.FastForward(2 * time.Minute)

	got, err := store.GetSnapshot(ctx, "pi_1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestQuoteStore_DefaultTTL(t *testing.T) {
	store, mr := newTestStore(t, 0)

	require.NoError(t, store.SaveSnapshot(context.Background(), "pi_1", NewQuoteSnapshot("vehicle-1", domain.RateCard{})))
	assert.Equal(t, DefaultQuoteSnapshotTTL, mr.TTL(quoteSnapshotPrefix+"pi_1"))
}
