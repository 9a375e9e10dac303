package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"carshare/internal/domain"
)

const quoteSnapshotPrefix = "quote:"

// DefaultQuoteSnapshotTTL bounds how long an unconfirmed payment keeps its priced rate card.
const DefaultQuoteSnapshotTTL = 24 * time.Hour

// QuoteSnapshot is the rate card a payment intent was priced with.
type QuoteSnapshot struct {
	VehicleID     string `json:"vehicle_id"`
	DailyRate     int64  `json:"daily_rate"`
	HourlyRate    int64  `json:"hourly_rate"`
	PerKmRate     int64  `json:"per_km_rate"`
	DepositAmount int64  `json:"deposit_amount"`
}

// RateCard returns the snapshot as a domain rate card.
func (q *QuoteSnapshot) RateCard() domain.RateCard {
	return domain.RateCard{
		DailyRate:     q.DailyRate,
		HourlyRate:    q.HourlyRate,
		PerKmRate:     q.PerKmRate,
		DepositAmount: q.DepositAmount,
	}
}

// NewQuoteSnapshot captures a vehicle's rate card.
func NewQuoteSnapshot(vehicleID string, rc domain.RateCard) *QuoteSnapshot {
	return &QuoteSnapshot{
		VehicleID:     vehicleID,
		DailyRate:     rc.DailyRate,
		HourlyRate:    rc.HourlyRate,
		PerKmRate:     rc.PerKmRate,
		DepositAmount: rc.DepositAmount,
	}
}

// QuoteStore keeps rate card snapshots keyed by payment intent id.
type QuoteStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewQuoteStore creates a new QuoteStore.
func NewQuoteStore(client *redis.Client, ttl time.Duration) *QuoteStore {
	if ttl <= 0 {
		ttl = DefaultQuoteSnapshotTTL
	}
	return &QuoteStore{client: client, ttl: ttl}
}

// SaveSnapshot stores the snapshot for a payment intent. An existing snapshot is kept.
func (s *QuoteStore) SaveSnapshot(ctx context.Context, paymentIntentID string, snapshot *QuoteSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return s.client.SetNX(ctx, quoteSnapshotPrefix+paymentIntentID, data, s.ttl).Err()
}

// GetSnapshot retrieves the snapshot for a payment intent.
// Returns nil, nil on a miss.
func (s *QuoteStore) GetSnapshot(ctx context.Context, paymentIntentID string) (*QuoteSnapshot, error) {
	data, err := s.client.Get(ctx, quoteSnapshotPrefix+paymentIntentID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var snapshot QuoteSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}
