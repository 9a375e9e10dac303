package redis

import (
	"context"
)

// QuoteStoreInterface defines the interface for rate card snapshot operations.
type QuoteStoreInterface interface {
	SaveSnapshot(ctx context.Context, paymentIntentID string, snapshot *QuoteSnapshot) error
	GetSnapshot(ctx context.Context, paymentIntentID string) (*QuoteSnapshot, error)
}

// Ensure concrete types implement interfaces.
var (
	_ QuoteStoreInterface = (*QuoteStore)(nil)
)
