package repository

import (
	"context"

	"carshare/internal/domain"
)

// VehicleRepository defines the persistence operations for vehicles.
type VehicleRepository interface {
	// GetByID retrieves a vehicle with its current rate card.
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)

	// GetRateCard retrieves only the current rate card of a vehicle.
	GetRateCard(ctx context.Context, id string) (*domain.RateCard, error)

	// UpdateRateCard replaces the rate card of a vehicle.
	UpdateRateCard(ctx context.Context, id string, rateCard domain.RateCard) error
}
