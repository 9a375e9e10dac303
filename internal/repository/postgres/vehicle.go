package postgres

import (
	"context"
	"database/sql"
	"errors"

	"carshare/internal/domain"
	"carshare/internal/repository"
)

// VehicleRepository is a PostgreSQL implementation of repository.VehicleRepository.
type VehicleRepository struct {
	q Querier
}

// NewVehicleRepository creates a new PostgreSQL vehicle repository.
func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{q: db}
}

// GetByID retrieves a vehicle with its current rate card.
func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	query := `
		SELECT id, owner_id, name, pickup_point, available,
		       daily_rate, hourly_rate, per_km_rate, deposit_amount
		FROM vehicles WHERE id = $1
	`

	var v domain.Vehicle
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&v.ID,
		&v.OwnerID,
		&v.Name,
		&v.PickupPoint,
		&v.Available,
		&v.RateCard.DailyRate,
		&v.RateCard.HourlyRate,
		&v.RateCard.PerKmRate,
		&v.RateCard.DepositAmount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &v, nil
}

// GetRateCard retrieves only the current rate card of a vehicle.
func (r *VehicleRepository) GetRateCard(ctx context.Context, id string) (*domain.RateCard, error) {
	query := `SELECT daily_rate, hourly_rate, per_km_rate, deposit_amount FROM vehicles WHERE id = $1`

	var rc domain.RateCard
	err := r.q.QueryRowContext(ctx, query, id).Scan(&rc.DailyRate, &rc.HourlyRate, &rc.PerKmRate, &rc.DepositAmount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &rc, nil
}

// UpdateRateCard replaces the rate card of a vehicle.
func (r *VehicleRepository) UpdateRateCard(ctx context.Context, id string, rc domain.RateCard) error {
	query := `
		UPDATE vehicles
		SET daily_rate = $1, hourly_rate = $2, per_km_rate = $3, deposit_amount = $4, updated_at = NOW()
		WHERE id = $5
	`

	result, err := r.q.ExecContext(ctx, query, rc.DailyRate, rc.HourlyRate, rc.PerKmRate, rc.DepositAmount, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}
