package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"carshare/internal/domain"
	"carshare/internal/repository"
)

// VehicleService handles administrative vehicle mutations.
type VehicleService struct {
	vehicleRepo repository.VehicleRepository
	logger      *logrus.Logger
}

// NewVehicleService creates a new VehicleService.
func NewVehicleService(vehicleRepo repository.VehicleRepository, logger *logrus.Logger) *VehicleService {
	return &VehicleService{vehicleRepo: vehicleRepo, logger: logger}
}

// UpdateRateCard replaces a vehicle's rate card. Admin only.
// Payment intents already created keep pricing against their snapshot.
func (s *VehicleService) UpdateRateCard(ctx context.Context, caller *domain.CallerIdentity, vehicleID string, rc domain.RateCard) error {
	if !IsAuthenticated(caller) {
		return ErrUnauthenticated
	}
	if !HasRole(caller, domain.RoleAdmin) {
		return ErrForbidden
	}
	if vehicleID == "" {
		return fmt.Errorf("%w: vehicle id is required", ErrInvalidInput)
	}
	if err := ValidateRateCard(rc); err != nil {
		return err
	}

	if err := s.vehicleRepo.UpdateRateCard(ctx, vehicleID, rc); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrVehicleNotFound
		}
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"vehicle_id": vehicleID,
		"user_id":    caller.UserID,
	}).Info("Rate card updated")

	return nil
}
