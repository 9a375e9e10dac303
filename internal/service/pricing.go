package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"carshare/internal/domain"
	"carshare/internal/repository"
)

// DefaultInsuranceFee is the flat insurance fee added to every rental.
const DefaultInsuranceFee int64 = 1000

// ComputePrice prices a rental from a rate card, a duration and a distance.
// It is pure: the preview path and booking confirmation must agree to the yen.
func ComputePrice(rc domain.RateCard, durationHours, distanceKm float64, insuranceFee int64) (domain.PriceBreakdown, error) {
	if err := validatePricingInput(rc, durationHours, distanceKm, insuranceFee); err != nil {
		return domain.PriceBreakdown{}, err
	}

	days := math.Floor(durationHours / 24)
	remainingHours := durationHours - days*24

	base := int64(days)*rc.DailyRate + roundHalfUp(remainingHours*float64(rc.HourlyRate))

	var distance int64
	if rc.PerKmRate > 0 {
		distance = roundHalfUp(distanceKm * float64(rc.PerKmRate))
	}

	return domain.PriceBreakdown{
		BaseAmount:      base,
		DistanceAmount:  distance,
		InsuranceAmount: insuranceFee,
		DepositAmount:   rc.DepositAmount,
		TotalAmount:     base + distance + insuranceFee + rc.DepositAmount,
	}, nil
}

func validatePricingInput(rc domain.RateCard, durationHours, distanceKm float64, insuranceFee int64) error {
	if math.IsNaN(durationHours) || math.IsInf(durationHours, 0) || durationHours < 0 {
		return fmt.Errorf("%w: duration hours must be a non-negative number", ErrInvalidInput)
	}
	if math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) || distanceKm < 0 {
		return fmt.Errorf("%w: distance km must be a non-negative number", ErrInvalidInput)
	}
	if err := ValidateRateCard(rc); err != nil {
		return err
	}
	if insuranceFee < 0 {
		return fmt.Errorf("%w: insurance fee must not be negative", ErrInvalidInput)
	}
	return nil
}

// ValidateRateCard rejects rate cards with negative amounts.
func ValidateRateCard(rc domain.RateCard) error {
	if rc.DailyRate < 0 || rc.HourlyRate < 0 || rc.PerKmRate < 0 || rc.DepositAmount < 0 {
		return fmt.Errorf("%w: rate card amounts must not be negative", ErrInvalidInput)
	}
	return nil
}

// roundHalfUp rounds a non-negative amount to the nearest yen, halves up.
func roundHalfUp(x float64) int64 {
	return int64(math.Floor(x + 0.5))
}

// PricingService serves price previews for a vehicle.
type PricingService struct {
	vehicleRepo  repository.VehicleRepository
	insuranceFee int64
}

// NewPricingService creates a new PricingService.
func NewPricingService(vehicleRepo repository.VehicleRepository, insuranceFee int64) *PricingService {
	return &PricingService{
		vehicleRepo:  vehicleRepo,
		insuranceFee: insuranceFee,
	}
}

// QuoteRequest contains the parameters for a price preview.
type QuoteRequest struct {
	VehicleID     string
	DurationHours float64
	DistanceKm    float64
}

// Quote prices a rental against the vehicle's current rate card.
func (s *PricingService) Quote(ctx context.Context, req QuoteRequest) (*domain.PriceBreakdown, error) {
	if req.VehicleID == "" {
		return nil, fmt.Errorf("%w: vehicle_id is required", ErrInvalidInput)
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, req.VehicleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}

	breakdown, err := ComputePrice(vehicle.RateCard, req.DurationHours, req.DistanceKm, s.insuranceFee)
	if err != nil {
		return nil, err
	}

	return &breakdown, nil
}
