package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"carshare/internal/domain"
	"carshare/internal/redis"
	"carshare/internal/repository"
)

// PaymentGateway is the external payment service provider.
type PaymentGateway interface {
	// CreateAuthorization places an authorization hold for amount.
	CreateAuthorization(ctx context.Context, amount int64, currency string, metadata map[string]string) (*domain.PaymentIntent, error)

	// GetAuthorization returns the current state of an authorization.
	GetAuthorization(ctx context.Context, id string) (*domain.PaymentIntent, error)
}

// DefaultMinChargeAmount is the gateway's smallest chargeable amount in yen.
const DefaultMinChargeAmount int64 = 50

// PaymentOptions configures PaymentService and BookingService.
type PaymentOptions struct {
	Currency       string
	MinAmount      int64
	InsuranceFee   int64
	GatewayTimeout time.Duration
	StoreTimeout   time.Duration
}

func (o PaymentOptions) withDefaults() PaymentOptions {
	if o.Currency == "" {
		o.Currency = domain.DefaultCurrency
	}
	if o.GatewayTimeout <= 0 {
		o.GatewayTimeout = 10 * time.Second
	}
	if o.StoreTimeout <= 0 {
		o.StoreTimeout = 5 * time.Second
	}
	return o
}

// ChargeAmount clamps a computed total up to the gateway minimum.
func ChargeAmount(total, minAmount int64) int64 {
	if total < minAmount {
		return minAmount
	}
	return total
}

// PaymentService creates payment authorizations for rentals.
type PaymentService struct {
	vehicleRepo repository.VehicleRepository
	gateway     PaymentGateway
	quoteStore  redis.QuoteStoreInterface
	notifier    *NotificationService
	logger      *logrus.Logger
	opts        PaymentOptions
}

// NewPaymentService creates a new PaymentService.
// quoteStore may be nil, in which case confirmation prices against the current rate card.
func NewPaymentService(
	vehicleRepo repository.VehicleRepository,
	gateway PaymentGateway,
	quoteStore redis.QuoteStoreInterface,
	notifier *NotificationService,
	logger *logrus.Logger,
	opts PaymentOptions,
) *PaymentService {
	return &PaymentService{
		vehicleRepo: vehicleRepo,
		gateway:     gateway,
		quoteStore:  quoteStore,
		notifier:    notifier,
		logger:      logger,
		opts:        opts.withDefaults(),
	}
}

// CreateIntentRequest contains the parameters for creating a payment intent.
// There is deliberately no amount: the price is always computed here.
type CreateIntentRequest struct {
	VehicleID     string
	DurationHours float64
	DistanceKm    float64
}

// CreateIntentResult contains the client-facing handle of a new payment intent.
type CreateIntentResult struct {
	IntentID     string
	ClientSecret string
	Amount       int64
	Currency     string
	Breakdown    domain.PriceBreakdown
}

// CreateIntent prices the rental and places an authorization with the gateway.
// Not idempotent: each call creates a new intent. Exactly-once booking is
// enforced at confirmation.
func (s *PaymentService) CreateIntent(ctx context.Context, req CreateIntentRequest) (*CreateIntentResult, error) {
	if req.VehicleID == "" {
		return nil, fmt.Errorf("%w: vehicle_id is required", ErrInvalidInput)
	}

	vehicle, err := s.loadVehicle(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}

	breakdown, err := ComputePrice(vehicle.RateCard, req.DurationHours, req.DistanceKm, s.opts.InsuranceFee)
	if err != nil {
		return nil, err
	}

	amount := ChargeAmount(breakdown.TotalAmount, s.opts.MinAmount)
	metadata := IntentMetadata(req.VehicleID, req.DurationHours, req.DistanceKm)

	gwCtx, cancel := context.WithTimeout(ctx, s.opts.GatewayTimeout)
	defer cancel()

	intent, err := s.gateway.CreateAuthorization(gwCtx, amount, s.opts.Currency, metadata)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"vehicle_id": req.VehicleID,
			"amount":     amount,
		}).Error("Failed to create payment authorization")
		return nil, fmt.Errorf("%w: %v", ErrPaymentGatewayUnavailable, err)
	}

	s.saveSnapshot(ctx, intent.ID, vehicle)

	s.logger.WithFields(logrus.Fields{
		"payment_intent_id": intent.ID,
		"vehicle_id":        req.VehicleID,
		"amount":            amount,
		"total":             breakdown.TotalAmount,
	}).Info("Payment intent created")

	result := &CreateIntentResult{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       amount,
		Currency:     s.opts.Currency,
		Breakdown:    breakdown,
	}

	if s.notifier != nil {
		_ = s.notifier.NotifyPaymentIntentCreated(ctx, req.VehicleID, result)
	}

	return result, nil
}

func (s *PaymentService) loadVehicle(ctx context.Context, vehicleID string) (*domain.Vehicle, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	vehicle, err := s.vehicleRepo.GetByID(storeCtx, vehicleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("failed to load vehicle: %w", err)
	}
	return vehicle, nil
}

// saveSnapshot records the rate card the intent was priced with.
// Failure only costs the snapshot; confirmation then reprices against the
// current rate card and rejects a changed total.
func (s *PaymentService) saveSnapshot(ctx context.Context, intentID string, vehicle *domain.Vehicle) {
	if s.quoteStore == nil {
		return
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	if err := s.quoteStore.SaveSnapshot(storeCtx, intentID, redis.NewQuoteSnapshot(vehicle.ID, vehicle.RateCard)); err != nil {
		s.logger.WithError(err).WithField("payment_intent_id", intentID).Warn("Failed to save quote snapshot")
	}
}

// IntentMetadata builds the reconciliation metadata attached to an intent.
func IntentMetadata(vehicleID string, durationHours, distanceKm float64) map[string]string {
	return map[string]string{
		domain.MetadataVehicleID:     vehicleID,
		domain.MetadataDurationHours: strconv.FormatFloat(durationHours, 'f', -1, 64),
		domain.MetadataDistanceKm:    strconv.FormatFloat(distanceKm, 'f', -1, 64),
	}
}

// metadataMatches reports whether intent metadata describes the given rental.
func metadataMatches(metadata map[string]string, vehicleID string, durationHours, distanceKm float64) bool {
	if metadata[domain.MetadataVehicleID] != vehicleID {
		return false
	}

	hours, err := strconv.ParseFloat(metadata[domain.MetadataDurationHours], 64)
	if err != nil || hours != durationHours {
		return false
	}

	km, err := strconv.ParseFloat(metadata[domain.MetadataDistanceKm], 64)
	if err != nil || km != distanceKm {
		return false
	}

	return true
}
