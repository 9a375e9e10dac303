package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"carshare/internal/domain"
	"carshare/internal/gateway"
	"carshare/internal/redis"
	"carshare/internal/repository"
)

// ConfirmState is a step of a single confirmation attempt.
type ConfirmState string

const (
	ConfirmRequested           ConfirmState = "REQUESTED"
	ConfirmPaymentVerified     ConfirmState = "PAYMENT_VERIFIED"
	ConfirmPersisted           ConfirmState = "PERSISTED"
	ConfirmDone                ConfirmState = "DONE"
	ConfirmRejected            ConfirmState = "REJECTED"
	ConfirmPaymentNotSucceeded ConfirmState = "PAYMENT_NOT_SUCCEEDED"
	ConfirmPersistenceFailed   ConfirmState = "PERSISTENCE_FAILED"
)

const (
	defaultListLimit uint64 = 20
	maxListLimit     uint64 = 100
)

// BookingService confirms paid rentals and serves booking reads.
type BookingService struct {
	bookingRepo repository.BookingRepository
	vehicleRepo repository.VehicleRepository
	gateway     PaymentGateway
	quoteStore  redis.QuoteStoreInterface
	notifier    *NotificationService
	logger      *logrus.Logger
	opts        PaymentOptions
	now         func() time.Time
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookingRepo repository.BookingRepository,
	vehicleRepo repository.VehicleRepository,
	gateway PaymentGateway,
	quoteStore redis.QuoteStoreInterface,
	notifier *NotificationService,
	logger *logrus.Logger,
	opts PaymentOptions,
) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		vehicleRepo: vehicleRepo,
		gateway:     gateway,
		quoteStore:  quoteStore,
		notifier:    notifier,
		logger:      logger,
		opts:        opts.withDefaults(),
		now:         time.Now,
	}
}

// ConfirmBookingRequest contains the parameters for confirming a booking.
// The amount is never taken from the caller.
type ConfirmBookingRequest struct {
	PaymentIntentID string
	VehicleID       string
	DurationHours   float64
	DistanceKm      float64
	StartAt         time.Time // Optional, defaults to now
	PickupPoint     string    // Optional
}

// ConfirmBooking records the booking paid for by a payment intent.
// It is safe to call repeatedly: every call for the same intent returns the same booking.
func (s *BookingService) ConfirmBooking(ctx context.Context, caller *domain.CallerIdentity, req ConfirmBookingRequest) (*domain.Booking, error) {
	log := s.logger.WithFields(logrus.Fields{
		"payment_intent_id": req.PaymentIntentID,
		"vehicle_id":        req.VehicleID,
	})
	transition(log, ConfirmRequested)

	if !IsAuthenticated(caller) {
		transition(log, ConfirmRejected)
		return nil, ErrUnauthenticated
	}
	log = log.WithField("user_id", caller.UserID)

	if err := validateConfirmRequest(req); err != nil {
		transition(log, ConfirmRejected)
		return nil, err
	}

	// A retry after a lost response finds the booking already stored.
	existing, err := s.lookupByPaymentIntent(ctx, req.PaymentIntentID)
	if err != nil {
		transition(log.WithError(err), ConfirmPersistenceFailed)
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	if existing != nil {
		return s.returnExisting(log, caller, existing)
	}

	intent, err := s.verifyPayment(ctx, req.PaymentIntentID)
	if err != nil {
		if errors.Is(err, ErrPaymentNotSucceeded) {
			transition(log, ConfirmPaymentNotSucceeded)
		} else {
			transition(log.WithError(err), ConfirmRejected)
		}
		return nil, err
	}
	transition(log, ConfirmPaymentVerified)

	if !metadataMatches(intent.Metadata, req.VehicleID, req.DurationHours, req.DistanceKm) {
		transition(log, ConfirmRejected)
		return nil, fmt.Errorf("%w: rental details differ from the authorized payment", ErrPaymentMismatch)
	}

	rateCard, err := s.rateCardFor(ctx, req.PaymentIntentID, req.VehicleID)
	if err != nil {
		transition(log.WithError(err), ConfirmRejected)
		return nil, err
	}

	breakdown, err := ComputePrice(rateCard, req.DurationHours, req.DistanceKm, s.opts.InsuranceFee)
	if err != nil {
		transition(log, ConfirmRejected)
		return nil, err
	}

	amount := ChargeAmount(breakdown.TotalAmount, s.opts.MinAmount)
	if intent.Amount != amount || !strings.EqualFold(intent.Currency, s.opts.Currency) {
		log.WithFields(logrus.Fields{
			"expected_amount": amount,
			"intent_amount":   intent.Amount,
			"intent_currency": intent.Currency,
		}).Warn("Authorized amount does not match recomputed price")
		transition(log, ConfirmRejected)
		return nil, fmt.Errorf("%w: authorized amount differs from the rental price", ErrPaymentMismatch)
	}

	booking := s.newBooking(caller.UserID, req, amount, breakdown)

	stored, err := s.persist(ctx, booking)
	if err != nil {
		transition(log.WithError(err), ConfirmPersistenceFailed)
		return nil, err
	}
	if stored.ID != booking.ID {
		// Lost the race to a concurrent confirmation of the same payment.
		return s.returnExisting(log, caller, stored)
	}
	log = log.WithField("booking_id", stored.ID)
	transition(log, ConfirmPersisted)

	if s.notifier != nil {
		_ = s.notifier.NotifyBookingConfirmed(ctx, stored)
	}

	transition(log, ConfirmDone)
	return stored, nil
}

func transition(log *logrus.Entry, state ConfirmState) {
	entry := log.WithField("state", state)
	switch state {
	case ConfirmRejected, ConfirmPaymentNotSucceeded, ConfirmPersistenceFailed:
		entry.Warn("Booking confirmation stopped")
	case ConfirmDone:
		entry.Info("Booking confirmed")
	default:
		entry.Debug("Booking confirmation step")
	}
}

func validateConfirmRequest(req ConfirmBookingRequest) error {
	if strings.TrimSpace(req.PaymentIntentID) == "" {
		return fmt.Errorf("%w: payment_intent_id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.VehicleID) == "" {
		return fmt.Errorf("%w: vehicle_id is required", ErrInvalidInput)
	}
	if math.IsNaN(req.DurationHours) || math.IsInf(req.DurationHours, 0) || req.DurationHours < 0 {
		return fmt.Errorf("%w: hours must not be negative", ErrInvalidInput)
	}
	if math.IsNaN(req.DistanceKm) || math.IsInf(req.DistanceKm, 0) || req.DistanceKm < 0 {
		return fmt.Errorf("%w: distance_km must not be negative", ErrInvalidInput)
	}
	return nil
}

func (s *BookingService) returnExisting(log *logrus.Entry, caller *domain.CallerIdentity, existing *domain.Booking) (*domain.Booking, error) {
	log = log.WithField("booking_id", existing.ID)
	if existing.UserID != caller.UserID {
		log.WithField("owner_id", existing.UserID).Warn("Payment intent already booked by another user")
		transition(log, ConfirmRejected)
		return nil, ErrForbidden
	}
	log.Info("Booking already confirmed for payment intent")
	transition(log, ConfirmDone)
	return existing, nil
}

// lookupByPaymentIntent returns nil, nil when no booking exists yet.
func (s *BookingService) lookupByPaymentIntent(ctx context.Context, paymentIntentID string) (*domain.Booking, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	booking, err := s.bookingRepo.GetByPaymentIntentID(storeCtx, paymentIntentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) verifyPayment(ctx context.Context, paymentIntentID string) (*domain.PaymentIntent, error) {
	gwCtx, cancel := context.WithTimeout(ctx, s.opts.GatewayTimeout)
	defer cancel()

	intent, err := s.gateway.GetAuthorization(gwCtx, paymentIntentID)
	if err != nil {
		if errors.Is(err, gateway.ErrIntentNotFound) {
			return nil, fmt.Errorf("%w: unknown payment intent", ErrPaymentNotSucceeded)
		}
		return nil, fmt.Errorf("%w: %v", ErrPaymentGatewayUnavailable, err)
	}

	if intent.Status != domain.PaymentStatusSucceeded {
		return nil, fmt.Errorf("%w: status is %s", ErrPaymentNotSucceeded, intent.Status)
	}
	return intent, nil
}

// rateCardFor returns the rate card the intent was priced with, falling back
// to the vehicle's current rate card when no snapshot is available.
func (s *BookingService) rateCardFor(ctx context.Context, paymentIntentID, vehicleID string) (domain.RateCard, error) {
	if s.quoteStore != nil {
		snapCtx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
		snapshot, err := s.quoteStore.GetSnapshot(snapCtx, paymentIntentID)
		cancel()

		switch {
		case err != nil:
			s.logger.WithError(err).WithField("payment_intent_id", paymentIntentID).Warn("Failed to read quote snapshot")
		case snapshot != nil:
			if snapshot.VehicleID != vehicleID {
				return domain.RateCard{}, fmt.Errorf("%w: payment was priced for another vehicle", ErrPaymentMismatch)
			}
			return snapshot.RateCard(), nil
		}
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	rc, err := s.vehicleRepo.GetRateCard(storeCtx, vehicleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.RateCard{}, ErrVehicleNotFound
		}
		return domain.RateCard{}, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	return *rc, nil
}

func (s *BookingService) newBooking(userID string, req ConfirmBookingRequest, amount int64, breakdown domain.PriceBreakdown) *domain.Booking {
	now := s.now().UTC()

	startAt := req.StartAt
	if startAt.IsZero() {
		startAt = now
	}
	duration := time.Duration(req.DurationHours * float64(time.Hour))

	return &domain.Booking{
		ID:              uuid.New().String(),
		UserID:          userID,
		VehicleID:       req.VehicleID,
		StartAt:         startAt,
		EndAt:           startAt.Add(duration),
		PickupPoint:     req.PickupPoint,
		DurationHours:   req.DurationHours,
		DistanceKm:      req.DistanceKm,
		PaymentIntentID: req.PaymentIntentID,
		Status:          domain.BookingStatusConfirmed,
		Charges: domain.Charges{
			Amount:    amount,
			Currency:  s.opts.Currency,
			PaidAt:    now,
			Breakdown: breakdown,
		},
		CreatedAt: now,
	}
}

// persist inserts booking. When the payment reference is already taken it
// returns the stored booking instead, which then has a different ID.
func (s *BookingService) persist(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	err := s.bookingRepo.Create(storeCtx, booking)
	if err == nil {
		return booking, nil
	}

	if !errors.Is(err, repository.ErrDuplicate) {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	existing, err := s.bookingRepo.GetByPaymentIntentID(storeCtx, booking.PaymentIntentID)
	if err != nil {
		return nil, fmt.Errorf("%w: read after duplicate: %v", ErrPersistenceFailed, err)
	}
	return existing, nil
}

// GetBooking returns a booking visible to the caller: their own, or any for an admin.
func (s *BookingService) GetBooking(ctx context.Context, caller *domain.CallerIdentity, id string) (*domain.Booking, error) {
	if !IsAuthenticated(caller) {
		return nil, ErrUnauthenticated
	}
	if id == "" {
		return nil, fmt.Errorf("%w: booking id is required", ErrInvalidInput)
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	booking, err := s.bookingRepo.GetByID(storeCtx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	if booking.UserID != caller.UserID && !HasRole(caller, domain.RoleAdmin) {
		return nil, ErrForbidden
	}
	return booking, nil
}

// ListBookingsRequest contains the parameters for listing bookings.
type ListBookingsRequest struct {
	UserID string // Optional, admin only when it names another user
	Status domain.BookingStatus
	Limit  uint64
	Offset uint64
}

// ListBookings returns the caller's bookings, newest first.
func (s *BookingService) ListBookings(ctx context.Context, caller *domain.CallerIdentity, req ListBookingsRequest) ([]*domain.Booking, error) {
	if !IsAuthenticated(caller) {
		return nil, ErrUnauthenticated
	}

	userID := req.UserID
	if userID == "" {
		userID = caller.UserID
	}
	if userID != caller.UserID && !HasRole(caller, domain.RoleAdmin) {
		return nil, ErrForbidden
	}

	switch req.Status {
	case "", domain.BookingStatusConfirmed, domain.BookingStatusCompleted, domain.BookingStatusCancelled:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}

	limit := req.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	return s.bookingRepo.ListByUser(storeCtx, repository.BookingFilter{
		UserID: userID,
		Status: req.Status,
		Limit:  limit,
		Offset: req.Offset,
	})
}
