package tests

import (
	"context"
	"testing"

	"carshare/internal/domain"
	"carshare/internal/gateway"
	"carshare/internal/service"
)

const testVehicleID = "vehicle-1"

var (
	scenarioRateCard = domain.RateCard{DailyRate: 6000, HourlyRate: 800, PerKmRate: 0, DepositAmount: 30000}

	renter = &domain.CallerIdentity{UserID: "user-1", Role: domain.RoleUser}
	other  = &domain.CallerIdentity{UserID: "user-2", Role: domain.RoleUser}
	admin  = &domain.CallerIdentity{UserID: "admin-1", Role: domain.RoleAdmin}
)

type bookingFixture struct {
	bookings  *MockBookingRepository
	vehicles  *MockVehicleRepository
	quotes    *MockQuoteStore
	gateway   *gateway.MockGateway
	publisher *MockPublisher
	payments  *service.PaymentService
	booking   *service.BookingService
}

func newBookingFixture() *bookingFixture {
	f := &bookingFixture{
		bookings:  NewMockBookingRepository(),
		vehicles:  NewMockVehicleRepository(),
		quotes:    NewMockQuoteStore(),
		gateway:   gateway.NewMockGateway(false),
		publisher: &MockPublisher{},
	}
	f.vehicles.AddVehicle(&domain.Vehicle{
		ID:          testVehicleID,
		OwnerID:     "owner-1",
		Name:        "Corolla",
		PickupPoint: "Shibuya",
		RateCard:    scenarioRateCard,
		Available:   true,
	})

	logger := quietLogger()
	notifier := service.NewNotificationService(f.publisher, logger)
	opts := service.PaymentOptions{
		MinAmount:    service.DefaultMinChargeAmount,
		InsuranceFee: service.DefaultInsuranceFee,
	}

	f.payments = service.NewPaymentService(f.vehicles, f.gateway, f.quotes, notifier, logger, opts)
	f.booking = service.NewBookingService(f.bookings, f.vehicles, f.gateway, f.quotes, notifier, logger, opts)
	return f
}

// createIntent creates a payment intent through the service and returns its id.
func (f *bookingFixture) createIntent(t *testing.T, hours, km float64) string {
	t.Helper()
	result, err := f.payments.CreateIntent(context.Background(), service.CreateIntentRequest{
		VehicleID:     testVehicleID,
		DurationHours: hours,
		DistanceKm:    km,
	})
	if err != nil {
		t.Fatalf("failed to create intent: %v", err)
	}
	return result.IntentID
}

// createPaidIntent creates an intent and marks it as paid at the gateway.
func (f *bookingFixture) createPaidIntent(t *testing.T, hours, km float64) string {
	t.Helper()
	id := f.createIntent(t, hours, km)
	if err := f.gateway.MarkSucceeded(id); err != nil {
		t.Fatalf("failed to mark intent succeeded: %v", err)
	}
	return id
}

func confirmRequest(intentID string, hours, km float64) service.ConfirmBookingRequest {
	return service.ConfirmBookingRequest{
		PaymentIntentID: intentID,
		VehicleID:       testVehicleID,
		DurationHours:   hours,
		DistanceKm:      km,
	}
}
