package handler

import (
	"time"

	"carshare/internal/domain"
)

// RentalRequest is the rental description shared by quote, intent and confirm bodies.
// None of them carries an amount.
type RentalRequest struct {
	VehicleID  string  `json:"vehicle_id" binding:"required"`
	Hours      float64 `json:"hours"`
	DistanceKm float64 `json:"distance_km"`
}

// BreakdownResponse is the itemized price of a rental.
type BreakdownResponse struct {
	BaseAmount      int64 `json:"base_amount"`
	DistanceAmount  int64 `json:"distance_amount"`
	InsuranceAmount int64 `json:"insurance_amount"`
	DepositAmount   int64 `json:"deposit_amount"`
	TotalAmount     int64 `json:"total_amount"`
}

func toBreakdownResponse(b domain.PriceBreakdown) BreakdownResponse {
	return BreakdownResponse{
		BaseAmount:      b.BaseAmount,
		DistanceAmount:  b.DistanceAmount,
		InsuranceAmount: b.InsuranceAmount,
		DepositAmount:   b.DepositAmount,
		TotalAmount:     b.TotalAmount,
	}
}

// ChargesResponse is the captured payment of a booking.
type ChargesResponse struct {
	Amount    int64             `json:"amount"`
	Currency  string            `json:"currency"`
	PaidAt    time.Time         `json:"paid_at"`
	Breakdown BreakdownResponse `json:"breakdown"`
}

// BookingResponse is the HTTP response for booking data.
type BookingResponse struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	VehicleID       string          `json:"vehicle_id"`
	StartAt         time.Time       `json:"start_at"`
	EndAt           time.Time       `json:"end_at"`
	PickupPoint     string          `json:"pickup_point"`
	DurationHours   float64         `json:"hours"`
	DistanceKm      float64         `json:"distance_km"`
	PaymentIntentID string          `json:"payment_intent_id"`
	Status          string          `json:"status"`
	Charges         ChargesResponse `json:"charges"`
	CreatedAt       time.Time       `json:"created_at"`
}

func toBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:              b.ID,
		UserID:          b.UserID,
		VehicleID:       b.VehicleID,
		StartAt:         b.StartAt,
		EndAt:           b.EndAt,
		PickupPoint:     b.PickupPoint,
		DurationHours:   b.DurationHours,
		DistanceKm:      b.DistanceKm,
		PaymentIntentID: b.PaymentIntentID,
		Status:          string(b.Status),
		Charges: ChargesResponse{
			Amount:    b.Charges.Amount,
			Currency:  b.Charges.Currency,
			PaidAt:    b.Charges.PaidAt,
			Breakdown: toBreakdownResponse(b.Charges.Breakdown),
		},
		CreatedAt: b.CreatedAt,
	}
}

// RateCardBody is the request and response body for a vehicle rate card.
type RateCardBody struct {
	DailyRate     int64 `json:"daily_rate"`
	HourlyRate    int64 `json:"hourly_rate"`
	PerKmRate     int64 `json:"per_km_rate"`
	DepositAmount int64 `json:"deposit_amount"`
}
