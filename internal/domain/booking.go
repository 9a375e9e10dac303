package domain

import "time"

// BookingStatus represents the lifecycle status of a booking.
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Charges is the captured copy of what was paid for a booking.
type Charges struct {
	Amount    int64
	Currency  string
	PaidAt    time.Time
	Breakdown PriceBreakdown
}

// Booking is the durable record of a confirmed, paid rental.
type Booking struct {
	ID              string
	UserID          string
	VehicleID       string
	StartAt         time.Time
	EndAt           time.Time
	PickupPoint     string
	DurationHours   float64
	DistanceKm      float64
	PaymentIntentID string
	Status          BookingStatus
	Charges         Charges
	CreatedAt       time.Time
}
