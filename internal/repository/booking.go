package repository

import (
	"context"

	"carshare/internal/domain"
)

// BookingFilter narrows a booking listing.
type BookingFilter struct {
	UserID string
	Status domain.BookingStatus // Optional
	Limit  uint64
	Offset uint64
}

// BookingRepository defines the persistence operations for bookings.
type BookingRepository interface {
	// Create persists a new booking.
	// Returns ErrDuplicate if a booking already exists for the payment intent.
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by ID.
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// GetByPaymentIntentID retrieves the booking created for a payment intent.
	GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*domain.Booking, error)

	// ListByUser retrieves bookings matching the filter, newest first.
	ListByUser(ctx context.Context, filter BookingFilter) ([]*domain.Booking, error)
}
