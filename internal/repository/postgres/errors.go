package postgres

import (
	"errors"

	"github.com/lib/pq"

	"carshare/internal/repository"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"

	bookingPaymentIntentConstraint = "bookings_payment_intent_id_key"
)

// translateBookingInsertError maps constraint violations on the bookings table
// to repository errors. Other errors pass through unchanged.
func translateBookingInsertError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case uniqueViolation:
		if pqErr.Constraint == bookingPaymentIntentConstraint {
			return repository.ErrDuplicate
		}
	case foreignKeyViolation:
		return repository.ErrReference
	}

	return err
}
