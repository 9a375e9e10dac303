package service

import "errors"

// Kind classifies a service error so callers can decide retry policy mechanically.
type Kind string

const (
	KindInvalidInput              Kind = "INVALID_INPUT"
	KindUnauthenticated           Kind = "UNAUTHENTICATED"
	KindForbidden                 Kind = "FORBIDDEN"
	KindProfileNotFound           Kind = "PROFILE_NOT_FOUND"
	KindVehicleNotFound           Kind = "VEHICLE_NOT_FOUND"
	KindBookingNotFound           Kind = "BOOKING_NOT_FOUND"
	KindPaymentGatewayUnavailable Kind = "PAYMENT_GATEWAY_UNAVAILABLE"
	KindPaymentNotSucceeded       Kind = "PAYMENT_NOT_SUCCEEDED"
	KindPaymentMismatch           Kind = "PAYMENT_MISMATCH"
	KindPersistenceFailed         Kind = "PERSISTENCE_FAILED"
)

// Error is a typed service error. Wrap it with fmt.Errorf("%w: ...") to add detail.
type Error struct {
	Kind      Kind
	Message   string
	retryable bool
}

func (e *Error) Error() string {
	return e.Message
}

// Retryable reports whether the same call may succeed if repeated unchanged.
func (e *Error) Retryable() bool {
	return e.retryable
}

var (
	// ErrInvalidInput is returned for malformed or out-of-range request values.
	ErrInvalidInput = &Error{Kind: KindInvalidInput, Message: "invalid input"}

	// ErrUnauthenticated is returned when the bearer credential is missing or invalid.
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated, Message: "unauthenticated"}

	// ErrForbidden is returned when the caller lacks the required role or ownership.
	ErrForbidden = &Error{Kind: KindForbidden, Message: "forbidden"}

	// ErrProfileNotFound is returned when a valid credential has no stored profile.
	ErrProfileNotFound = &Error{Kind: KindProfileNotFound, Message: "profile not found"}

	// ErrVehicleNotFound is returned when the vehicle does not exist.
	ErrVehicleNotFound = &Error{Kind: KindVehicleNotFound, Message: "vehicle not found"}

	// ErrBookingNotFound is returned when the booking does not exist.
	ErrBookingNotFound = &Error{Kind: KindBookingNotFound, Message: "booking not found"}

	// ErrPaymentGatewayUnavailable is returned when the gateway cannot be reached,
	// times out, or is not configured.
	ErrPaymentGatewayUnavailable = &Error{Kind: KindPaymentGatewayUnavailable, Message: "payment gateway unavailable", retryable: true}

	// ErrPaymentNotSucceeded is returned when the gateway does not report the payment as succeeded.
	ErrPaymentNotSucceeded = &Error{Kind: KindPaymentNotSucceeded, Message: "payment not succeeded"}

	// ErrPaymentMismatch is returned when the payment does not match the booking being confirmed.
	ErrPaymentMismatch = &Error{Kind: KindPaymentMismatch, Message: "payment does not match booking request"}

	// ErrPersistenceFailed is returned when the booking could not be stored.
	// The payment already exists, so the caller should retry confirmation, not pay again.
	ErrPersistenceFailed = &Error{Kind: KindPersistenceFailed, Message: "failed to persist booking", retryable: true}
)

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return ""
}

// IsRetryable reports whether err carries a retryable service error.
func IsRetryable(err error) bool {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Retryable()
	}
	return false
}
