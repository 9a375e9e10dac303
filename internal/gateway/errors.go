package gateway

import "errors"

var (
	// ErrIntentNotFound is returned when the gateway has no intent with the given id.
	ErrIntentNotFound = errors.New("payment intent not found")

	// ErrNotConfigured is returned when the gateway has no credentials.
	ErrNotConfigured = errors.New("payment gateway not configured")
)
