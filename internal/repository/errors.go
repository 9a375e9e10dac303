package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an insert hits the booking payment reference uniqueness constraint.
	ErrDuplicate = errors.New("entity already exists")

	// ErrReference is returned when an insert references a vehicle or user that does not exist.
	ErrReference = errors.New("referenced entity does not exist")
)
