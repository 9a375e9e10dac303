package repository

import (
	"context"

	"carshare/internal/domain"
)

// ProfileRepository defines the persistence operations for user profiles.
type ProfileRepository interface {
	// GetByUserID retrieves the profile of a user.
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)
}
