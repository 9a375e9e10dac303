package postgres

import (
	"context"
	"database/sql"

	"carshare/internal/domain"
	"carshare/internal/repository"
)

// ProfileRepository implements repository.ProfileRepository using PostgreSQL.
type ProfileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByUserID retrieves the profile of a user.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `SELECT user_id, role, is_verified, display_name, email, created_at FROM profiles WHERE user_id = $1`
	row := r.db.QueryRowContext(ctx, query, userID)

	var (
		p           domain.Profile
		displayName sql.NullString
		email       sql.NullString
	)
	err := row.Scan(&p.UserID, &p.Role, &p.IsVerified, &displayName, &email, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if displayName.Valid {
		p.DisplayName = &displayName.String
	}
	if email.Valid {
		p.Email = &email.String
	}
	return &p, nil
}
