package domain

import "time"

// Role is a caller's marketplace role.
type Role string

const (
	RoleUser  Role = "user"
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
)

// Rank orders roles: user < owner < admin. Unknown roles rank 0.
func (r Role) Rank() int {
	switch r {
	case RoleUser:
		return 1
	case RoleOwner:
		return 2
	case RoleAdmin:
		return 3
	default:
		return 0
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r.Rank() > 0
}

// Profile is the stored marketplace profile of a user.
type Profile struct {
	UserID      string
	Role        Role
	IsVerified  bool
	DisplayName *string
	Email       *string
	CreatedAt   time.Time
}

// CallerIdentity is the resolved identity of an authenticated caller.
type CallerIdentity struct {
	UserID     string
	Role       Role
	IsVerified bool
	Email      *string
}
