package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"carshare/internal/auth"
	"carshare/internal/domain"
	"carshare/internal/repository"
)

// CredentialVerifier validates a bearer credential and returns its claims.
type CredentialVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Ensure TokenService implements CredentialVerifier.
var _ CredentialVerifier = (*auth.TokenService)(nil)

// IdentityService resolves callers from bearer credentials.
type IdentityService struct {
	verifier    CredentialVerifier
	profileRepo repository.ProfileRepository
	logger      *logrus.Logger
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(verifier CredentialVerifier, profileRepo repository.ProfileRepository, logger *logrus.Logger) *IdentityService {
	return &IdentityService{
		verifier:    verifier,
		profileRepo: profileRepo,
		logger:      logger,
	}
}

// ResolveCaller turns a bearer credential into a CallerIdentity.
// Role and verification status always come from the stored profile.
func (s *IdentityService) ResolveCaller(ctx context.Context, bearer string) (*domain.CallerIdentity, error) {
	token := strings.TrimSpace(bearer)
	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := s.verifier.Verify(token)
	if err != nil {
		s.logger.WithError(err).Debug("Bearer credential rejected")
		return nil, ErrUnauthenticated
	}

	profile, err := s.profileRepo.GetByUserID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	// An unknown stored role never grants capability.
	role := profile.Role
	if !role.Valid() {
		s.logger.WithFields(logrus.Fields{
			"user_id": profile.UserID,
			"role":    role,
		}).Warn("Profile has unknown role, treating as user")
		role = domain.RoleUser
	}

	identity := &domain.CallerIdentity{
		UserID:     profile.UserID,
		Role:       role,
		IsVerified: profile.IsVerified,
		Email:      profile.Email,
	}
	if identity.Email == nil && claims.Email != "" {
		email := claims.Email
		identity.Email = &email
	}

	return identity, nil
}

// IsAuthenticated reports whether identity is a resolved caller.
func IsAuthenticated(identity *domain.CallerIdentity) bool {
	return identity != nil && identity.UserID != ""
}

// HasRole reports whether identity's role ranks at or above required.
func HasRole(identity *domain.CallerIdentity, required domain.Role) bool {
	if !IsAuthenticated(identity) || !required.Valid() {
		return false
	}
	return identity.Role.Rank() >= required.Rank()
}
