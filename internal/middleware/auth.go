package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"carshare/internal/domain"
	"carshare/internal/service"
)

// CallerContextKey is the gin context key holding the resolved *domain.CallerIdentity.
const CallerContextKey = "caller"

// CallerResolver turns a bearer credential into a caller identity.
type CallerResolver interface {
	ResolveCaller(ctx context.Context, bearer string) (*domain.CallerIdentity, error)
}

// RequireAuth rejects requests without a valid bearer credential and a stored profile.
func RequireAuth(resolver CallerResolver, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortWithError(c, http.StatusUnauthorized, service.ErrUnauthenticated)
			return
		}

		caller, err := resolver.ResolveCaller(c.Request.Context(), token)
		if err != nil {
			entry := logger.WithFields(logrus.Fields{
				"path":      c.Request.URL.Path,
				"client_ip": c.ClientIP(),
			})
			switch {
			case errors.Is(err, service.ErrUnauthenticated):
				entry.Info("Rejected bearer credential")
				abortWithError(c, http.StatusUnauthorized, err)
			case errors.Is(err, service.ErrProfileNotFound):
				entry.Info("Caller has no profile")
				abortWithError(c, http.StatusForbidden, err)
			default:
				entry.WithError(err).Error("Failed to resolve caller")
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
					"error":     "identity lookup failed",
					"code":      "IDENTITY_UNAVAILABLE",
					"retryable": true,
				})
			}
			return
		}

		c.Set(CallerContextKey, caller)
		c.Next()
	}
}

// RequireRole rejects callers whose role ranks below role. It must run after RequireAuth.
func RequireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := CallerFromContext(c)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, service.ErrUnauthenticated)
			return
		}
		if !service.HasRole(caller, role) {
			abortWithError(c, http.StatusForbidden, service.ErrForbidden)
			return
		}
		c.Next()
	}
}

// CallerFromContext returns the caller stored by RequireAuth.
func CallerFromContext(c *gin.Context) (*domain.CallerIdentity, bool) {
	v, exists := c.Get(CallerContextKey)
	if !exists {
		return nil, false
	}
	caller, ok := v.(*domain.CallerIdentity)
	return caller, ok && caller != nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortWithError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":     err.Error(),
		"code":      service.KindOf(err),
		"retryable": service.IsRetryable(err),
	})
}
