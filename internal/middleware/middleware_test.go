package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carshare/internal/domain"
	"carshare/internal/service"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type stubResolver map[string]*domain.CallerIdentity

func (s stubResolver) ResolveCaller(ctx context.Context, bearer string) (*domain.CallerIdentity, error) {
	switch bearer {
	case "orphan":
		return nil, service.ErrProfileNotFound
	case "broken":
		return nil, io.ErrUnexpectedEOF
	}
	caller, ok := s[bearer]
	if !ok {
		return nil, service.ErrUnauthenticated
	}
	return caller, nil
}

func setupAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	resolver := stubResolver{
		"user-token":  {UserID: "user-1", Role: domain.RoleUser},
		"admin-token": {UserID: "admin-1", Role: domain.RoleAdmin},
	}

	router := gin.New()
	authed := router.Group("/", RequireAuth(resolver, testLogger()))
	authed.GET("/me", func(c *gin.Context) {
		caller, ok := CallerFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": caller.UserID})
	})
	authed.GET("/admin", RequireRole(domain.RoleAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func doRequest(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequireAuth_Success(t *testing.T) {
	router := setupAuthRouter()

	w := doRequest(router, http.MethodGet, "/me", "Bearer user-token")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
}

func TestRequireAuth_Rejections(t *testing.T) {
	router := setupAuthRouter()

	tests := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"missing header", "", http.StatusUnauthorized, "UNAUTHENTICATED"},
		{"wrong scheme", "Basic user-token", http.StatusUnauthorized, "UNAUTHENTICATED"},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, "UNAUTHENTICATED"},
		{"unknown token", "Bearer forged", http.StatusUnauthorized, "UNAUTHENTICATED"},
		{"no profile", "Bearer orphan", http.StatusForbidden, "PROFILE_NOT_FOUND"},
		{"store failure", "Bearer broken", http.StatusServiceUnavailable, "IDENTITY_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodGet, "/me", tt.header)

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	router := setupAuthRouter()

	w := doRequest(router, http.MethodGet, "/admin", "Bearer user-token")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")
	assert.Contains(t, w.Body.String(), `"retryable":false`)

	w = doRequest(router, http.MethodGet, "/admin", "Bearer admin-token")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole_WithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/admin", RequireRole(domain.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := doRequest(router, http.MethodGet, "/admin", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func setupIdempotencyRouter(t *testing.T, status *int32) (*gin.Engine, *int32) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	var calls int32
	router := gin.New()
	router.Use(Idempotency(client, 0, testLogger()))
	router.POST("/bookings/confirm", func(c *gin.Context) {
		n := atomic.AddInt32(&calls, 1)
		c.JSON(int(atomic.LoadInt32(status)), gin.H{"call": n})
	})
	return router, &calls
}

func postWithKey(router *gin.Engine, key, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/bookings/confirm", strings.NewReader("{}"))
	req.Header.Set("Idempotency-Key", key)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysSuccess(t *testing.T) {
	status := int32(http.StatusCreated)
	router, calls := setupIdempotencyRouter(t, &status)

	first := postWithKey(router, "key-1", "user-token")
	second := postWithKey(router, "key-1", "user-token")

	require.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestIdempotency_DoesNotCacheFailures(t *testing.T) {
	status := int32(http.StatusPaymentRequired)
	router, calls := setupIdempotencyRouter(t, &status)

	first := postWithKey(router, "key-1", "user-token")
	require.Equal(t, http.StatusPaymentRequired, first.Code)

	atomic.StoreInt32(&status, http.StatusCreated)
	second := postWithKey(router, "key-1", "user-token")

	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestIdempotency_ScopedToCredential(t *testing.T) {
	status := int32(http.StatusCreated)
	router, calls := setupIdempotencyRouter(t, &status)

	postWithKey(router, "key-1", "user-token")
	other := postWithKey(router, "key-1", "other-token")

	assert.Empty(t, other.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestIdempotency_NilClientPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var calls int32
	router := gin.New()
	router.Use(Idempotency(nil, 0, testLogger()))
	router.POST("/bookings/confirm", func(c *gin.Context) {
		atomic.AddInt32(&calls, 1)
		c.JSON(http.StatusCreated, gin.H{})
	})

	postWithKey(router, "key-1", "")
	postWithKey(router, "key-1", "")

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestLogger(testLogger()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := doRequest(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
