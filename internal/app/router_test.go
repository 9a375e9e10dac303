package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carshare/internal/config"
	"carshare/internal/domain"
	"carshare/internal/gateway"
	"carshare/internal/handler"
	"carshare/internal/service"
	"carshare/internal/tests"
)

func newTestRouter(t *testing.T, origins []string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	vehicles := tests.NewMockVehicleRepository()
	vehicles.AddVehicle(&domain.Vehicle{ID: "vehicle-1", RateCard: domain.RateCard{HourlyRate: 800}})
	bookings := tests.NewMockBookingRepository()
	profiles := tests.NewMockProfileRepository()
	profiles.AddProfile(&domain.Profile{UserID: "user-1", Role: domain.RoleUser})
	gw := gateway.NewMockGateway(true)
	notifier := service.NewNotificationService(nil, logger)
	opts := service.PaymentOptions{MinAmount: service.DefaultMinChargeAmount}

	return NewRouter(RouterDeps{
		PricingHandler: handler.NewPricingHandler(service.NewPricingService(vehicles, 0)),
		PaymentHandler: handler.NewPaymentHandler(service.NewPaymentService(vehicles, gw, nil, notifier, logger, opts)),
		BookingHandler: handler.NewBookingHandler(service.NewBookingService(bookings, vehicles, gw, nil, notifier, logger, opts)),
		UserHandler:    handler.NewUserHandler(),
		VehicleHandler: handler.NewVehicleHandler(service.NewVehicleService(vehicles, logger)),
		CallerResolver: service.NewIdentityService(tests.NewMockVerifier(map[string]string{"token-1": "user-1"}), profiles, logger),
		Logger:         logger,
		AllowedOrigins: origins,
	})
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRouter_AuthGroups(t *testing.T) {
	router := newTestRouter(t, nil)

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"me without credential", http.MethodGet, "/v1/me", "", http.StatusUnauthorized},
		{"me with credential", http.MethodGet, "/v1/me", "token-1", http.StatusOK},
		{"bookings without credential", http.MethodGet, "/v1/bookings", "", http.StatusUnauthorized},
		{"admin route as user", http.MethodPut, "/v1/admin/vehicles/vehicle-1/rate-card", "token-1", http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(t, []string{"https://app.example.com"})

	req := httptest.NewRequest(http.MethodOptions, "/v1/bookings/confirm", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSConfig(t *testing.T) {
	assert.True(t, corsConfig(nil).AllowAllOrigins)
	assert.True(t, corsConfig([]string{"*"}).AllowAllOrigins)

	cfg := corsConfig([]string{"https://a.example.com", "https://b.example.com"})
	assert.False(t, cfg.AllowAllOrigins)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowOrigins)
	assert.Contains(t, cfg.AllowHeaders, "Idempotency-Key")
}

func TestCollectionFor(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, "quote", collectionFor(redis.NewStringCmd(ctx, "get", "quote:pi_1")))
	assert.Equal(t, "idempotency", collectionFor(redis.NewStringCmd(ctx, "get", "idempotency:abc")))
	assert.Equal(t, "redis", collectionFor(redis.NewStringCmd(ctx, "get", "plain")))
	assert.Equal(t, "redis", collectionFor(redis.NewStatusCmd(ctx, "ping")))
}

func TestNewLogger(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, NewLogger("debug").GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewLogger("verbose").GetLevel())
}

func TestNewPaymentGateway(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	_, isMock := NewPaymentGateway(config.PaymentConfig{Mode: "mock"}, logger).(*gateway.MockGateway)
	assert.True(t, isMock)

	_, isHTTP := NewPaymentGateway(config.PaymentConfig{Mode: "http", BaseURL: "http://localhost"}, logger).(*gateway.HTTPGateway)
	assert.True(t, isHTTP)
}

func TestNewEventProducer_Disabled(t *testing.T) {
	producer, err := NewEventProducer(config.KafkaConfig{}, logrus.New())
	require.NoError(t, err)
	assert.Nil(t, producer)
}
