package app

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"carshare/internal/domain"
	"carshare/internal/handler"
	"carshare/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	PricingHandler *handler.PricingHandler
	PaymentHandler *handler.PaymentHandler
	BookingHandler *handler.BookingHandler
	UserHandler    *handler.UserHandler
	VehicleHandler *handler.VehicleHandler
	CallerResolver middleware.CallerResolver
	RedisClient    *redis.Client // Optional, enables Idempotency-Key replay
	NewRelicApp    *newrelic.Application
	Logger         *logrus.Logger
	AllowedOrigins []string
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(cors.New(corsConfig(deps.AllowedOrigins)))

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.Idempotency(deps.RedisClient, middleware.DefaultIdempotencyTTL, deps.Logger))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	requireAuth := middleware.RequireAuth(deps.CallerResolver, deps.Logger)

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		v1.POST("/pricing/quote", deps.PricingHandler.Quote)
		v1.POST("/payments/intent", deps.PaymentHandler.CreateIntent)

		bookings := v1.Group("/bookings", requireAuth)
		{
			bookings.POST("/confirm", deps.BookingHandler.Confirm)
			bookings.GET("", deps.BookingHandler.List)
			bookings.GET("/:id", deps.BookingHandler.GetBooking)
		}

		v1.GET("/me", requireAuth, deps.UserHandler.Me)

		admin := v1.Group("/admin", requireAuth, middleware.RequireRole(domain.RoleAdmin))
		{
			admin.PUT("/vehicles/:id/rate-card", deps.VehicleHandler.UpdateRateCard)
		}
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{"Idempotent-Replayed"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
