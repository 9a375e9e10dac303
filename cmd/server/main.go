package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"carshare/internal/app"
	"carshare/internal/auth"
	"carshare/internal/config"
	"carshare/internal/handler"
	"carshare/internal/kafka"
	"carshare/internal/migrator"
	internalRedis "carshare/internal/redis"
	"carshare/internal/repository/postgres"
	"carshare/internal/service"
	"carshare/migrations"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	logger := app.NewLogger(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			logger.WithError(err).Warn("failed to initialize New Relic")
		} else {
			logger.WithField("app", cfg.NewRelic.AppName).Info("New Relic enabled (with DB instrumentation)")
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	if cfg.Database.AutoMigrate {
		version, err := migrator.NewMigrator(db, migrations.FS, logger).Up(ctx)
		if err != nil {
			logger.WithError(err).Fatal("failed to apply migrations")
		}
		logger.WithField("version", version).Info("Schema up to date")
	}

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to redis")
	}
	defer redisClient.Close()
	logger.Info("Connected to Redis")

	producer, err := app.NewEventProducer(cfg.Kafka, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to kafka")
	}
	if producer != nil {
		defer producer.Close()
		logger.WithField("topic", cfg.Kafka.Topic).Info("Publishing booking events to Kafka")
	}

	server := wireServer(db, redisClient, producer, nrApp, cfg, logger)

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}

	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	logger.Info("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(
	db *sql.DB,
	redisClient *redis.Client,
	producer *kafka.Producer,
	nrApp *newrelic.Application,
	cfg *config.Config,
	logger *logrus.Logger,
) *http.Server {
	quoteStore := internalRedis.NewQuoteStore(redisClient, cfg.Redis.SnapshotTTL)

	bookingRepo := postgres.NewBookingRepository(db)
	vehicleRepo := postgres.NewVehicleRepository(db)
	profileRepo := postgres.NewProfileRepository(db)

	var publisher service.EventPublisher
	if producer != nil {
		publisher = producer
	}

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	paymentGateway := app.NewPaymentGateway(cfg.Payment, logger)
	opts := service.PaymentOptions{
		Currency:       cfg.Payment.Currency,
		MinAmount:      cfg.Payment.MinAmount,
		InsuranceFee:   cfg.Pricing.InsuranceFee,
		GatewayTimeout: cfg.Payment.Timeout,
		StoreTimeout:   cfg.Database.QueryTimeout,
	}

	notificationService := service.NewNotificationService(publisher, logger)
	identityService := service.NewIdentityService(tokens, profileRepo, logger)
	pricingService := service.NewPricingService(vehicleRepo, cfg.Pricing.InsuranceFee)
	paymentService := service.NewPaymentService(vehicleRepo, paymentGateway, quoteStore, notificationService, logger, opts)
	bookingService := service.NewBookingService(bookingRepo, vehicleRepo, paymentGateway, quoteStore, notificationService, logger, opts)
	vehicleService := service.NewVehicleService(vehicleRepo, logger)

	router := app.NewRouter(app.RouterDeps{
		PricingHandler: handler.NewPricingHandler(pricingService),
		PaymentHandler: handler.NewPaymentHandler(paymentService),
		BookingHandler: handler.NewBookingHandler(bookingService),
		UserHandler:    handler.NewUserHandler(),
		VehicleHandler: handler.NewVehicleHandler(vehicleService),
		CallerResolver: identityService,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
		Logger:         logger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
