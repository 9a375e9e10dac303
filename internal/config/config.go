package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `envPrefix:"SERVER_"`
	Database DatabaseConfig `envPrefix:"DB_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	NewRelic NewRelicConfig `envPrefix:"NEW_RELIC_"`
	Auth     AuthConfig     `envPrefix:"AUTH_"`
	Payment  PaymentConfig  `envPrefix:"PAYMENT_"`
	Pricing  PricingConfig  `envPrefix:"PRICING_"`
	Kafka    KafkaConfig    `envPrefix:"KAFKA_"`
	LogLevel string         `env:"LOG_LEVEL" envDefault:"info"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string        `env:"PORT" envDefault:"8080"`
	ReadTimeout    time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout   time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host         string        `env:"HOST" envDefault:"localhost"`
	Port         string        `env:"PORT" envDefault:"5432"`
	User         string        `env:"USER" envDefault:"postgres"`
	Password     string        `env:"PASSWORD" envDefault:"postgres"`
	DBName       string        `env:"NAME" envDefault:"carshare"`
	SSLMode      string        `env:"SSLMODE" envDefault:"disable"`
	QueryTimeout time.Duration `env:"QUERY_TIMEOUT" envDefault:"5s"`
	AutoMigrate  bool          `env:"AUTO_MIGRATE" envDefault:"false"`
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr        string        `env:"ADDR" envDefault:"localhost:6379"`
	Password    string        `env:"PASSWORD"`
	DB          int           `env:"DB" envDefault:"0"`
	SnapshotTTL time.Duration `env:"QUOTE_SNAPSHOT_TTL" envDefault:"24h"`
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string `env:"APP_NAME" envDefault:"carshare-booking"`
	LicenseKey string `env:"LICENSE_KEY"`
	Enabled    bool   `env:"ENABLED" envDefault:"false"`
}

// AuthConfig holds bearer token configuration.
type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET"`
	Issuer    string `env:"JWT_ISSUER" envDefault:"carshare-auth"`
}

// PaymentConfig holds payment gateway configuration.
type PaymentConfig struct {
	// Mode is "mock" or "http".
	Mode            string        `env:"GATEWAY_MODE" envDefault:"mock"`
	BaseURL         string        `env:"GATEWAY_URL" envDefault:"https://api.stripe.com"`
	SecretKey       string        `env:"GATEWAY_SECRET_KEY"`
	Currency        string        `env:"CURRENCY" envDefault:"jpy"`
	MinAmount       int64         `env:"MIN_AMOUNT" envDefault:"50"`
	Timeout         time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"10s"`
	MockAutoSucceed bool          `env:"MOCK_AUTO_SUCCEED" envDefault:"false"`
}

// PricingConfig holds pricing constants.
type PricingConfig struct {
	// InsuranceFee is a flat fee added to every rental. It does not vary per vehicle.
	InsuranceFee int64 `env:"INSURANCE_FEE" envDefault:"1000"`
}

// KafkaConfig holds event publishing configuration. Publishing is off when Brokers is empty.
type KafkaConfig struct {
	Brokers []string `env:"BROKERS" envSeparator:","`
	Topic   string   `env:"BOOKING_EVENTS_TOPIC" envDefault:"booking-events"`
}

// Load loads configuration from environment variables, reading a .env file first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that have no safe default.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET is required")
	}
	if c.Payment.Mode != "mock" && c.Payment.Mode != "http" {
		return fmt.Errorf("PAYMENT_GATEWAY_MODE must be mock or http, got %q", c.Payment.Mode)
	}
	if c.Payment.MinAmount < 0 {
		return errors.New("PAYMENT_MIN_AMOUNT must not be negative")
	}
	if c.Pricing.InsuranceFee < 0 {
		return errors.New("PRICING_INSURANCE_FEE must not be negative")
	}
	return nil
}

// DSN returns the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}
