package app

import (
	"github.com/sirupsen/logrus"

	"carshare/internal/config"
	"carshare/internal/gateway"
	"carshare/internal/service"
)

// NewPaymentGateway selects the gateway implementation from configuration.
func NewPaymentGateway(cfg config.PaymentConfig, logger *logrus.Logger) service.PaymentGateway {
	if cfg.Mode == "http" {
		gw := gateway.NewHTTPGateway(cfg.BaseURL, cfg.SecretKey, cfg.Timeout, logger)
		if !gw.IsConfigured() {
			logger.Warn("Payment gateway secret key is not set, payment calls will fail")
		}
		return gw
	}

	logger.WithField("auto_succeed", cfg.MockAutoSucceed).Warn("Using in-memory mock payment gateway")
	return gateway.NewMockGateway(cfg.MockAutoSucceed)
}
