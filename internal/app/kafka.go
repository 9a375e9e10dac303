package app

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"carshare/internal/config"
	"carshare/internal/kafka"
)

// NewEventProducer connects the booking event producer.
// It returns nil, nil when no brokers are configured.
func NewEventProducer(cfg config.KafkaConfig, logger *logrus.Logger) (*kafka.Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}

	syncProducer, err := kafka.NewSyncProducer(cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to kafka: %w", err)
	}

	return kafka.NewProducer(syncProducer, cfg.Topic, logger), nil
}
