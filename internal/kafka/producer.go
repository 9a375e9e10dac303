package kafka

import (
	"context"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"
)

// Producer publishes keyed messages to a single topic.
type Producer struct {
	syncProducer sarama.SyncProducer
	topic        string
	logger       *logrus.Logger
}

// NewProducer creates a new Producer.
func NewProducer(syncProducer sarama.SyncProducer, topic string, logger *logrus.Logger) *Producer {
	return &Producer{
		syncProducer: syncProducer,
		topic:        topic,
		logger:       logger,
	}
}

// NewSyncProducer connects a sarama SyncProducer that waits for all in-sync replicas.
func NewSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Return.Successes = true
	cfg.Producer.Retry.Max = 3

	return sarama.NewSyncProducer(brokers, cfg)
}

// Send publishes value under key.
func (p *Producer) Send(ctx context.Context, key, value []byte) error {
	partition, offset, err := p.syncProducer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.ByteEncoder(key),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		p.logger.WithError(err).WithField("topic", p.topic).Error("Failed to send message")
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"topic":     p.topic,
		"partition": partition,
		"offset":    offset,
		"key":       string(key),
	}).Debug("Message sent")

	return nil
}

// Close flushes and closes the underlying producer.
func (p *Producer) Close() error {
	return p.syncProducer.Close()
}
