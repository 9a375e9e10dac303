package kafka

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestProducer_Send(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != `{"type":"booking.confirmed"}` {
			return errors.New("unexpected payload")
		}
		return nil
	})

	p := NewProducer(sp, "booking-events", quietLogger())
	err := p.Send(context.Background(), []byte("b-1"), []byte(`{"type":"booking.confirmed"}`))
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestProducer_SendFailure(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewProducer(sp, "booking-events", quietLogger())
	err := p.Send(context.Background(), []byte("b-1"), []byte("{}"))
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}
