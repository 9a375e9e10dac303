package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"carshare/internal/domain"
)

// NotificationType represents the type of booking event.
type NotificationType string

const (
	NotificationBookingConfirmed     NotificationType = "booking.confirmed"
	NotificationPaymentIntentCreated NotificationType = "payment_intent.created"
)

// EventPublisher delivers keyed event payloads to a message broker.
type EventPublisher interface {
	Send(ctx context.Context, key, value []byte) error
}

// Notification is an event emitted after a state change has been committed.
type Notification struct {
	Type        NotificationType `json:"type"`
	RecipientID string           `json:"recipient_id,omitempty"`
	Data        map[string]any   `json:"data"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NotificationService emits booking events. Delivery is best effort:
// failures are logged and never undo the operation that caused them.
type NotificationService struct {
	publisher EventPublisher
	logger    *logrus.Logger
	now       func() time.Time
}

// NewNotificationService creates a new NotificationService.
// publisher may be nil, in which case events are only logged.
func NewNotificationService(publisher EventPublisher, logger *logrus.Logger) *NotificationService {
	return &NotificationService{
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// NotifyBookingConfirmed announces a newly persisted booking.
func (s *NotificationService) NotifyBookingConfirmed(ctx context.Context, booking *domain.Booking) error {
	return s.send(ctx, booking.ID, Notification{
		Type:        NotificationBookingConfirmed,
		RecipientID: booking.UserID,
		Data: map[string]any{
			"booking_id":        booking.ID,
			"vehicle_id":        booking.VehicleID,
			"payment_intent_id": booking.PaymentIntentID,
			"amount":            booking.Charges.Amount,
			"currency":          booking.Charges.Currency,
			"start_at":          booking.StartAt,
			"end_at":            booking.EndAt,
		},
		CreatedAt: s.now(),
	})
}

// NotifyPaymentIntentCreated announces a new authorization hold.
func (s *NotificationService) NotifyPaymentIntentCreated(ctx context.Context, vehicleID string, result *CreateIntentResult) error {
	return s.send(ctx, result.IntentID, Notification{
		Type: NotificationPaymentIntentCreated,
		Data: map[string]any{
			"payment_intent_id": result.IntentID,
			"vehicle_id":        vehicleID,
			"amount":            result.Amount,
			"currency":          result.Currency,
		},
		CreatedAt: s.now(),
	})
}

func (s *NotificationService) send(ctx context.Context, key string, notification Notification) error {
	entry := s.logger.WithFields(logrus.Fields{
		"type":      notification.Type,
		"key":       key,
		"recipient": notification.RecipientID,
	})

	if s.publisher == nil {
		entry.Info("Notification")
		return nil
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	if err := s.publisher.Send(ctx, []byte(key), payload); err != nil {
		entry.WithError(err).Warn("Failed to publish notification")
		return err
	}

	entry.Debug("Notification published")
	return nil
}
