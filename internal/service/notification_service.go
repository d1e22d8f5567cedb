package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"nivora-be/internal/model"
	"nivora-be/internal/pkg/logger"
	"nivora-be/internal/repository"
	"nivora-be/pkg/events"
	pktNats "nivora-be/pkg/nats"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification model.Notification)
	Broadcast(notification model.Notification)
}

// NotificationService turns bus events into inbox rows plus a live push.
// Every event this system emits targets the user named in its payload.
type NotificationService struct {
	repo       repository.NotificationRepository
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(repo repository.NotificationRepository, sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		repo:       repo,
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

var notificationTitles = map[string]string{
	events.TypeNoteCreated:    "Note Created",
	events.TypeNoteUpdated:    "Note Updated",
	events.TypeNoteDeleted:    "Note Deleted",
	events.TypeProfileUpdated: "Profile Updated",
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	title, known := notificationTitles[event.EventType()]
	if !known {
		// Unknown codes are acked, not retried; redelivery cannot fix them.
		s.logger.Warn("NotificationService", fmt.Sprintf("No notification mapping for event: %s", event.EventType()), nil)
		return nil
	}

	payload := event.Payload()
	uidStr, ok := payload["user_id"].(string)
	if !ok {
		s.logger.Warn("NotificationService", fmt.Sprintf("Event %s carries no user_id", event.EventType()), nil)
		return nil
	}
	userID, err := uuid.Parse(uidStr)
	if err != nil {
		s.logger.Warn("NotificationService", "Malformed user_id in event payload", map[string]interface{}{"user_id": uidStr})
		return nil
	}

	message, _ := payload["message"].(string)
	if message == "" {
		message = title
	}

	metaJSON, _ := json.Marshal(payload)

	notif := model.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		TypeCode:  event.EventType(),
		Title:     title,
		Message:   message,
		Metadata:  datatypes.JSON(metaJSON),
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	if err := s.repo.CreateNotification(ctx, &notif); err != nil {
		s.logger.Error("NotificationService", fmt.Sprintf("Error saving notification for user %s", userID), map[string]interface{}{"error": err})
		return err // NATS redelivers on error
	}

	if s.delivery != nil {
		s.delivery.Send(userID, notif)
	}

	return nil
}

func (s *NotificationService) GetUserNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int64, error) {
	return s.repo.GetNotificationsByUserID(ctx, userID, limit, offset)
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, notificationID)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}
