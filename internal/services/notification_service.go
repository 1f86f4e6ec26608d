package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/opechapo/kara-backend/internal/events"
	"github.com/opechapo/kara-backend/internal/models"
	"github.com/opechapo/kara-backend/internal/repositories"
	"go.uber.org/zap"
)

type NotificationService struct {
	notificationRepo *repositories.NotificationRepo
	publisher        events.Publisher
	log              *zap.Logger
}

func NewNotificationService(notificationRepo *repositories.NotificationRepo, publisher events.Publisher, log *zap.Logger) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo, publisher: publisher, log: log}
}

// Notify stores a notification and publishes it for live push. Errors
// are logged, not returned: notifications never fail the caller's
// operation.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, message, notifType string) {
	n := &models.Notification{UserID: userID, Message: message, Type: notifType}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		s.log.Error("failed to store notification", zap.Error(err))
		return
	}

	_ = s.publisher.Publish(ctx, events.StreamNotify, events.Event{
		Type: events.EventNotificationCreated,
		Payload: map[string]any{
			"user_id": userID.String(),
			"id":      n.ID.String(),
			"message": message,
			"type":    notifType,
		},
	})
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}

func (s *NotificationService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	return s.notificationRepo.List(ctx, repositories.NotificationFilter{UserID: &userID})
}

// ListAll is the admin view across all users.
func (s *NotificationService) ListAll(ctx context.Context, limit int) ([]models.Notification, error) {
	return s.notificationRepo.List(ctx, repositories.NotificationFilter{Limit: limit})
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	affected, err := s.notificationRepo.MarkRead(ctx, id, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound("Notification not found")
	}
	return nil
}

func (s *NotificationService) MarkUnread(ctx context.Context, id, userID uuid.UUID) error {
	affected, err := s.notificationRepo.MarkUnread(ctx, id, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound("Notification not found")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}
