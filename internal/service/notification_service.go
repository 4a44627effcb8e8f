package service

import (
	"context"

	"github.com/prohmpiriya/eventhub/internal/domain"
	"github.com/prohmpiriya/eventhub/internal/dto"
	"github.com/prohmpiriya/eventhub/internal/metrics"
	"github.com/prohmpiriya/eventhub/internal/repository"
	"github.com/prohmpiriya/eventhub/pkg/logger"
	"github.com/prohmpiriya/eventhub/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const defaultNotificationLimit = 20

// NotificationService reads and emits user notifications
type NotificationService interface {
	List(ctx context.Context, userID string, q *dto.NotificationListQuery) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, userID string, req *dto.MarkReadRequest) (*dto.MarkReadResponse, error)
	// Notify publishes a notification for userIDs. Failures are logged, not returned.
	Notify(ctx context.Context, userIDs []string, eventID string, kind domain.NotificationKind, message string)
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	publisher        EventPublisher
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notificationRepo repository.NotificationRepository, publisher EventPublisher) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		publisher:        publisher,
	}
}

// List returns the caller's notifications
func (s *notificationService) List(ctx context.Context, userID string, q *dto.NotificationListQuery) ([]*domain.Notification, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.notification.list")
	defer span.End()

	limit := q.Limit
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	items, err := s.notificationRepo.List(ctx, userID, q.Unread, limit, q.Offset)
	return items, telemetry.RecordError(span, err)
}

// MarkRead marks the selected notifications, or all of them, as read
func (s *notificationService) MarkRead(ctx context.Context, userID string, req *dto.MarkReadRequest) (*dto.MarkReadResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.notification.mark_read")
	defer span.End()

	var (
		updated int64
		err     error
	)
	switch {
	case req.All:
		updated, err = s.notificationRepo.MarkAllRead(ctx, userID)
	case len(req.IDs) > 0:
		updated, err = s.notificationRepo.MarkRead(ctx, userID, req.IDs)
	default:
		return nil, domain.ErrNoNotificationsSelected
	}
	if err != nil {
		return nil, telemetry.RecordError(span, err)
	}

	span.SetAttributes(attribute.Int64("updated", updated))
	return &dto.MarkReadResponse{Updated: updated}, nil
}

// Notify publishes a notification message
func (s *notificationService) Notify(ctx context.Context, userIDs []string, eventID string, kind domain.NotificationKind, message string) {
	if len(userIDs) == 0 {
		return
	}

	ctx, span := telemetry.StartSpan(ctx, "service.notification.notify")
	defer span.End()

	msg := domain.NewNotificationMessage(userIDs, eventID, kind, message)
	span.SetAttributes(
		attribute.String("message_id", msg.MessageID),
		attribute.String("kind", string(kind)),
		attribute.Int("recipients", len(userIDs)),
	)

	err := s.publisher.PublishNotification(ctx, msg)
	metrics.RecordNotification(string(kind), err)
	if err != nil {
		telemetry.RecordError(span, err)
		logger.WithContext(ctx).Error("failed to publish notification",
			zap.String("message_id", msg.MessageID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}
