package service

import (
	"context"
	"fmt"
	"time"

	"github.com/prohmpiriya/eventhub/internal/domain"
	"github.com/prohmpiriya/eventhub/internal/repository"
	"github.com/prohmpiriya/eventhub/pkg/kafka"
	"github.com/prohmpiriya/eventhub/pkg/logger"
	"go.uber.org/zap"
)

// EventPublisher publishes asynchronous messages for workers and mailers
type EventPublisher interface {
	// PublishNotification publishes a message fanned out to user notifications
	PublishNotification(ctx context.Context, msg *domain.NotificationMessage) error

	// PublishPasswordReset publishes a reset token for the external mailer
	PublishPasswordReset(ctx context.Context, msg *domain.PasswordResetMessage) error

	// Close closes the event publisher
	Close() error
}

// EventPublisherConfig contains configuration for the event publisher
type EventPublisherConfig struct {
	Brokers            []string
	NotificationTopic  string
	PasswordResetTopic string
	ServiceName        string
	ClientID           string
}

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer           *kafka.Producer
	notificationTopic  string
	passwordResetTopic string
	serviceName        string
}

// NewKafkaEventPublisher creates a new Kafka event publisher
func NewKafkaEventPublisher(ctx context.Context, cfg *EventPublisherConfig) (*KafkaEventPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	p := &KafkaEventPublisher{
		notificationTopic:  cfg.NotificationTopic,
		passwordResetTopic: cfg.PasswordResetTopic,
		serviceName:        cfg.ServiceName,
	}
	if p.notificationTopic == "" {
		p.notificationTopic = "notifications"
	}
	if p.passwordResetTopic == "" {
		p.passwordResetTopic = "auth.password-reset"
	}
	if p.serviceName == "" {
		p.serviceName = "eventhub"
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = p.serviceName + "-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		LingerMs:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	p.producer = producer
	return p, nil
}

func (p *KafkaEventPublisher) headers(eventType, eventID string) map[string]string {
	return map[string]string{
		"event_type":   eventType,
		"event_id":     eventID,
		"source":       p.serviceName,
		"content_type": "application/json",
	}
}

// PublishNotification publishes to the notifications topic keyed by message id
func (p *KafkaEventPublisher) PublishNotification(ctx context.Context, msg *domain.NotificationMessage) error {
	headers := p.headers(string(msg.Kind), msg.MessageID)
	if err := p.producer.ProduceJSON(ctx, p.notificationTopic, msg.MessageID, msg, headers); err != nil {
		return fmt.Errorf("failed to publish %s notification: %w", msg.Kind, err)
	}
	return nil
}

// PublishPasswordReset publishes to the password reset topic keyed by user id
func (p *KafkaEventPublisher) PublishPasswordReset(ctx context.Context, msg *domain.PasswordResetMessage) error {
	headers := p.headers("password_reset", msg.UserID)
	if err := p.producer.ProduceJSON(ctx, p.passwordResetTopic, msg.UserID, msg, headers); err != nil {
		return fmt.Errorf("failed to publish password reset: %w", err)
	}
	return nil
}

// Close closes the event publisher
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

// DirectEventPublisher writes notifications straight to the database.
// Used when Kafka is unavailable.
type DirectEventPublisher struct {
	notificationRepo repository.NotificationRepository
}

// NewDirectEventPublisher creates a new direct publisher
func NewDirectEventPublisher(notificationRepo repository.NotificationRepository) *DirectEventPublisher {
	return &DirectEventPublisher{notificationRepo: notificationRepo}
}

// PublishNotification inserts the notification rows synchronously
func (p *DirectEventPublisher) PublishNotification(ctx context.Context, msg *domain.NotificationMessage) error {
	return p.notificationRepo.CreateBatch(ctx, msg.Expand())
}

// PublishPasswordReset only logs; there is no mailer without Kafka
func (p *DirectEventPublisher) PublishPasswordReset(ctx context.Context, msg *domain.PasswordResetMessage) error {
	logger.WithContext(ctx).Info("password reset requested, no mailer configured",
		zap.String("user_id", msg.UserID),
		zap.Time("expires_at", msg.ExpiresAt),
	)
	return nil
}

// Close is a no-op
func (p *DirectEventPublisher) Close() error {
	return nil
}
