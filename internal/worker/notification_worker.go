package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prohmpiriya/eventhub/internal/domain"
	"github.com/prohmpiriya/eventhub/internal/metrics"
	"github.com/prohmpiriya/eventhub/internal/repository"
	"github.com/prohmpiriya/eventhub/pkg/kafka"
	"github.com/prohmpiriya/eventhub/pkg/logger"
	"github.com/prohmpiriya/eventhub/pkg/retry"
	"github.com/prohmpiriya/eventhub/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// RecordSource is the consumer side the worker needs
type RecordSource interface {
	Poll(ctx context.Context) ([]*kafka.Record, error)
	CommitRecords(ctx context.Context, records []*kafka.Record) error
}

// NotificationWorkerConfig contains configuration for the notification worker
type NotificationWorkerConfig struct {
	// Retry controls attempts at inserting one message before it is dead-lettered
	Retry *retry.Config
	// PollBackoff is the pause after a failed poll
	PollBackoff time.Duration
}

// DefaultNotificationWorkerConfig returns default configuration
func DefaultNotificationWorkerConfig() *NotificationWorkerConfig {
	return &NotificationWorkerConfig{
		Retry:       retry.DefaultConfig(),
		PollBackoff: time.Second,
	}
}

// NotificationWorker consumes NotificationMessages and stores one row per recipient
type NotificationWorker struct {
	source RecordSource
	repo   repository.NotificationRepository
	dlq    *retry.DLQHandler
	config *NotificationWorkerConfig
	log    *logger.Logger
}

// NewNotificationWorker creates a worker. producer receives dead letters and may be nil.
func NewNotificationWorker(
	source RecordSource,
	repo repository.NotificationRepository,
	producer retry.JSONProducer,
	cfg *NotificationWorkerConfig,
	log *logger.Logger,
) *NotificationWorker {
	if cfg == nil {
		cfg = DefaultNotificationWorkerConfig()
	}
	if cfg.PollBackoff <= 0 {
		cfg.PollBackoff = time.Second
	}
	if log == nil {
		log = logger.Get()
	}

	w := &NotificationWorker{
		source: source,
		repo:   repo,
		config: cfg,
		log:    log,
	}
	w.dlq = retry.NewDLQHandler(cfg.Retry, producer, "notification-worker", w.onDead)
	return w
}

// Run polls until ctx is cancelled. It returns an error wrapping
// retry.ErrDeadLetterFailed when a failed message could not be parked.
func (w *NotificationWorker) Run(ctx context.Context) error {
	w.log.Info("Notification worker started")

	for {
		records, err := w.source.Poll(ctx)
		if ctx.Err() != nil {
			w.log.Info("Notification worker stopped")
			return nil
		}
		if err != nil {
			w.log.Error("Failed to poll records", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(w.config.PollBackoff):
			}
			continue
		}

		if err := w.HandleRecords(ctx, records); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// later commits would skip the unparked record, so restart from the committed offset
			if errors.Is(err, retry.ErrDeadLetterFailed) {
				return err
			}
			w.log.Error("Failed to handle batch", zap.Error(err))
		}
	}
}

// HandleRecords stores every record and commits the ones that are done.
// A record is done once stored or dead-lettered. Processing stops at the
// first record that is neither, so it and everything after it is redelivered.
func (w *NotificationWorker) HandleRecords(ctx context.Context, records []*kafka.Record) error {
	done := make([]*kafka.Record, 0, len(records))
	var stopErr error

	for _, record := range records {
		err := w.process(ctx, record)
		if errors.Is(err, retry.ErrContextCanceled) || errors.Is(err, retry.ErrDeadLetterFailed) {
			stopErr = err
			break
		}
		done = append(done, record)
	}

	if len(done) > 0 {
		if err := w.source.CommitRecords(context.WithoutCancel(ctx), done); err != nil {
			return fmt.Errorf("failed to commit offsets: %w", err)
		}
	}
	return stopErr
}

func (w *NotificationWorker) process(ctx context.Context, record *kafka.Record) error {
	ctx, span := telemetry.StartSpan(ctx, "worker.notification.process")
	defer span.End()

	headers := make(map[string]string, len(record.Headers))
	for _, h := range record.Headers {
		headers[h.Key] = string(h.Value)
	}

	err := w.dlq.Process(ctx, record.Topic, string(record.Key), record.Value, headers, func(ctx context.Context) error {
		var msg domain.NotificationMessage
		if err := json.Unmarshal(record.Value, &msg); err != nil {
			return retry.Permanent(fmt.Errorf("invalid notification message: %w", err))
		}
		rows := msg.Expand()
		if len(rows) == 0 {
			return nil
		}
		if err := w.repo.CreateBatch(ctx, rows); err != nil {
			return err
		}
		metrics.NotificationsStored.Add(float64(len(rows)))
		span.SetAttributes(
			attribute.String("message_id", msg.MessageID),
			attribute.Int("recipients", len(rows)),
		)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
	}
	return err
}

func (w *NotificationWorker) onDead(dead *retry.DeadLetter) {
	metrics.NotificationsDeadLettered.Inc()
	w.log.Error("Notification message dead-lettered",
		zap.String("topic", dead.OriginalTopic),
		zap.String("key", dead.Key),
		zap.Int("attempts", dead.Attempts),
		zap.String("error", dead.Error),
	)
}
