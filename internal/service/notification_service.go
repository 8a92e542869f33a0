package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/consulting-sessions-api/pkg/jobs"
	"github.com/noah-isme/consulting-sessions-api/pkg/notify"
)

const notificationJobType = "session_notification"

// NotificationService dispatches session events after commit. Notify never
// blocks and never fails the caller; undeliverable events are logged.
type NotificationService struct {
	queue     *jobs.Queue
	publisher notify.Publisher
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewNotificationService wires the publisher behind a worker queue.
func NewNotificationService(publisher notify.Publisher, cfg jobs.QueueConfig, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = notify.NewLogPublisher(logger)
	}
	svc := &NotificationService{publisher: publisher, metrics: metrics, logger: logger, now: time.Now}
	if cfg.Logger == nil {
		cfg.Logger = logger
	}
	svc.queue = jobs.NewQueue("notifications", svc.deliver, cfg)
	return svc
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop halts the workers and closes the publisher.
func (s *NotificationService) Stop() {
	s.queue.Stop()
	if err := s.publisher.Close(); err != nil {
		s.logger.Warn("close notification publisher", zap.Error(err))
	}
}

// Notify enqueues one event addressed to userID.
func (s *NotificationService) Notify(userID string, event notify.Event) {
	if s == nil {
		return
	}
	event.UserID = userID
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now().UTC()
	}

	err := s.queue.Submit(jobs.Job{ID: event.ID, Type: notificationJobType, Payload: event})
	if err == nil {
		return
	}
	s.metrics.RecordNotification(event.Type, notificationDropped)
	level := s.logger.Error
	if errors.Is(err, jobs.ErrQueueFull) {
		level = s.logger.Warn
	}
	level("notification dropped",
		zap.String("event", event.Type),
		zap.String("user_id", userID),
		zap.String("session_id", event.SessionID),
		zap.Error(err),
	)
}

func (s *NotificationService) deliver(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(notify.Event)
	if !ok {
		return fmt.Errorf("unexpected notification payload %T", job.Payload)
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.metrics.RecordNotification(event.Type, notificationFailed)
		return err
	}
	s.metrics.RecordNotification(event.Type, notificationPublished)
	return nil
}
