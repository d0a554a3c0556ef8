package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lexflow/backend/internal/domain/intake"
	"github.com/lexflow/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NotificationQueueKey is the Redis list consumed by the mailer
const NotificationQueueKey = "lexflow:notifications"

// NotificationJob is one queued firm notification
type NotificationJob struct {
	EventID      string    `json:"event_id"`
	EventType    string    `json:"event_type"`
	FirmID       string    `json:"firm_id"`
	SubmissionID string    `json:"submission_id"`
	ClientID     string    `json:"client_id,omitempty"`
	Status       string    `json:"status,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// NotificationQueue accepts notification jobs
type NotificationQueue interface {
	Enqueue(ctx context.Context, job NotificationJob) error
}

type listPusher interface {
	LPush(ctx context.Context, key string, values ...any) *redis.IntCmd
}

// RedisNotificationQueue pushes JSON jobs onto a Redis list
type RedisNotificationQueue struct {
	client listPusher
	key    string
}

// NewRedisNotificationQueue creates a queue writing to NotificationQueueKey
func NewRedisNotificationQueue(client redis.UniversalClient) *RedisNotificationQueue {
	return &RedisNotificationQueue{client: client, key: NotificationQueueKey}
}

// Enqueue pushes job onto the list
func (q *RedisNotificationQueue) Enqueue(ctx context.Context, job NotificationJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode notification job: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	return nil
}

// NotificationHandler turns submission milestones into notification jobs.
// Without a queue it only logs. Queue failures are logged and swallowed so
// a broken mailer never fails a submission write.
type NotificationHandler struct {
	queue  NotificationQueue
	logger *zap.Logger
}

// NewNotificationHandler creates the handler; queue may be nil
func NewNotificationHandler(queue NotificationQueue, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{queue: queue, logger: logger}
}

// EventTypes implements shared.EventHandler
func (h *NotificationHandler) EventTypes() []string {
	return intake.SubmissionEventTypes
}

// Handle implements shared.EventHandler
func (h *NotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	job := NotificationJob{
		EventID:      event.EventID().String(),
		EventType:    event.EventType(),
		FirmID:       event.FirmID().String(),
		SubmissionID: event.AggregateID().String(),
		OccurredAt:   event.OccurredAt(),
	}
	switch e := event.(type) {
	case *intake.SubmissionCreatedEvent:
		job.ClientID = e.ClientID
		job.Status = string(e.Status)
	case *intake.SubmissionStatusEvent:
		job.ClientID = e.ClientID
		job.Status = string(e.Status)
	}

	h.logger.Info("Submission milestone",
		zap.String("event_type", job.EventType),
		zap.String("firm_id", job.FirmID),
		zap.String("submission_id", job.SubmissionID),
		zap.String("status", job.Status),
	)

	if h.queue == nil {
		return nil
	}
	if err := h.queue.Enqueue(ctx, job); err != nil {
		h.logger.Warn("Failed to queue notification",
			zap.String("event_id", job.EventID),
			zap.Error(err))
	}
	return nil
}
