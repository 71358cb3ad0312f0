package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/devikarao/newsletter-service/internal/domain"
	"github.com/devikarao/newsletter-service/internal/store"
	"github.com/redis/go-redis/v9"
)

const NotificationQueueKey = "notification_queue"

// NotificationJob represents one confirmation-email task queued in Redis.
type NotificationJob struct {
	SubscriberID string    `json:"subscriber_id"`
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribed_at"`
	Attempt      int       `json:"attempt"`
	MaxRetries   int       `json:"max_retries"`
}

// NotificationQueue is a Redis sorted set of pending confirmation emails.
// The score is the time a job becomes ready, which doubles as the retry
// delay mechanism: re-enqueueing with a future score parks the job until
// its backoff expires.
type NotificationQueue struct {
	redisStore *store.RedisStore
	logger     *slog.Logger
}

func NewNotificationQueue(rs *store.RedisStore, logger *slog.Logger) *NotificationQueue {
	return &NotificationQueue{
		redisStore: rs,
		logger:     logger,
	}
}

// Enqueue queues the first confirmation attempt for a new subscriber.
func (q *NotificationQueue) Enqueue(ctx context.Context, sub *domain.Subscriber) error {
	job := NotificationJob{
		SubscriberID: sub.ID,
		Email:        sub.Email,
		SubscribedAt: sub.SubscribedAt,
		Attempt:      1,
		MaxRetries:   5,
	}
	return q.EnqueueAt(ctx, job, time.Now())
}

// EnqueueAt queues a job that becomes ready at the given time.
func (q *NotificationQueue) EnqueueAt(ctx context.Context, job NotificationJob, readyAt time.Time) error {
	jobBytes, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshaling notification job: %w", err)
	}

	err = q.redisStore.Client().ZAdd(ctx, NotificationQueueKey, redis.Z{
		Score:  float64(readyAt.UnixMicro()),
		Member: string(jobBytes),
	}).Err()
	if err != nil {
		return fmt.Errorf("queuing notification to redis: %w", err)
	}

	q.logger.Info("confirmation queued",
		"subscriber_id", job.SubscriberID,
		"attempt", job.Attempt,
	)

	return nil
}

// Depth returns the current number of jobs waiting in the queue.
func (q *NotificationQueue) Depth(ctx context.Context) (int64, error) {
	return q.redisStore.Client().ZCard(ctx, NotificationQueueKey).Result()
}
