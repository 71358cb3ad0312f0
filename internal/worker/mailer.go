package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/devikarao/newsletter-service/internal/notify"
	"github.com/devikarao/newsletter-service/internal/queue"
	"github.com/devikarao/newsletter-service/internal/store"
	ws "github.com/devikarao/newsletter-service/internal/websocket"
)

// Attempt outcomes recorded in the notification log.
const (
	StatusSent     = "sent"
	StatusRetrying = "retrying"
	StatusFailed   = "failed"
)

const baseRetryDelay = 30 * time.Second

// AttemptLog records confirmation-email attempts for later inspection.
type AttemptLog interface {
	RecordNotification(ctx context.Context, rec store.NotificationRecord) error
}

// Mailer sends confirmation emails for queued notification jobs. Sending is
// best-effort: a failure schedules a retry with exponential backoff and,
// once retries are exhausted, is logged and recorded — the subscription
// itself is never touched.
type Mailer struct {
	sender   notify.Sender
	attempts AttemptLog
	queue    *queue.NotificationQueue
	hub      *ws.Hub
	logger   *slog.Logger
}

func NewMailer(sender notify.Sender, attempts AttemptLog, q *queue.NotificationQueue, hub *ws.Hub, logger *slog.Logger) *Mailer {
	return &Mailer{
		sender:   sender,
		attempts: attempts,
		queue:    q,
		hub:      hub,
		logger:   logger,
	}
}

// Process sends the confirmation email for one job.
func (m *Mailer) Process(ctx context.Context, job queue.NotificationJob) {
	req := notify.Confirmation(job.Email, job.SubscribedAt)

	result, err := m.sender.Send(ctx, req)
	if err == nil {
		m.record(ctx, store.NotificationRecord{
			SubscriberID: job.SubscriberID,
			Email:        job.Email,
			Attempt:      job.Attempt,
			Status:       StatusSent,
			MessageID:    result.MessageID,
		})

		m.hub.Broadcast(ws.SignupEvent{
			Type:         ws.EventNotificationSent,
			SubscriberID: job.SubscriberID,
			Email:        job.Email,
			Attempt:      job.Attempt,
			Timestamp:    time.Now(),
		})

		m.logger.Info("confirmation sent",
			"subscriber_id", job.SubscriberID,
			"attempt", job.Attempt,
			"message_id", result.MessageID,
		)
		return
	}

	if job.Attempt < job.MaxRetries {
		delay := baseRetryDelay * time.Duration(1<<(job.Attempt-1))
		nextRetryAt := time.Now().Add(delay)

		m.record(ctx, store.NotificationRecord{
			SubscriberID: job.SubscriberID,
			Email:        job.Email,
			Attempt:      job.Attempt,
			Status:       StatusRetrying,
			ErrorMessage: err.Error(),
			NextRetryAt:  &nextRetryAt,
		})

		retry := job
		retry.Attempt++
		if qErr := m.queue.EnqueueAt(ctx, retry, nextRetryAt); qErr != nil {
			m.logger.Error("failed to schedule confirmation retry",
				"error", qErr,
				"subscriber_id", job.SubscriberID,
			)
			return
		}

		m.logger.Warn("confirmation failed, retry scheduled",
			"subscriber_id", job.SubscriberID,
			"attempt", job.Attempt,
			"next_retry_in", delay.String(),
			"error", err,
		)
		return
	}

	m.record(ctx, store.NotificationRecord{
		SubscriberID: job.SubscriberID,
		Email:        job.Email,
		Attempt:      job.Attempt,
		Status:       StatusFailed,
		ErrorMessage: err.Error(),
	})

	m.hub.Broadcast(ws.SignupEvent{
		Type:         ws.EventNotificationFailed,
		SubscriberID: job.SubscriberID,
		Email:        job.Email,
		Attempt:      job.Attempt,
		Error:        err.Error(),
		Timestamp:    time.Now(),
	})

	m.logger.Warn("confirmation failed permanently",
		"subscriber_id", job.SubscriberID,
		"attempts", job.Attempt,
		"error", err,
	)
}

func (m *Mailer) record(ctx context.Context, rec store.NotificationRecord) {
	if m.attempts == nil {
		return
	}
	if err := m.attempts.RecordNotification(ctx, rec); err != nil {
		m.logger.Error("failed to record notification attempt",
			"error", err,
			"subscriber_id", rec.SubscriberID,
		)
	}
}
