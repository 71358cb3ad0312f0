package store

import (
	"context"
	"fmt"
	"time"
)

// NotificationRecord holds data for logging one confirmation-email attempt.
type NotificationRecord struct {
	SubscriberID string
	Email        string
	Attempt      int
	Status       string
	MessageID    string
	ErrorMessage string
	NextRetryAt  *time.Time
}

// RecordNotification logs a confirmation-email attempt. Send failures never
// affect the subscription itself; this table is how they stay observable.
func (s *PostgresStore) RecordNotification(ctx context.Context, rec NotificationRecord) error {
	var msgID *string
	if rec.MessageID != "" {
		msgID = &rec.MessageID
	}

	var errMsg *string
	if rec.ErrorMessage != "" {
		errMsg = &rec.ErrorMessage
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO notification_log (subscriber_id, email, attempt, status, message_id, error_message, next_retry_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rec.SubscriberID, rec.Email, rec.Attempt, rec.Status, msgID, errMsg, rec.NextRetryAt)
	if err != nil {
		return fmt.Errorf("inserting notification record: %w", err)
	}
	return nil
}
