package notify

import (
	"context"
	"time"
)

// SendRequest contains the data needed to send an email via a provider.
type SendRequest struct {
	To      []string
	From    string
	Subject string
	HTML    string
	ReplyTo string
}

// SendResult contains the provider's response for a sent email.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers emails through an external provider. Implementations are
// best-effort collaborators: the subscription is durable before any send is
// attempted, and a failed send is never surfaced to the subscriber.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
