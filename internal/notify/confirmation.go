package notify

import (
	"fmt"
	"time"
)

const confirmationSubject = "Welcome to the newsletter"

// Confirmation builds the welcome email for a new subscriber.
func Confirmation(email string, subscribedAt time.Time) SendRequest {
	body := fmt.Sprintf(
		"<p>Thank you for subscribing to our newsletter! "+
			"You will receive our latest updates and news.</p>"+
			"<p>Subscribed on %s.</p>",
		subscribedAt.Format("2 January 2006"),
	)

	return SendRequest{
		To:      []string{email},
		Subject: confirmationSubject,
		HTML:    body,
		ReplyTo: email,
	}
}
