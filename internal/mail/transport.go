package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Message is one rendered email.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
	Plain   string
}

// Transport delivers a message and returns the provider's message ID.
type Transport interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// SendGridTransport delivers through the SendGrid v3 API.
type SendGridTransport struct {
	client *sendgrid.Client
}

func NewSendGridTransport(apiKey string) *SendGridTransport {
	return &SendGridTransport{client: sendgrid.NewSendClient(apiKey)}
}

func (t *SendGridTransport) Send(ctx context.Context, msg Message) (string, error) {
	from := sgmail.NewEmail("", msg.From)
	to := sgmail.NewEmail("", msg.To)
	m := sgmail.NewSingleEmail(from, msg.Subject, to, msg.Plain, msg.HTML)

	resp, err := t.client.SendWithContext(ctx, m)
	if err != nil {
		return "", err
	}
	switch resp.StatusCode {
	case 200, 201, 202:
	default:
		return "", fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	if ids := resp.Headers["X-Message-Id"]; len(ids) > 0 {
		return ids[0], nil
	}
	return "", nil
}

// LogTransport writes messages to the log instead of sending them.
type LogTransport struct{}

func (LogTransport) Send(_ context.Context, msg Message) (string, error) {
	id := uuid.NewString()
	slog.Info("email (not sent)",
		slog.String("message_id", id),
		slog.String("from", msg.From),
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	return id, nil
}
