package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/DeanLuus22021994/recruit/internal/models"
	"github.com/DeanLuus22021994/recruit/internal/storage"
)

var (
	ErrTemplateNotFound = errors.New("email template not found or inactive")
	ErrTransport        = errors.New("email transport failed")
)

// Dispatcher renders stored templates and sends them, logging every attempt.
type Dispatcher struct {
	DB          *gorm.DB
	Transport   Transport
	DefaultFrom string
	Now         func() time.Time
}

func NewDispatcher(db *gorm.DB, t Transport, defaultFrom string) *Dispatcher {
	return &Dispatcher{DB: db, Transport: t, DefaultFrom: defaultFrom, Now: time.Now}
}

type sendOptions struct {
	sender       string
	failSilently bool
}

type Option func(*sendOptions)

// WithSender overrides the default From address.
func WithSender(addr string) Option {
	return func(o *sendOptions) { o.sender = addr }
}

// FailSilently turns every failure into a false result with no error.
func FailSilently() Option {
	return func(o *sendOptions) { o.failSilently = true }
}

// SendTemplateEmail renders the active template called name with data and
// sends it to recipient. Once the transport is called exactly one EmailLog
// row records the outcome. A missing template or a render error writes no
// log row.
func (d *Dispatcher) SendTemplateEmail(ctx context.Context, name, recipient string, data map[string]any, opts ...Option) (bool, error) {
	o := sendOptions{sender: d.DefaultFrom}
	for _, opt := range opts {
		opt(&o)
	}
	if o.sender == "" {
		o.sender = "noreply@example.com"
	}
	fail := func(err error) (bool, error) {
		if o.failSilently {
			return false, nil
		}
		return false, err
	}

	var tmpl models.EmailTemplate
	err := d.DB.WithContext(ctx).Where("name = ? AND is_active = ?", name, true).First(&tmpl).Error
	if err != nil {
		if storage.IsNotFound(err) {
			slog.Error("email template not found or inactive", slog.String("template", name))
			return fail(fmt.Errorf("%q: %w", name, ErrTemplateNotFound))
		}
		return fail(fmt.Errorf("load template %q: %w", name, err))
	}

	msg, err := renderMessage(tmpl, data)
	if err != nil {
		slog.Error("error rendering email template", slog.String("template", name), slog.Any("error", err))
		return fail(fmt.Errorf("render %q: %w", name, err))
	}
	msg.From = o.sender
	msg.To = recipient

	entry := models.EmailLog{
		Recipient:  recipient,
		Sender:     o.sender,
		Subject:    msg.Subject,
		TemplateID: &tmpl.ID,
		SentAt:     d.Now().UTC(),
	}
	messageID, sendErr := d.Transport.Send(ctx, msg)
	if sendErr != nil {
		slog.Error("error sending email", slog.String("recipient", recipient), slog.Any("error", sendErr))
		entry.Status = models.EmailFailed
		entry.ErrorMessage = sendErr.Error()
	} else {
		slog.Info("email sent", slog.String("recipient", recipient), slog.String("template", name))
		entry.Status = models.EmailSent
		entry.SendGridMessageID = messageID
	}
	if entry.Subject == "" {
		entry.Subject = "Email from template " + name
	}

	if err := d.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		slog.Error("failed to write email log", slog.String("recipient", recipient), slog.Any("error", err))
		if sendErr == nil {
			return fail(fmt.Errorf("write email log: %w", err))
		}
	}
	if sendErr != nil {
		return fail(fmt.Errorf("%w: %v", ErrTransport, sendErr))
	}
	return true, nil
}

// renderMessage prefers the HTML body; the plain body falls back to the
// HTML with its tags stripped.
func renderMessage(tmpl models.EmailTemplate, data map[string]any) (Message, error) {
	var (
		msg Message
		err error
	)
	if tmpl.HTMLContent != "" {
		if msg.HTML, err = RenderHTML(tmpl.HTMLContent, data); err != nil {
			return Message{}, err
		}
	}
	switch {
	case tmpl.PlainContent != "":
		if msg.Plain, err = Render(tmpl.PlainContent, data); err != nil {
			return Message{}, err
		}
	case msg.HTML != "":
		msg.Plain = StripTags(msg.HTML)
	}
	if msg.Subject, err = Render(tmpl.Subject, data); err != nil {
		return Message{}, err
	}
	return msg, nil
}
