package notifier

import (
	"context"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/auth/entity"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/instrument"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/mail"
	"go.opentelemetry.io/otel/codes"
)

const channelEmail = "email"

// EmailConfig configures the email notifier.
type EmailConfig struct {
	To      []string `validate:"required,min=1,dive,email"`
	Subject string
}

// Email delivers the code through a mail.Mail provider.
type Email struct {
	client  mail.Mail
	to      []string
	subject string
	ins     instrument.Instrumentation
}

func NewEmail(client mail.Mail, cfg EmailConfig, ins instrument.Instrumentation) *Email {
	return &Email{client: client, to: cfg.To, subject: cfg.Subject, ins: ins}
}

func (e *Email) Notify(ctx context.Context, n entity.Notification) error {
	ctx, span := e.ins.Tracer("auth.outbound.notifier").Start(ctx, "Email.Notify")
	defer span.End()

	subject := e.subject
	if subject == "" {
		subject = n.Subject()
	}

	if err := e.client.Send(ctx, mail.Message{
		To:       e.to,
		Subject:  subject,
		TextBody: n.Text(),
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return &DeliveryError{Channel: channelEmail, Err: err}
	}

	return nil
}
