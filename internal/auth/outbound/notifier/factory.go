package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/auth/entity"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/instrument"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/mail"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/validator"
)

const (
	DriverTelegram = "telegram"
	DriverEmail    = "email"
)

var (
	ErrUnknownDriver = errors.New("notifier: unknown driver")
	ErrMailRequired  = errors.New("notifier: mail client is required for the email driver")
)

// Notifier delivers an issued code to the operator.
type Notifier interface {
	Notify(ctx context.Context, n entity.Notification) error
}

type FactoryOptions struct {
	Telegram   TelegramConfig
	Email      EmailConfig
	Mail       mail.Mail
	Validator  validator.Validator
	Instrument instrument.Instrumentation
}

// NewFromDriver validates the selected channel configuration and builds it.
func NewFromDriver(driver string, opts FactoryOptions) (Notifier, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverTelegram, "":
		if err := opts.Validator.Validate(opts.Telegram); err != nil {
			return nil, fmt.Errorf("notifier: telegram config: %w", err)
		}
		return NewTelegram(opts.Telegram, opts.Instrument), nil
	case DriverEmail:
		if opts.Mail == nil {
			return nil, ErrMailRequired
		}
		if err := opts.Validator.Validate(opts.Email); err != nil {
			return nil, fmt.Errorf("notifier: email config: %w", err)
		}
		return NewEmail(opts.Mail, opts.Email, opts.Instrument), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
