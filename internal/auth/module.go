package auth

import (
	"net/http"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/auth/inbound"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/auth/outbound/mq"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/auth/outbound/notifier"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/auth/outbound/slot"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/auth/usecase"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/clock"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/config"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/goroutine"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/hash"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/idempotency"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/instrument"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/kvstore"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/mail"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/messaging"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/otp"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/router"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/uid"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/validator"
)

type Dependency struct {
	Store      kvstore.Store              `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Publisher        `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	EventID    uid.StringID               `validate:"required"`
	Secret     uid.StringID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	OTP        otp.OTP                    `validate:"required"`
	Validator  validator.Validator        `validate:"required"`

	// Idempotency is nil when no cache is configured.
	Idempotency idempotency.Idempotency
	// Mail is only needed by the email notifier.
	Mail mail.Mail
	// Pages, when set, serves every non-API path behind the login gate.
	Pages http.Handler
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	repoNotifier, err := notifier.NewFromDriver(dep.Config.GetString("notifier.driver"), notifier.FactoryOptions{
		Telegram: notifier.TelegramConfig{
			BaseURL:   dep.Config.GetString("notifier.telegram.base_url"),
			BotToken:  dep.Config.GetString("notifier.telegram.bot_token"),
			ChatID:    dep.Config.GetString("notifier.telegram.chat_id"),
			ParseMode: dep.Config.GetString("notifier.telegram.parse_mode"),
			Timeout:   dep.Config.GetSecond("notifier.timeout_seconds"),
		},
		Email: notifier.EmailConfig{
			To:      dep.Config.GetArray("notifier.email.to"),
			Subject: dep.Config.GetString("notifier.email.subject"),
		},
		Mail:       dep.Mail,
		Validator:  dep.Validator,
		Instrument: dep.Instrument,
	})
	if err != nil {
		return err
	}

	repoSlot := slot.New(dep.Store, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.EventID, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoCode:      repoSlot,
		RepoSession:   repoSlot,
		RepoNotifier:  repoNotifier,
		RepoMessaging: repoMsg,
		Idempotency:   dep.Idempotency,
		Validator:     dep.Validator,
		Config:        dep.Config,
		HMAC:          dep.HMAC,
		OTP:           dep.OTP,
		UID:           dep.UID,
		Secret:        dep.Secret,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, dep.Config)
	if dep.Pages != nil {
		dep.Router.SetPageHandler(dep.Pages, inbound.Gate(uc, dep.Config))
	}

	return nil
}

