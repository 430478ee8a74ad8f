package app

import (
	"fmt"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/auth"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/web"
)

// initModules mounts the auth module and the gated dashboard pages on the
// router.
func (a *App) initModules() error {
	if !a.config.GetBool("modules.auth.enabled") {
		return nil
	}

	pages, err := web.New(a.config.GetString("app.web.dir"))
	if err != nil {
		return fmt.Errorf("dashboard pages: %w", err)
	}

	return auth.New(auth.Dependency{
		Store:       a.kv,
		Goroutine:   a.goroutine,
		Router:      a.router,
		Messaging:   a.messaging,
		Config:      a.config,
		Instrument:  a.ins,
		UID:         a.uid,
		EventID:     a.eventID,
		Secret:      a.secret,
		HMAC:        a.hmac,
		Clock:       a.clock,
		OTP:         a.otp,
		Validator:   a.validator,
		Idempotency: a.idemp,
		Mail:        a.mail,
		Pages:       pages,
	})
}
