package inbound

import (
	"net/http"
	"time"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/config"
)

const (
	defaultCookieName = "dashboard_auth"
	defaultLoginPath  = "/login"
)

type cookieSettings struct {
	name   string
	secure bool
}

func newCookieSettings(cfg config.Config) cookieSettings {
	name := cfg.GetString("modules.auth.cookie_name")
	if name == "" {
		name = defaultCookieName
	}
	return cookieSettings{name: name, secure: cfg.GetBool("modules.auth.cookie_secure")}
}

func (c cookieSettings) session(token string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     c.name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (c cookieSettings) expired() *http.Cookie {
	return &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func loginPath(cfg config.Config) string {
	if p := cfg.GetString("modules.auth.login_path"); p != "" {
		return p
	}
	return defaultLoginPath
}
