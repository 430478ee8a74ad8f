package app

import (
	"os"
	"path/filepath"
)

// defaults apply when a key is missing from the config file. The Telegram
// credentials fall back to the environment variables used by earlier
// deployments.
func defaults() map[string]any {
	return map[string]any{
		"app.tz":                                      "UTC",
		"app.server.http.address":                     ":3000",
		"app.server.http.read_timeout_seconds":        15,
		"app.server.http.read_header_timeout_seconds": 5,
		"app.server.http.write_timeout_seconds":       30,
		"app.server.http.idle_timeout_seconds":        60,
		"app.server.max_goroutine":                    64,
		"app.server.trusted_proxies":                  "127.0.0.1,::1",

		"instrument.enabled":                 false,
		"instrument.service_name":            "clawdbot-dashboard",
		"instrument.trace_sample_ratio":      1.0,
		"instrument.metric_interval_seconds": 30,
		"instrument.log_level":               "info",
		"instrument.log_mask_fields":         "code,cookie,set-cookie,dashboard_auth,authorization,bot_token,password",

		"kvstore.driver":         "file",
		"kvstore.prefix":         "dashboard:auth:",
		"kvstore.file.dir":       filepath.Join(os.TempDir(), "clawdbot-dashboard"),
		"kvstore.postgres.table": "dashboard_auth_slots",

		"messaging.driver": "none",

		"mail.port": 587,

		"notifier.driver":              "telegram",
		"notifier.timeout_seconds":     10,
		"notifier.telegram.base_url":   "https://api.telegram.org",
		"notifier.telegram.parse_mode": "Markdown",
		"notifier.telegram.bot_token":  os.Getenv("TELEGRAM_BOT_TOKEN"),
		"notifier.telegram.chat_id":    os.Getenv("TELEGRAM_CHAT_ID"),

		"modules.auth.enabled":                 true,
		"modules.auth.code_ttl_minutes":        5,
		"modules.auth.session_ttl_days":        7,
		"modules.auth.cookie_name":             "dashboard_auth",
		"modules.auth.cookie_secure":           true,
		"modules.auth.login_path":              "/login",
		"modules.auth.idempotency_ttl_seconds": 300,
		"modules.auth.gate.strict":             true,
	}
}
