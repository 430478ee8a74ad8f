package inbound

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/auth/entity"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/auth/usecase"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/config"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/router"
)

var defaultSkipPrefixes = []string{"/api/", "/_next", "/favicon", "/static"}

// Gate redirects page requests without a valid session cookie to the login
// page. API routes, the login page itself and static assets pass through.
func Gate(auth uc, cfg config.Config) router.Middleware {
	login := loginPath(cfg)
	cookie := newCookieSettings(cfg)
	skip := append(append([]string{}, defaultSkipPrefixes...), cfg.GetArray("modules.auth.gate.skip_prefixes")...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if gateSkips(r.URL.Path, login, skip) {
				next.ServeHTTP(w, r)
				return
			}

			err := auth.Authorize(r.Context(), usecase.AuthorizeInput{Token: (&router.Request{Request: r}).GetCookie(cookie.name)})
			if err == nil {
				next.ServeHTTP(w, r)
				return
			}

			if !errors.Is(err, entity.ErrUnauthenticated) {
				slog.ErrorContext(r.Context(), "gate failed to authorize request", "error", err)
			}
			http.Redirect(w, r, login, http.StatusTemporaryRedirect)
		})
	}
}

func gateSkips(path, login string, prefixes []string) bool {
	if path == login {
		return true
	}
	for _, p := range prefixes {
		p = strings.TrimSpace(p)
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
