package router

import (
	"net/http"
	"strings"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/config"
)

const msgMaintenance = "Dashboard is under maintenance"

// maintenanceRules holds exact routes and "/prefix/*" patterns read from
// app.maintenance.endpoints.
type maintenanceRules struct {
	exact    map[string]struct{}
	prefixes []string
}

func newMaintenanceRules(cfg config.Config) maintenanceRules {
	rules := maintenanceRules{exact: make(map[string]struct{})}
	if cfg == nil {
		return rules
	}

	for _, endpoint := range cfg.GetArray("app.maintenance.endpoints") {
		if prefix, ok := strings.CutSuffix(endpoint, "*"); ok {
			rules.prefixes = append(rules.prefixes, prefix)
			continue
		}
		rules.exact[endpoint] = struct{}{}
	}
	return rules
}

func (m maintenanceRules) blocked(route string) bool {
	if _, ok := m.exact[route]; ok {
		return true
	}
	for _, p := range m.prefixes {
		if strings.HasPrefix(route, p) {
			return true
		}
	}
	return false
}

func middlewareMaintenance(cfg config.Config) Middleware {
	rules := newMaintenanceRules(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// health stays up so orchestrators do not restart a paused instance
			if r.URL.Path != "/health" && rules.blocked(matchedRoutePath(r)) {
				w.Header().Set("Retry-After", "120")
				writeJSON(w, errorResponse{Error: msgMaintenance}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
