package router

import (
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/config"
)

// trustedProxies lists the networks allowed to set forwarding headers. With no
// entries the socket peer address is always used.
type trustedProxies []netip.Prefix

func newTrustedProxies(cfg config.Config) trustedProxies {
	if cfg == nil {
		return nil
	}

	var out trustedProxies
	for _, raw := range cfg.GetArray("app.server.trusted_proxies") {
		if !strings.Contains(raw, "/") {
			raw += "/" + hostBits(raw)
		}
		p, err := netip.ParsePrefix(raw)
		if err != nil {
			slog.Warn("ignoring invalid trusted proxy", "value", raw, "error", err)
			continue
		}
		out = append(out, p.Masked())
	}
	return out
}

func hostBits(addr string) string {
	if strings.Contains(addr, ":") {
		return "128"
	}
	return "32"
}

func (tp trustedProxies) trusts(addr netip.Addr) bool {
	for _, p := range tp {
		if p.Contains(addr.Unmap()) {
			return true
		}
	}
	return false
}

func middlewareIP(cfg config.Config) Middleware {
	proxies := newTrustedProxies(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := clientIP(r, proxies); ip != "" {
				r.RemoteAddr = ip
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the peer address without its port, or the forwarded client
// address when the peer is a trusted proxy.
func clientIP(r *http.Request, proxies trustedProxies) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	peer, err := netip.ParseAddr(host)
	if err != nil {
		return ""
	}
	if !proxies.trusts(peer) {
		return peer.Unmap().String()
	}

	forwarded := r.Header.Get("X-Real-IP")
	if forwarded == "" {
		forwarded, _, _ = strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
	}
	if addr, err := netip.ParseAddr(strings.TrimSpace(forwarded)); err == nil {
		return addr.Unmap().String()
	}
	return peer.Unmap().String()
}
