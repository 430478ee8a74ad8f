package router

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/config"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/instrument"
)

func TestRouter_MaintenancePrefixKeepsHealth(t *testing.T) {

	// Arrange
	r := newTestRouter(t, `
app:
  maintenance:
    endpoints: "/api/auth/*"
`)
	r.POST("/api/auth/verify", func(*Request) (any, error) { return nil, nil })
	r.GET("/health", func(*Request) (any, error) { return nil, nil })

	// Act
	blocked := serve(r, http.MethodPost, "/api/auth/verify")
	health := serve(r, http.MethodGet, "/health")

	// Assert
	if blocked.Code != http.StatusServiceUnavailable || blocked.Header().Get("Retry-After") == "" {
		t.Fatalf("verify: status = %d, retry-after = %q", blocked.Code, blocked.Header().Get("Retry-After"))
	}
	if health.Code != http.StatusOK {
		t.Fatalf("health status = %d", health.Code)
	}
}

func TestMiddlewareCorrelationID(t *testing.T) {

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{name: "correlation header kept", headers: map[string]string{HeaderCorrelationID: "abc-123"}, want: "abc-123"},
		{name: "request id fallback", headers: map[string]string{HeaderRequestID: "req.9"}, want: "req.9"},
		{name: "unsafe value replaced", headers: map[string]string{HeaderCorrelationID: "bad value\r\nx: y"}, want: "generated"},
		{name: "missing generated", want: "generated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {

			// Arrange
			var seen string
			h := middlewareCorrelationID(staticID("generated"))(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				seen = instrument.GetCorrelationID(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()

			// Act
			h.ServeHTTP(rec, req)

			// Assert
			if seen != tt.want || rec.Header().Get(HeaderCorrelationID) != tt.want {
				t.Fatalf("context cid = %q, header = %q, want %q", seen, rec.Header().Get(HeaderCorrelationID), tt.want)
			}
		})
	}
}

type staticID string

func (s staticID) Generate() string { return string(s) }

func TestClientIP(t *testing.T) {

	cfg, err := config.NewViperFromBytes("yaml", []byte(`
app:
  server:
    trusted_proxies: "10.0.0.0/8,::1"
`))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	proxies := newTrustedProxies(cfg)

	tests := []struct {
		name   string
		remote string
		xff    string
		xrip   string
		want   string
	}{
		{name: "untrusted peer ignores headers", remote: "203.0.113.7:5000", xff: "1.2.3.4", want: "203.0.113.7"},
		{name: "trusted peer uses first forwarded", remote: "10.1.2.3:5000", xff: "198.51.100.1, 10.1.2.3", want: "198.51.100.1"},
		{name: "real ip preferred", remote: "10.1.2.3:5000", xff: "198.51.100.1", xrip: "198.51.100.2", want: "198.51.100.2"},
		{name: "trusted ipv6 loopback", remote: "[::1]:5000", xff: "2001:db8::1", want: "2001:db8::1"},
		{name: "garbage header falls back to peer", remote: "10.1.2.3:5000", xff: "not-an-ip", want: "10.1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {

			// Arrange
			req := httptest.NewRequestWithContext(context.Background(), http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xrip != "" {
				req.Header.Set("X-Real-IP", tt.xrip)
			}

			// Act
			got := clientIP(req, proxies)

			// Assert
			if got != tt.want {
				t.Fatalf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResponseLevel(t *testing.T) {

	tests := []struct {
		route  string
		status int
		want   slog.Level
	}{
		{route: "/api/auth/verify", status: http.StatusOK, want: slog.LevelInfo},
		{route: "/api/auth/verify", status: http.StatusBadRequest, want: slog.LevelWarn},
		{route: "/api/auth/send-code", status: http.StatusInternalServerError, want: slog.LevelError},
		{route: "/health", status: http.StatusOK, want: slog.LevelDebug},
		{route: "/health", status: http.StatusServiceUnavailable, want: slog.LevelError},
	}

	for _, tt := range tests {
		if got := responseLevel(tt.route, tt.status); got != tt.want {
			t.Fatalf("responseLevel(%s, %d) = %v, want %v", tt.route, tt.status, got, tt.want)
		}
	}
}

func TestMaskHeaders_CookiesAlwaysHidden(t *testing.T) {

	// Arrange
	mask := newMasker(nil)
	h := http.Header{}
	h.Set("Cookie", "dashboard_auth=secret")
	h.Set("Content-Type", "application/json")

	// Act
	masked := mask.headers(h)

	// Assert
	if masked.Get("Cookie") != "***" {
		t.Fatalf("cookie header = %q", masked.Get("Cookie"))
	}
	if masked.Get("Content-Type") != "application/json" {
		t.Fatalf("content type was masked")
	}
	if h.Get("Cookie") != "dashboard_auth=secret" {
		t.Fatal("original header must not change")
	}
}

func TestMasker_Body(t *testing.T) {

	// Arrange
	mask := masker{"code": {}}

	// Act
	jsonBody := mask.body("application/json", []byte(`{"code":"123456","nested":[{"CODE":"1"}],"keep":1}`))
	formBody := mask.body("application/x-www-form-urlencoded", []byte("code=123456&next=%2F"))
	binary := mask.body("application/octet-stream", []byte{0xff, 0xfe, 0x00})

	// Assert
	m, ok := jsonBody.(map[string]any)
	if !ok || m["code"] != maskedValue || m["keep"] != float64(1) {
		t.Fatalf("json body = %#v", jsonBody)
	}
	nested := m["nested"].([]any)[0].(map[string]any)
	if nested["CODE"] != maskedValue {
		t.Fatalf("nested key not masked: %#v", nested)
	}
	f, ok := formBody.(map[string]any)
	if !ok || f["code"] != maskedValue || f["next"] != "/" {
		t.Fatalf("form body = %#v", formBody)
	}
	if binary != "<binary body omitted>" {
		t.Fatalf("binary body = %#v", binary)
	}
}

func TestMasker_CodeHiddenWhenOperatorListOmitsIt(t *testing.T) {

	// Arrange
	cfg, err := config.NewViperFromBytes("yaml", []byte(`
instrument:
  log_mask_fields: "password,email"
modules:
  auth:
    cookie_name: ops_session
`))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	mask := newMasker(cfg)

	// Act
	body := mask.body("application/json", []byte(`{"code":"482913","email":"a@b.c","dashboard_auth":"s","ops_session":"t"}`))

	// Assert
	m, ok := body.(map[string]any)
	if !ok {
		t.Fatalf("body = %#v", body)
	}
	for _, k := range []string{"code", "email", "dashboard_auth", "ops_session"} {
		if m[k] != maskedValue {
			t.Fatalf("%s = %#v, want masked", k, m[k])
		}
	}
}

func TestResponseCapture_TruncatesLoggedBody(t *testing.T) {

	// Arrange
	rec := httptest.NewRecorder()
	c := newResponseCapture(rec)
	payload := make([]byte, maxLoggedBodyBytes+10)
	for i := range payload {
		payload[i] = 'a'
	}

	// Act
	n, err := c.Write(payload)

	// Assert
	if err != nil || n != len(payload) || rec.Body.Len() != len(payload) {
		t.Fatalf("write n=%d err=%v client got %d bytes", n, err, rec.Body.Len())
	}
	if c.statusCode() != http.StatusOK || !c.body.truncated || c.body.Len() != maxLoggedBodyBytes {
		t.Fatalf("status=%d truncated=%v kept=%d", c.statusCode(), c.body.truncated, c.body.Len())
	}
	if _, ok := c.loggedBody(masker{}).(map[string]any); !ok {
		t.Fatal("truncated body must be flagged")
	}
}
