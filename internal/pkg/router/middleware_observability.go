package router

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/config"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/instrument"
	"github.com/julienschmidt/httprouter"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	maxLoggedBodyBytes = 16 * 1024
	maskedValue        = "***"
)

// alwaysMasked carry the one-time code, the session cookie or credentials and
// are hidden whatever instrument.log_mask_fields says.
var alwaysMasked = []string{"code", "dashboard_auth", "cookie", "set-cookie", "authorization"}

// quietRoutes are probed constantly and only logged at debug level.
var quietRoutes = map[string]struct{}{"/health": {}}

// masker hides header names, JSON keys and form fields, compared lowercase.
type masker map[string]struct{}

func newMasker(cfg config.Config) masker {
	m := make(masker, len(alwaysMasked))
	for _, k := range alwaysMasked {
		m[k] = struct{}{}
	}
	if cfg == nil {
		return m
	}
	extra := append(cfg.GetArray("instrument.log_mask_fields"), cfg.GetString("modules.auth.cookie_name"))
	for _, k := range extra {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			m[k] = struct{}{}
		}
	}
	return m
}

func (m masker) hides(key string) bool {
	_, ok := m[strings.ToLower(key)]
	return ok
}

// headers returns a masked copy; h is left untouched.
func (m masker) headers(h http.Header) http.Header {
	out := h.Clone()
	for k := range out {
		if m.hides(k) {
			out[k] = []string{maskedValue}
		}
	}
	return out
}

func (m masker) value(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if m.hides(k) {
				out[k] = maskedValue
				continue
			}
			out[k] = m.value(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = m.value(inner)
		}
		return out
	default:
		return v
	}
}

// body renders a captured payload for the log line: masked JSON, masked form
// fields, plain text or a placeholder for binary content.
func (m masker) body(contentType string, raw []byte) any {
	if len(raw) == 0 {
		return nil
	}

	var decoded any
	if json.Unmarshal(raw, &decoded) == nil {
		return m.value(decoded)
	}

	if strings.HasPrefix(strings.ToLower(contentType), "application/x-www-form-urlencoded") {
		if form, err := url.ParseQuery(string(raw)); err == nil {
			out := make(map[string]any, len(form))
			for k, vs := range form {
				switch {
				case m.hides(k):
					out[k] = maskedValue
				case len(vs) == 1:
					out[k] = vs[0]
				default:
					out[k] = vs
				}
			}
			return out
		}
	}

	if !utf8.Valid(raw) {
		return "<binary body omitted>"
	}
	return string(raw)
}

// cappedBuffer keeps the first limit bytes written to it.
type cappedBuffer struct {
	bytes.Buffer
	limit     int
	truncated bool
}

func (b *cappedBuffer) keep(p []byte) {
	room := b.limit - b.Len()
	if len(p) > room {
		p = p[:max(room, 0)]
		b.truncated = true
	}
	b.Write(p)
}

// responseCapture records what the handler wrote. Unwrap lets
// http.ResponseController reach the underlying writer.
type responseCapture struct {
	http.ResponseWriter
	status  int
	written int
	body    cappedBuffer
	err     error
}

func newResponseCapture(w http.ResponseWriter) *responseCapture {
	return &responseCapture{ResponseWriter: w, body: cappedBuffer{limit: maxLoggedBodyBytes}}
}

func (c *responseCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(p []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.keep(p)
	n, err := c.ResponseWriter.Write(p)
	c.written += n
	return n, err
}

// SetError lets the router attach the handler error to the span.
func (c *responseCapture) SetError(err error) { c.err = err }

func (c *responseCapture) Flush() {
	if f, ok := c.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (c *responseCapture) Unwrap() http.ResponseWriter { return c.ResponseWriter }

func (c *responseCapture) statusCode() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}

func (c *responseCapture) loggedBody(m masker) any {
	body := m.body(c.Header().Get("Content-Type"), c.body.Bytes())
	if c.body.truncated {
		return map[string]any{"body": body, "truncated": true}
	}
	return body
}

// peekBody reads up to maxLoggedBodyBytes of the request body and puts the
// bytes back so the handler still sees the full stream.
func peekBody(r *http.Request) []byte {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	//nolint:errcheck // best effort for logging only
	head, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBodyBytes))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}
	return head
}

func matchedRoutePath(r *http.Request) string {
	if pattern := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath(); pattern != "" {
		return pattern
	}
	return r.URL.Path
}

// responseLevel picks the log level of the "response sent" line.
func responseLevel(route string, status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	}
	if _, quiet := quietRoutes[route]; quiet {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

type httpMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	active   metric.Int64UpDownCounter
}

// newHTTPMetrics leaves an instrument nil when the meter refuses it.
func newHTTPMetrics(meter metric.Meter) httpMetrics {
	var (
		m   httpMetrics
		err error
	)
	if m.requests, err = meter.Int64Counter("http.server.requests",
		metric.WithDescription("Number of HTTP requests received")); err != nil {
		slog.Error("failed to create http request counter", "error", err)
	}
	if m.duration, err = meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request duration"), metric.WithUnit("ms")); err != nil {
		slog.Error("failed to create http duration histogram", "error", err)
	}
	if m.active, err = meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("HTTP requests in flight")); err != nil {
		slog.Error("failed to create http active request counter", "error", err)
	}
	return m
}

func middlewareObservability(cfg config.Config, ins instrument.Instrumentation) Middleware {
	mask := newMasker(cfg)
	tracer := ins.Tracer("http.server")
	metrics := newHTTPMetrics(ins.Meter("http.server"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			route := matchedRoutePath(r)
			routeAttrs := []attribute.KeyValue{
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.HTTPRouteKey.String(route),
			}

			ctx, span := tracer.Start(r.Context(), r.Method+" "+route,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(routeAttrs...),
			)
			defer span.End()

			if metrics.active != nil {
				metrics.active.Add(ctx, 1, metric.WithAttributes(routeAttrs...))
				defer metrics.active.Add(ctx, -1, metric.WithAttributes(routeAttrs...))
			}

			level := slog.LevelInfo
			if _, quiet := quietRoutes[route]; quiet {
				level = slog.LevelDebug
			}
			slog.Log(ctx, level, "request received",
				"method", r.Method,
				"path", route,
				"uri", r.RequestURI,
				"remote_ip", r.RemoteAddr,
				"headers", mask.headers(r.Header),
				"body", mask.body(r.Header.Get("Content-Type"), peekBody(r)),
			)

			rec := newResponseCapture(w)
			next.ServeHTTP(rec, r.WithContext(ctx))

			status := rec.statusCode()
			elapsed := time.Since(start)
			attrs := append(routeAttrs, semconv.HTTPResponseStatusCodeKey.Int(status))

			span.SetAttributes(attrs...)
			span.SetAttributes(
				semconv.NetworkProtocolVersionKey.String(r.Proto),
				semconv.ServerAddressKey.String(r.Host),
				semconv.UserAgentOriginalKey.String(r.UserAgent()),
				attribute.Int("http.response_content_length", rec.written),
				attribute.String("http.correlation_id", instrument.GetCorrelationID(ctx)),
			)
			if rec.err != nil {
				span.RecordError(rec.err)
			}
			switch {
			case status < http.StatusInternalServerError:
				span.SetStatus(codes.Ok, "")
			case rec.err != nil:
				span.SetStatus(codes.Error, rec.err.Error())
			default:
				span.SetStatus(codes.Error, http.StatusText(status))
			}

			if metrics.requests != nil {
				metrics.requests.Add(ctx, 1, metric.WithAttributes(attrs...))
			}
			if metrics.duration != nil {
				metrics.duration.Record(ctx, float64(elapsed.Microseconds())/1000, metric.WithAttributes(attrs...))
			}

			slog.Log(ctx, responseLevel(route, status), "response sent",
				"method", r.Method,
				"path", route,
				"status", status,
				"bytes", rec.written,
				"latency_ms", elapsed.Milliseconds(),
				"body", rec.loggedBody(mask),
			)
		})
	}
}
