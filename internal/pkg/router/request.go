package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/goerror"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/instrument"
)

// maxBodyBytes bounds JSON request bodies. The auth API only accepts a code.
const maxBodyBytes = 4 * 1024

// Request is what a Handler receives.
type Request struct {
	*http.Request
}

// GetHeader returns the trimmed header value.
func (r *Request) GetHeader(key string) string {
	return strings.TrimSpace(r.Header.Get(key))
}

// GetCookie returns the cookie value, or "" when the cookie is absent.
func (r *Request) GetCookie(name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// CorrelationID is the ID the correlation middleware attached to the request.
func (r *Request) CorrelationID() string {
	return instrument.GetCorrelationID(r.Context())
}

// DecodeBody decodes exactly one JSON object into dst. Unknown fields are
// ignored; trailing data and bodies over maxBodyBytes are rejected as invalid
// format.
func (r *Request) DecodeBody(dst any) error {
	if r == nil || r.Body == nil || r.Body == http.NoBody {
		return goerror.NewInvalidFormat()
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes+1))
	if err := dec.Decode(dst); err != nil {
		return goerror.NewInvalidFormat()
	}
	if dec.InputOffset() > maxBodyBytes {
		return goerror.NewInvalidFormat("Request body too large")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return goerror.NewInvalidFormat()
	}
	return nil
}
