package inbound

import (
	"context"
	"testing"
	"time"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/auth/entity"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/auth/usecase"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/config"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/goerror"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/instrument"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/router"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/uid"
)

type fakeUC struct {
	sendCodeIn  usecase.SendCodeInput
	sendCodeErr error

	verifyIn  usecase.VerifyCodeInput
	verifyOut *usecase.VerifyCodeOutput
	verifyErr error

	// validToken is the only token Authorize, Session and Logout accept.
	validToken   string
	authorizeErr error
	logoutToken  string
}

func (f *fakeUC) SendCode(_ context.Context, in usecase.SendCodeInput) error {
	f.sendCodeIn = in
	return f.sendCodeErr
}

func (f *fakeUC) VerifyCode(_ context.Context, in usecase.VerifyCodeInput) (*usecase.VerifyCodeOutput, error) {
	f.verifyIn = in
	return f.verifyOut, f.verifyErr
}

func (f *fakeUC) Authorize(_ context.Context, in usecase.AuthorizeInput) error {
	if f.authorizeErr != nil {
		return f.authorizeErr
	}
	if in.Token == "" || in.Token != f.validToken {
		return goerror.NewBusinessCause(entity.ErrUnauthenticated, "Authentication required", goerror.CodeUnauthorized)
	}
	return nil
}

func (f *fakeUC) Session(_ context.Context, in usecase.SessionInput) (*usecase.SessionOutput, error) {
	if in.Token == "" || in.Token != f.validToken {
		return nil, goerror.NewBusinessCause(entity.ErrUnauthenticated, "Authentication required", goerror.CodeUnauthorized)
	}
	return &usecase.SessionOutput{Authenticated: true, ExpiresAt: time.UnixMilli(1_800_000_000_000).UTC()}, nil
}

func (f *fakeUC) Logout(_ context.Context, in usecase.LogoutInput) error {
	f.logoutToken = in.Token
	return nil
}

const testConfig = `
modules:
  auth:
    cookie_secure: true
    gate:
      skip_prefixes: "/public,/docs"
`

func newTestConfig(t *testing.T, yaml string) config.Config {
	t.Helper()
	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	return cfg
}

func newTestRouter(t *testing.T, f *fakeUC) *router.Router {
	t.Helper()
	cfg := newTestConfig(t, testConfig)
	r := router.NewRouter(router.Config{Config: cfg, UUID: uid.NewUUID(), Instrument: instrument.NewNoop()})
	RegisterHTTPEndpoint(r, f, cfg)
	return r
}
