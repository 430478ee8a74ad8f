package inbound

import (
	"context"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/auth/usecase"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/config"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/router"
)

type uc interface {
	SendCode(ctx context.Context, in usecase.SendCodeInput) error
	VerifyCode(ctx context.Context, in usecase.VerifyCodeInput) (*usecase.VerifyCodeOutput, error)

	Authorize(ctx context.Context, in usecase.AuthorizeInput) error
	Session(ctx context.Context, in usecase.SessionInput) (*usecase.SessionOutput, error)
	Logout(ctx context.Context, in usecase.LogoutInput) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc, cfg config.Config) {
	end := &HTTPEndpoint{uc: uc, cookie: newCookieSettings(cfg)}

	r.POST("/api/auth/send-code", end.SendCode)
	r.POST("/api/auth/verify", end.Verify)
	r.GET("/api/auth/session", end.Session)
	r.POST("/api/auth/logout", end.Logout)

	r.GET("/health", end.Health)
}
