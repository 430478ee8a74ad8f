package usecase

import (
	"context"
	"log/slog"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/goerror"
)

type LogoutInput struct {
	Token string
}

// Logout revokes the stored session when token belongs to it. It succeeds
// for unknown tokens too, so clients can always clear their cookie.
func (s *Usecase) Logout(ctx context.Context, in LogoutInput) error {
	ctx, span := s.startSpan(ctx, "Logout")
	defer span.End()

	if in.Token == "" {
		return nil
	}

	ok, err := s.validSession(ctx, in.Token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check session", "error", err)
		return goerror.NewServer(err)
	}
	if !ok {
		return nil
	}

	if err := s.repoSession.DeleteSession(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to repo delete session", "error", err)
		return goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "dashboard session revoked")

	revokedAt := s.clock.Now()
	s.publishAsync(ctx, "session revoked", func(ctx context.Context) error {
		return s.repoMessaging.PublishSessionRevoked(ctx, SessionRevokedEvent{RevokedAt: revokedAt})
	})

	return nil
}
