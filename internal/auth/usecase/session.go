package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/auth/entity"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/goerror"
)

type AuthorizeInput struct {
	Token string
}

// Authorize decides whether a page request may pass the gate. With
// modules.auth.gate.strict disabled any non-empty token is accepted.
func (s *Usecase) Authorize(ctx context.Context, in AuthorizeInput) error {
	ctx, span := s.startSpan(ctx, "Authorize")
	defer span.End()

	if in.Token == "" {
		return goerror.NewBusinessCause(entity.ErrUnauthenticated, msgUnauthenticated, goerror.CodeUnauthorized)
	}

	if !s.cfg.GetBool("modules.auth.gate.strict") {
		return nil
	}

	ok, err := s.validSession(ctx, in.Token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check session", "error", err)
		return goerror.NewServer(err)
	}
	if !ok {
		return goerror.NewBusinessCause(entity.ErrUnauthenticated, msgUnauthenticated, goerror.CodeUnauthorized)
	}

	return nil
}

type SessionInput struct {
	Token string
}

type SessionOutput struct {
	Authenticated bool
	ExpiresAt     time.Time
}

// Session always compares the token with the stored session.
func (s *Usecase) Session(ctx context.Context, in SessionInput) (*SessionOutput, error) {
	ctx, span := s.startSpan(ctx, "Session")
	defer span.End()

	if in.Token == "" {
		return nil, goerror.NewBusinessCause(entity.ErrUnauthenticated, msgUnauthenticated, goerror.CodeUnauthorized)
	}

	sess, err := s.repoSession.GetSession(ctx)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusinessCause(entity.ErrUnauthenticated, msgUnauthenticated, goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get session", "error", err)
		return nil, goerror.NewServer(err)
	}

	if sess.Expired(s.clock.Now()) || !s.hmac.Verify(sess.Digest, in.Token) {
		return nil, goerror.NewBusinessCause(entity.ErrUnauthenticated, msgUnauthenticated, goerror.CodeUnauthorized)
	}

	return &SessionOutput{Authenticated: true, ExpiresAt: sess.ExpiresAt}, nil
}

func (s *Usecase) validSession(ctx context.Context, token string) (bool, error) {
	sess, err := s.repoSession.GetSession(ctx)
	if errors.Is(err, goerror.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if sess.Expired(s.clock.Now()) {
		return false, nil
	}

	return s.hmac.Verify(sess.Digest, token), nil
}
