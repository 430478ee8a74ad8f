package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/auth/entity"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/goerror"
)

type VerifyCodeInput struct {
	Code string
}

type VerifyCodeOutput struct {
	Token  string
	MaxAge time.Duration
}

func (s *Usecase) VerifyCode(ctx context.Context, in VerifyCodeInput) (*VerifyCodeOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyCode")
	defer span.End()

	if utf8.RuneCountInString(in.Code) != entity.CodeLength {
		return nil, goerror.NewBusinessCause(entity.ErrInvalidFormat, msgInvalidFormat, goerror.CodeInvalidFormat)
	}

	rec, err := s.repoCode.GetCode(ctx)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusinessCause(entity.ErrNoCodeRequested, msgNoCodeRequested, goerror.CodeBadRequest)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get code", "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	if rec.Expired(now) {
		slog.WarnContext(ctx, "access code expired", "issuance_id", rec.ID)
		return nil, goerror.NewBusinessCause(entity.ErrCodeExpired, msgCodeExpired, goerror.CodeBadRequest)
	}

	if !rec.Matches(in.Code) {
		slog.WarnContext(ctx, "access code mismatch", "issuance_id", rec.ID)
		return nil, goerror.NewBusinessCause(entity.ErrIncorrectCode, msgIncorrectCode, goerror.CodeBadRequest)
	}

	token := s.secret.Generate()
	digest, err := s.hmac.Hash(token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash session secret", "error", err)
		return nil, goerror.NewServer(err)
	}

	ttl := s.SessionTTL()
	if err := s.repoSession.SaveSession(ctx, entity.Session{
		Digest:    string(digest),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, ttl); err != nil {
		slog.ErrorContext(ctx, "failed to repo save session", "issuance_id", rec.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	// Only the record that was verified is removed, so a code issued in the
	// meantime survives. Failures here never fail the login.
	consumed, err := s.repoCode.ConsumeCode(ctx, *rec)
	if err != nil {
		slog.WarnContext(ctx, "failed to repo consume code", "issuance_id", rec.ID, "error", err)
	} else if !consumed {
		slog.WarnContext(ctx, "access code replaced before it was consumed", "issuance_id", rec.ID)
	}

	slog.InfoContext(ctx, "dashboard session created", "issuance_id", rec.ID)

	s.publishAsync(ctx, "session created", func(ctx context.Context) error {
		return s.repoMessaging.PublishSessionCreated(ctx, SessionCreatedEvent{
			IssuanceID: rec.ID,
			CreatedAt:  now,
			ExpiresAt:  now.Add(ttl),
		})
	})

	return &VerifyCodeOutput{Token: token, MaxAge: ttl}, nil
}
