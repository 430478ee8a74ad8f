package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/auth/entity"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/goerror"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/idempotency"
)

type SendCodeInput struct {
	IdempotencyKey string `validate:"omitempty,max=128,printascii"`
}

func (s *Usecase) SendCode(ctx context.Context, in SendCodeInput) error {
	ctx, span := s.startSpan(ctx, "SendCode")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if in.IdempotencyKey == "" || s.idemp == nil {
		return s.issueCode(ctx)
	}

	var issueErr error
	err := s.idemp.Exec(ctx, "auth:send-code:"+in.IdempotencyKey, func(ctx context.Context) error {
		issueErr = s.issueCode(ctx)
		return issueErr
	}, idempotency.WithStateTTL(s.idempotencyTTL()))
	if issueErr != nil {
		return issueErr
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, idempotency.ErrAlreadyCompleted):
		slog.InfoContext(ctx, "code already sent for idempotency key")
		return nil
	case errors.Is(err, idempotency.ErrAlreadyInProgress):
		return goerror.NewBusiness("Code request already in progress", goerror.CodeConflict)
	case errors.Is(err, idempotency.ErrAlreadyFailed):
		return goerror.NewBusiness("Previous code request with this key failed. Retry with a new key.", goerror.CodeConflict)
	default:
		slog.ErrorContext(ctx, "failed to run idempotent send code", "error", err)
		return goerror.NewServer(err)
	}
}

// issueCode stores a fresh code and then delivers it. The stored code is
// kept even when delivery fails.
func (s *Usecase) issueCode(ctx context.Context) error {
	code, err := s.otp.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access code", "error", err)
		return goerror.NewServer(err)
	}

	ttl := s.codeTTL()
	now := s.clock.Now()
	rec := entity.OTPRecord{
		ID:        s.uid.Generate(),
		Code:      code,
		ExpiresAt: now.Add(ttl),
	}

	if err := s.repoCode.SaveCode(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "failed to repo save code", "issuance_id", rec.ID, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoNotifier.Notify(ctx, entity.Notification{IssuanceID: rec.ID, Code: code, TTL: ttl}); err != nil {
		slog.ErrorContext(ctx, "failed to notify access code", "issuance_id", rec.ID, "error", err)
		return goerror.NewServerCause(fmt.Errorf("%w: %w", entity.ErrNotify, err), msgNotifyFailed)
	}

	slog.InfoContext(ctx, "access code issued", "issuance_id", rec.ID, "expires_at", rec.ExpiresAt)

	s.publishAsync(ctx, "code issued", func(ctx context.Context) error {
		return s.repoMessaging.PublishCodeIssued(ctx, CodeIssuedEvent{
			IssuanceID: rec.ID,
			IssuedAt:   now,
			ExpiresAt:  rec.ExpiresAt,
		})
	})

	return nil
}
