package slot

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/auth/entity"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/goerror"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/instrument"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/kvstore"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	keyCode    = "otp"
	keySession = "session"
)

type otpRecord struct {
	ID        int64  `json:"id"`
	Code      string `json:"code"`
	ExpiresAt int64  `json:"expiresAt"`
}

type sessionRecord struct {
	Digest    string `json:"digest"`
	CreatedAt int64  `json:"createdAt"`
	ExpiresAt int64  `json:"expiresAt"`
}

// Slot is the Code Store and the Session Store. Each holds at most one
// record under a fixed key of the underlying kvstore.
type Slot struct {
	store kvstore.Store
	ins   instrument.Instrumentation
}

func New(store kvstore.Store, ins instrument.Instrumentation) *Slot {
	return &Slot{store: store, ins: ins}
}

func (s *Slot) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.outbound.slot").Start(ctx, name)
}

func (s *Slot) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func encodeCode(rec entity.OTPRecord) ([]byte, error) {
	return json.Marshal(otpRecord{
		ID:        rec.ID,
		Code:      rec.Code,
		ExpiresAt: rec.ExpiresAt.UnixMilli(),
	})
}

// SaveCode replaces the outstanding code. The record carries its own expiry,
// so it is stored without a TTL and an expired code stays readable.
func (s *Slot) SaveCode(ctx context.Context, rec entity.OTPRecord) (err error) {
	ctx, span := s.startSpan(ctx, "SaveCode")
	defer func() { s.endSpan(span, err) }()

	data, err := encodeCode(rec)
	if err != nil {
		return err
	}

	err = s.store.Set(ctx, keyCode, data, 0)
	return err
}

func (s *Slot) GetCode(ctx context.Context) (_ *entity.OTPRecord, err error) {
	ctx, span := s.startSpan(ctx, "GetCode")
	defer func() { s.endSpan(span, err) }()

	data, err := s.store.Get(ctx, keyCode)
	if err != nil {
		return nil, err
	}

	var rec otpRecord
	if err = json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}

	return &entity.OTPRecord{
		ID:        rec.ID,
		Code:      rec.Code,
		ExpiresAt: time.UnixMilli(rec.ExpiresAt),
	}, nil
}

// ConsumeCode deletes the outstanding code only if it is still rec.
func (s *Slot) ConsumeCode(ctx context.Context, rec entity.OTPRecord) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "ConsumeCode")
	defer func() { s.endSpan(span, err) }()

	data, err := encodeCode(rec)
	if err != nil {
		return false, err
	}

	ok, err := s.store.CompareAndDelete(ctx, keyCode, data)
	return ok, err
}

func (s *Slot) SaveSession(ctx context.Context, sess entity.Session, ttl time.Duration) (err error) {
	ctx, span := s.startSpan(ctx, "SaveSession")
	defer func() { s.endSpan(span, err) }()

	data, err := json.Marshal(sessionRecord{
		Digest:    sess.Digest,
		CreatedAt: sess.CreatedAt.UnixMilli(),
		ExpiresAt: sess.ExpiresAt.UnixMilli(),
	})
	if err != nil {
		return err
	}

	err = s.store.Set(ctx, keySession, data, ttl)
	return err
}

func (s *Slot) GetSession(ctx context.Context) (_ *entity.Session, err error) {
	ctx, span := s.startSpan(ctx, "GetSession")
	defer func() { s.endSpan(span, err) }()

	data, err := s.store.Get(ctx, keySession)
	if err != nil {
		return nil, err
	}

	var rec sessionRecord
	if err = json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}

	sess := &entity.Session{
		Digest:    rec.Digest,
		CreatedAt: time.UnixMilli(rec.CreatedAt),
	}
	if rec.ExpiresAt > 0 {
		sess.ExpiresAt = time.UnixMilli(rec.ExpiresAt)
	}
	return sess, nil
}

func (s *Slot) DeleteSession(ctx context.Context) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteSession")
	defer func() { s.endSpan(span, err) }()

	err = s.store.Delete(ctx, keySession)
	return err
}
