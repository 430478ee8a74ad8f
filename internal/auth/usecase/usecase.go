package usecase

import (
	"context"
	"time"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/auth/entity"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/clock"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/config"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/goroutine"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/hash"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/idempotency"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/instrument"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/otp"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/uid"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultCodeTTL        = 5 * time.Minute
	defaultSessionTTL     = 7 * 24 * time.Hour
	defaultIdempotencyTTL = 5 * time.Minute
)

const (
	msgInvalidFormat   = "Invalid code format"
	msgNoCodeRequested = "No code requested. Please request a new code."
	msgCodeExpired     = "Code expired. Please request a new code."
	msgIncorrectCode   = "Incorrect code"
	msgNotifyFailed    = "Failed to send access code"
	msgUnauthenticated = "Authentication required"
)

type CodeIssuedEvent struct {
	IssuanceID int64
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

type SessionCreatedEvent struct {
	IssuanceID int64
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

type SessionRevokedEvent struct {
	RevokedAt time.Time
}

type repoMessaging interface {
	PublishCodeIssued(ctx context.Context, msg CodeIssuedEvent) error
	PublishSessionCreated(ctx context.Context, msg SessionCreatedEvent) error
	PublishSessionRevoked(ctx context.Context, msg SessionRevokedEvent) error
}

// repoCode is the single-slot Code Store. GetCode returns goerror.ErrNotFound
// when no code is outstanding.
type repoCode interface {
	SaveCode(ctx context.Context, rec entity.OTPRecord) error
	GetCode(ctx context.Context) (*entity.OTPRecord, error)
	ConsumeCode(ctx context.Context, rec entity.OTPRecord) (bool, error)
}

// repoSession is the single-slot Session Store.
type repoSession interface {
	SaveSession(ctx context.Context, sess entity.Session, ttl time.Duration) error
	GetSession(ctx context.Context) (*entity.Session, error)
	DeleteSession(ctx context.Context) error
}

type repoNotifier interface {
	Notify(ctx context.Context, n entity.Notification) error
}

type Usecase struct {
	repoCode      repoCode
	repoSession   repoSession
	repoNotifier  repoNotifier
	repoMessaging repoMessaging
	idemp         idempotency.Idempotency
	validator     validator.Validator
	cfg           config.Config
	hmac          hash.Hash
	otp           otp.OTP
	uid           uid.NumberID
	secret        uid.StringID
	clock         clock.Clocker
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager
}

type Dependency struct {
	RepoCode      repoCode
	RepoSession   repoSession
	RepoNotifier  repoNotifier
	RepoMessaging repoMessaging
	// Idempotency is optional; without it Idempotency-Key headers are ignored.
	Idempotency idempotency.Idempotency
	Validator   validator.Validator
	Config      config.Config
	HMAC        hash.Hash
	OTP         otp.OTP
	UID         uid.NumberID
	Secret      uid.StringID
	Clock       clock.Clocker
	Instrument  instrument.Instrumentation
	Goroutine   *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoCode:      dep.RepoCode,
		repoSession:   dep.RepoSession,
		repoNotifier:  dep.RepoNotifier,
		repoMessaging: dep.RepoMessaging,
		idemp:         dep.Idempotency,
		validator:     dep.Validator,
		cfg:           dep.Config,
		hmac:          dep.HMAC,
		otp:           dep.OTP,
		uid:           dep.UID,
		secret:        dep.Secret,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.usecase").Start(ctx, name)
}

func (s *Usecase) codeTTL() time.Duration {
	if d := s.cfg.GetMinute("modules.auth.code_ttl_minutes"); d > 0 {
		return d
	}
	return defaultCodeTTL
}

// SessionTTL is the lifetime of a session and of its cookie.
func (s *Usecase) SessionTTL() time.Duration {
	if d := s.cfg.GetDay("modules.auth.session_ttl_days"); d > 0 {
		return d
	}
	return defaultSessionTTL
}

func (s *Usecase) idempotencyTTL() time.Duration {
	if d := s.cfg.GetSecond("modules.auth.idempotency_ttl_seconds"); d > 0 {
		return d
	}
	return defaultIdempotencyTTL
}

// publishAsync runs fn outside the request lifetime. The goroutine manager
// logs failures; they never reach the caller.
func (s *Usecase) publishAsync(ctx context.Context, name string, fn func(ctx context.Context) error) {
	_ = s.goroutine.Go(context.WithoutCancel(ctx), "publish "+name, fn)
}
