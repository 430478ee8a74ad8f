package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/auth/entity"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/clock"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/config"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/goerror"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/goroutine"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/hash"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/idempotency"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/instrument"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/otp"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/uid"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/validator"
)

var errStoreDown = errors.New("store down")

type fakeCodeRepo struct {
	mu       sync.Mutex
	rec      *entity.OTPRecord
	gets     int
	saveErr  error
	getErr   error
	consumed int
}

func (f *fakeCodeRepo) SaveCode(_ context.Context, rec entity.OTPRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.rec = &rec
	return nil
}

func (f *fakeCodeRepo) GetCode(context.Context) (*entity.OTPRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.rec == nil {
		return nil, goerror.ErrNotFound
	}
	rec := *f.rec
	return &rec, nil
}

func (f *fakeCodeRepo) ConsumeCode(_ context.Context, rec entity.OTPRecord) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rec == nil || *f.rec != rec {
		return false, nil
	}
	f.rec = nil
	f.consumed++
	return true, nil
}

func (f *fakeCodeRepo) current() *entity.OTPRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rec == nil {
		return nil
	}
	rec := *f.rec
	return &rec
}

type fakeSessionRepo struct {
	mu      sync.Mutex
	sess    *entity.Session
	ttl     time.Duration
	saveErr error
}

func (f *fakeSessionRepo) SaveSession(_ context.Context, sess entity.Session, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.sess = &sess
	f.ttl = ttl
	return nil
}

func (f *fakeSessionRepo) GetSession(context.Context) (*entity.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sess == nil {
		return nil, goerror.ErrNotFound
	}
	sess := *f.sess
	return &sess, nil
}

func (f *fakeSessionRepo) DeleteSession(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sess = nil
	return nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []entity.Notification
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, n entity.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
	return f.err
}

type fakeMessaging struct {
	mu      sync.Mutex
	issued  []CodeIssuedEvent
	created []SessionCreatedEvent
	revoked []SessionRevokedEvent
}

func (f *fakeMessaging) PublishCodeIssued(_ context.Context, msg CodeIssuedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issued = append(f.issued, msg)
	return nil
}

func (f *fakeMessaging) PublishSessionCreated(_ context.Context, msg SessionCreatedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, msg)
	return nil
}

func (f *fakeMessaging) PublishSessionRevoked(_ context.Context, msg SessionRevokedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, msg)
	return nil
}

// seqOTP hands out codes in order and repeats the last one.
type seqOTP struct {
	mu    sync.Mutex
	codes []string
	i     int
}

func (s *seqOTP) Generate() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.codes[s.i]
	if s.i < len(s.codes)-1 {
		s.i++
	}
	return c, nil
}

type seqID struct {
	mu sync.Mutex
	n  int64
}

func (s *seqID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.n
}

// fakeIdempotency remembers the outcome of each key like the Redis guard.
type fakeIdempotency struct {
	mu   sync.Mutex
	done map[string]error
}

func newFakeIdempotency() *fakeIdempotency {
	return &fakeIdempotency{done: map[string]error{}}
}

func (f *fakeIdempotency) Exec(ctx context.Context, key string, fn func(context.Context) error, _ ...idempotency.Option) error {
	f.mu.Lock()
	prev, seen := f.done[key]
	f.mu.Unlock()
	if seen {
		return prev
	}

	err := fn(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.done[key] = idempotency.ErrAlreadyCompleted
	if err != nil {
		f.done[key] = idempotency.ErrAlreadyFailed
	}
	return err
}

type testEnv struct {
	uc        *Usecase
	clock     *clock.Fixed
	codes     *fakeCodeRepo
	sessions  *fakeSessionRepo
	notifier  *fakeNotifier
	messaging *fakeMessaging
	goroutine *goroutine.Manager
	hmac      hash.Hash
}

type envOption func(*Dependency)

func withOTP(gen otp.OTP) envOption {
	return func(d *Dependency) { d.OTP = gen }
}

func withIdempotency(i idempotency.Idempotency) envOption {
	return func(d *Dependency) { d.Idempotency = i }
}

func newTestEnv(t *testing.T, yaml string, opts ...envOption) *testEnv {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	val, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	secret, err := uid.NewSecret(32)
	if err != nil {
		t.Fatalf("secret: %v", err)
	}

	env := &testEnv{
		clock:     clock.NewFixed(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		codes:     &fakeCodeRepo{},
		sessions:  &fakeSessionRepo{},
		notifier:  &fakeNotifier{},
		messaging: &fakeMessaging{},
		goroutine: goroutine.NewManager(16),
		hmac:      hash.NewHMACSHA256("test-secret"),
	}

	dep := Dependency{
		RepoCode:      env.codes,
		RepoSession:   env.sessions,
		RepoNotifier:  env.notifier,
		RepoMessaging: env.messaging,
		Validator:     val,
		Config:        cfg,
		HMAC:          env.hmac,
		OTP:           &seqOTP{codes: []string{"123456"}},
		UID:           &seqID{},
		Secret:        secret,
		Clock:         env.clock,
		Instrument:    instrument.NewNoop(),
		Goroutine:     env.goroutine,
	}
	for _, opt := range opts {
		opt(&dep)
	}

	env.uc = New(dep)
	return env
}

const strictConfig = `
modules:
  auth:
    gate:
      strict: true
`

const lenientConfig = `
modules:
  auth:
    code_ttl_minutes: 5
    session_ttl_days: 7
    gate:
      strict: false
`

func assertStatus(t *testing.T, err error, want int) *goerror.Error {
	t.Helper()

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *goerror.Error, got %T (%v)", err, err)
	}
	if gerr.StatusCode() != want {
		t.Fatalf("status = %d, want %d (%v)", gerr.StatusCode(), want, err)
	}
	return gerr
}
