// Package idempotency guards side effects behind a caller-supplied key so a
// repeated request inside the window replays as a no-op instead of running
// again. State lives in Redis and is shared across replicas.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrAlreadyInProgress = errors.New("idempotency: operation already in progress")
	ErrAlreadyCompleted  = errors.New("idempotency: operation already completed")
	ErrAlreadyFailed     = errors.New("idempotency: operation already failed")
	ErrInvalidState      = errors.New("idempotency: unknown state")
)

const (
	stateInProgress = "in_progress"
	stateCompleted  = "completed"
	stateFailed     = "failed"
)

// DefaultPrefix namespaces guard keys inside a shared Redis.
const DefaultPrefix = "dashboard:idemp:"

const (
	defaultLockDuration = time.Minute
	defaultStateTTL     = time.Minute
)

type Idempotency interface {
	// Exec runs fn once per key. Repeats return ErrAlreadyInProgress,
	// ErrAlreadyCompleted or ErrAlreadyFailed without calling fn.
	Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error
}

// Guard implements Idempotency on Redis.
type Guard struct {
	client redis.Cmdable
	prefix string
}

// New returns a Guard using DefaultPrefix. An empty prefix keeps the default.
func New(client redis.Cmdable, prefix string) *Guard {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Guard{client: client, prefix: prefix}
}

type Option func(*execOptions)

type execOptions struct {
	lockDuration time.Duration
	stateTTL     time.Duration
}

// WithLockDuration bounds how long an unfinished run blocks repeats. A crashed
// run frees the key after this long.
func WithLockDuration(d time.Duration) Option {
	return func(o *execOptions) { o.lockDuration = d }
}

// WithStateTTL sets how long the outcome of a finished run is remembered.
func WithStateTTL(d time.Duration) Option {
	return func(o *execOptions) { o.stateTTL = d }
}

func (g *Guard) Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error {
	o := execOptions{lockDuration: defaultLockDuration, stateTTL: defaultStateTTL}
	for _, opt := range opts {
		opt(&o)
	}
	if o.lockDuration <= 0 {
		o.lockDuration = defaultLockDuration
	}
	if o.stateTTL <= 0 {
		o.stateTTL = defaultStateTTL
	}

	fk := g.prefix + key
	if err := g.claim(ctx, fk, o.lockDuration); err != nil {
		return err
	}

	runErr := fn(ctx)

	// the outcome must be recorded even if the caller went away mid-run
	markCtx := context.WithoutCancel(ctx)
	state := stateCompleted
	if runErr != nil {
		state = stateFailed
	}
	if err := g.client.Set(markCtx, fk, state, o.stateTTL).Err(); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// claim takes the key, or reports the state of whoever holds it.
func (g *Guard) claim(ctx context.Context, fk string, lock time.Duration) error {
	// a lock that expires between SetNX and Get is retried once
	for range 2 {
		ok, err := g.client.SetNX(ctx, fk, stateInProgress, lock).Result()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		state, err := g.client.Get(ctx, fk).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return err
		}
		return stateErr(state)
	}
	return ErrInvalidState
}

func stateErr(state string) error {
	switch state {
	case stateInProgress:
		return ErrAlreadyInProgress
	case stateCompleted:
		return ErrAlreadyCompleted
	case stateFailed:
		return ErrAlreadyFailed
	default:
		return ErrInvalidState
	}
}
