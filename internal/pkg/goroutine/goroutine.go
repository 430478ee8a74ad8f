// Package goroutine runs fire-and-forget work, such as audit event publishing,
// with a concurrency cap and a drain step for graceful shutdown.
package goroutine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/stacktrace"
)

// DefaultMaxGoroutine is used when NewManager receives a non-positive limit.
const DefaultMaxGoroutine = 64

var (
	ErrClosed = errors.New("goroutine: manager is draining")
	ErrFull   = errors.New("goroutine: concurrency limit reached")
)

// PanicError is recorded when a task panics.
type PanicError struct {
	Value  any
	Frames []string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Manager runs named tasks. Failed and panicking tasks are logged when they
// happen. Wait reports how many failed along with the latest error, so a long
// broker outage costs a counter and not a growing slice.
type Manager struct {
	wg   sync.WaitGroup
	sema chan struct{}

	mu      sync.Mutex
	closed  bool
	failed  int
	lastErr error
}

func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = DefaultMaxGoroutine
	}
	return &Manager{sema: make(chan struct{}, maxGoroutine)}
}

// Go starts fn in its own goroutine. It returns ErrClosed after Wait was
// called and ErrFull when every slot is busy; fn does not run in either case.
func (g *Manager) Go(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		slog.WarnContext(ctx, "goroutine manager is draining, task dropped", "task", name)
		return ErrClosed
	}

	select {
	case g.sema <- struct{}{}:
	default:
		slog.WarnContext(ctx, "goroutine limit reached, task dropped", "task", name, "limit", cap(g.sema))
		return ErrFull
	}

	g.wg.Go(func() {
		defer func() { <-g.sema }()
		if err := run(ctx, fn); err != nil {
			slog.ErrorContext(ctx, "background task failed", "task", name, "error", err)
			g.record(fmt.Errorf("%s: %w", name, err))
		}
	})
	return nil
}

func run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			err = &PanicError{Value: rvr, Frames: stacktrace.Internal(0)}
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

func (g *Manager) record(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failed++
	g.lastErr = err
}

// Wait stops new tasks from starting and blocks until running ones finish.
func (g *Manager) Wait() error {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()

	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	switch g.failed {
	case 0:
		return nil
	case 1:
		return g.lastErr
	default:
		return fmt.Errorf("%d background tasks failed, last: %w", g.failed, g.lastErr)
	}
}
