package kvstore

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/clock"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/goerror"
)

// Memory is a process-local Store. Expired entries are dropped lazily on access.
type Memory struct {
	mu      sync.Mutex
	clock   clock.Clocker
	entries map[string]envelope
}

// NewMemory returns an empty in-memory store.
func NewMemory(clk clock.Clocker) *Memory {
	if clk == nil {
		clk = clock.New()
	}
	return &Memory{clock: clk, entries: make(map[string]envelope)}
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lookup(key)
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return bytes.Clone(e.Value), nil
}

func (m *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = newEnvelope(bytes.Clone(value), ttl, m.clock.Now())
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

func (m *Memory) CompareAndDelete(ctx context.Context, key string, expected []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lookup(key)
	if !ok || !bytes.Equal(e.Value, expected) {
		return false, nil
	}
	delete(m.entries, key)
	return true, nil
}

func (m *Memory) Close() error {
	return nil
}

// lookup must be called with mu held.
func (m *Memory) lookup(key string) (envelope, bool) {
	e, ok := m.entries[key]
	if !ok {
		return envelope{}, false
	}
	if e.expired(m.clock.Now()) {
		delete(m.entries, key)
		return envelope{}, false
	}
	return e, true
}
