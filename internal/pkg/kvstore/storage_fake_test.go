package kvstore

import (
	"context"
	"sync"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/goerror"
)

// memStorage is a bucket held in a map.
type memStorage struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{docs: map[string][]byte{}}
}

func (m *memStorage) Put(_ context.Context, key string, body []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = append([]byte(nil), body...)
	return nil
}

func (m *memStorage) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.docs[key]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return b, nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, key)
	return nil
}

func (m *memStorage) Close() error { return nil }
