// Package kvstore provides small keyed slots with optional expiry.
//
// It backs state that has to survive between requests (and, for the shared
// drivers, between replicas) without a schema of its own. Every driver
// implements the same Store contract so callers can switch backends from
// configuration alone.
package kvstore

import (
	"context"
	"io"
	"time"
)

// Store is a key/value slot store.
//
// Get returns goerror.ErrNotFound when the key is absent or expired.
// A zero ttl on Set means the entry never expires on its own.
type Store interface {
	io.Closer

	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	// CompareAndDelete removes key only while it still holds expected.
	// It reports whether the entry was removed.
	CompareAndDelete(ctx context.Context, key string, expected []byte) (bool, error)
}

type prefixed struct {
	Store
	prefix string
}

// WithPrefix namespaces every key of s with prefix.
func WithPrefix(s Store, prefix string) Store {
	if prefix == "" {
		return s
	}
	return &prefixed{Store: s, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.Store.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return p.Store.Set(ctx, p.prefix+key, value, ttl)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	return p.Store.Delete(ctx, p.prefix+key)
}

func (p *prefixed) CompareAndDelete(ctx context.Context, key string, expected []byte) (bool, error) {
	return p.Store.CompareAndDelete(ctx, p.prefix+key, expected)
}
