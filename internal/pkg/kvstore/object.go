package kvstore

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/clock"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/goerror"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/storage"
)

// Object is a Store that writes each key as a JSON document in a bucket.
//
// CompareAndDelete is only atomic within one process: object stores offer no
// conditional delete across S3, GCS and MinIO alike.
type Object struct {
	mu    sync.Mutex
	stg   storage.Storage
	clock clock.Clocker
}

// NewObject returns a store over stg. The caller keeps ownership of stg and
// closes it.
func NewObject(stg storage.Storage, clk clock.Clocker) *Object {
	if clk == nil {
		clk = clock.New()
	}
	return &Object{stg: stg, clock: clk}
}

func (o *Object) Get(ctx context.Context, key string) ([]byte, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	e, err := o.read(ctx, key)
	if err != nil {
		return nil, err
	}
	return e.Value, nil
}

func (o *Object) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	raw, err := encodeEnvelope(newEnvelope(value, ttl, o.clock.Now()))
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	return o.stg.Put(ctx, objectKey(key), raw, "application/json")
}

func (o *Object) Delete(ctx context.Context, key string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.remove(ctx, key)
}

func (o *Object) CompareAndDelete(ctx context.Context, key string, expected []byte) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	e, err := o.read(ctx, key)
	if errors.Is(err, goerror.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !bytes.Equal(e.Value, expected) {
		return false, nil
	}
	if err := o.remove(ctx, key); err != nil {
		return false, err
	}
	return true, nil
}

func (*Object) Close() error { return nil }

func (o *Object) read(ctx context.Context, key string) (envelope, error) {
	raw, err := o.stg.Get(ctx, objectKey(key))
	if err != nil {
		return envelope{}, err
	}

	e, err := decodeEnvelope(raw)
	if err != nil {
		return envelope{}, err
	}
	if e.expired(o.clock.Now()) {
		if err := o.remove(ctx, key); err != nil {
			return envelope{}, err
		}
		return envelope{}, goerror.ErrNotFound
	}
	return e, nil
}

func (o *Object) remove(ctx context.Context, key string) error {
	err := o.stg.Delete(ctx, objectKey(key))
	if errors.Is(err, goerror.ErrNotFound) {
		return nil
	}
	return err
}

func objectKey(key string) string {
	return "kvstore/" + fileName(key) + ".json"
}
