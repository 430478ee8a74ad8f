package kvstore

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/clock"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/goerror"
)

// File is a Store that keeps one JSON file per key under a directory.
// It is safe for one process only; replicas must use a shared driver.
type File struct {
	mu    sync.Mutex
	dir   string
	clock clock.Clocker
}

// NewFile prepares dir (mode 0700) and returns a store rooted at it.
func NewFile(dir string, clk clock.Clocker) (*File, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.New()
	}
	return &File{dir: dir, clock: clk}, nil
}

func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	e, err := f.read(key)
	if err != nil {
		return nil, err
	}
	return e.Value, nil
}

func (f *File) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := encodeEnvelope(newEnvelope(value, ttl, f.clock.Now()))
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, ".kv-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		return errors.Join(err, tmp.Close(), os.Remove(tmp.Name()))
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(err, os.Remove(tmp.Name()))
	}
	return os.Rename(tmp.Name(), f.path(key))
}

func (f *File) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.remove(key)
}

func (f *File) CompareAndDelete(ctx context.Context, key string, expected []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	e, err := f.read(key)
	if errors.Is(err, goerror.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !bytes.Equal(e.Value, expected) {
		return false, nil
	}
	if err := f.remove(key); err != nil {
		return false, err
	}
	return true, nil
}

func (f *File) Close() error {
	return nil
}

// read must be called with mu held.
func (f *File) read(key string) (envelope, error) {
	// #nosec G304 -- file name is derived from a sanitized key inside f.dir.
	raw, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return envelope{}, goerror.ErrNotFound
	}
	if err != nil {
		return envelope{}, err
	}

	e, err := decodeEnvelope(raw)
	if err != nil {
		return envelope{}, err
	}
	if e.expired(f.clock.Now()) {
		if err := f.remove(key); err != nil {
			return envelope{}, err
		}
		return envelope{}, goerror.ErrNotFound
	}
	return e, nil
}

func (f *File) remove(key string) error {
	err := os.Remove(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, fileName(key)+".json")
}

func fileName(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, key)
}
