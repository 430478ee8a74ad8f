// Package storage keeps small documents in one object storage bucket (S3,
// GCS or MinIO).
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// MaxDocumentBytes caps what Get reads back. Slot documents are a few hundred
// bytes.
const MaxDocumentBytes = 1 << 20

var ErrDocumentTooLarge = errors.New("storage: document too large")

// Storage is bound to a single bucket.
//
// Get returns goerror.ErrNotFound when the key does not exist; Delete of a
// missing key is not an error.
type Storage interface {
	io.Closer

	Put(ctx context.Context, key string, body []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// readDocument drains rc, failing once it grows past MaxDocumentBytes.
func readDocument(rc io.ReadCloser) ([]byte, error) {
	defer rc.Close()

	body, err := io.ReadAll(io.LimitReader(rc, MaxDocumentBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > MaxDocumentBytes {
		return nil, fmt.Errorf("%w: over %d bytes", ErrDocumentTooLarge, MaxDocumentBytes)
	}
	return body, nil
}
