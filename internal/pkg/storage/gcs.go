package storage

import (
	"context"
	"errors"

	gcs "cloud.google.com/go/storage"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/goerror"
)

type GCSOptions struct {
	// Client is used as is when set; otherwise one is built from application
	// default credentials.
	Client *gcs.Client
}

// GCS stores documents in a Google Cloud Storage bucket.
type GCS struct {
	client *gcs.Client
	bucket *gcs.BucketHandle
}

func NewGCS(ctx context.Context, bucket string, opts GCSOptions) (*GCS, error) {
	client := opts.Client
	if client == nil {
		var err error
		if client, err = gcs.NewClient(ctx); err != nil {
			return nil, err
		}
	}
	return &GCS{client: client, bucket: client.Bucket(bucket)}, nil
}

// Put writes the document in a single request.
func (g *GCS) Put(ctx context.Context, key string, body []byte, contentType string) error {
	w := g.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.ChunkSize = 0
	if _, err := w.Write(body); err != nil {
		return errors.Join(err, w.Close())
	}
	return w.Close()
}

func (g *GCS) Get(ctx context.Context, key string) ([]byte, error) {
	r, err := g.bucket.Object(key).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, goerror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return readDocument(r)
}

func (g *GCS) Delete(ctx context.Context, key string) error {
	err := g.bucket.Object(key).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	return err
}

func (g *GCS) Close() error {
	return g.client.Close()
}
