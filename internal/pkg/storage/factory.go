package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Drivers accepted by kvstore.object.driver.
const (
	DriverS3    = "s3"
	DriverGCS   = "gcs"
	DriverMinIO = "minio"
)

var (
	ErrUnknownDriver = errors.New("storage: unknown driver")
	ErrMissingOption = errors.New("storage: missing option")
)

type FactoryOptions struct {
	// Bucket must already exist.
	Bucket string

	S3    S3Options
	GCS   GCSOptions
	MinIO MinIOOptions
}

// NewFromDriver builds the bucket client the object slot store writes to.
// Static credentials must come as a pair; an empty pair means the SDK default
// chain is used.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Storage, error) {
	d := strings.ToLower(strings.TrimSpace(driver))
	switch d {
	case DriverS3, DriverGCS, DriverMinIO:
	default:
		return nil, fmt.Errorf("%w %q (want one of %s, %s, %s)", ErrUnknownDriver, driver, DriverS3, DriverGCS, DriverMinIO)
	}
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, fmt.Errorf("%w: bucket", ErrMissingOption)
	}

	switch d {
	case DriverS3:
		if err := credentialPair(d, opts.S3.AccessKey, opts.S3.SecretKey); err != nil {
			return nil, err
		}
		return built(NewS3(ctx, opts.Bucket, opts.S3))
	case DriverGCS:
		return built(NewGCS(ctx, opts.Bucket, opts.GCS))
	default:
		if strings.TrimSpace(opts.MinIO.Endpoint) == "" {
			return nil, fmt.Errorf("%w: minio endpoint", ErrMissingOption)
		}
		if err := credentialPair(d, opts.MinIO.AccessKey, opts.MinIO.SecretKey); err != nil {
			return nil, err
		}
		return built(NewMinIO(opts.Bucket, opts.MinIO))
	}
}

func credentialPair(driver, accessKey, secretKey string) error {
	if (accessKey == "") != (secretKey == "") {
		return fmt.Errorf("%w: %s access key and secret key must be set together", ErrMissingOption, driver)
	}
	return nil
}

// built keeps a failed constructor from leaking a typed nil into Storage.
func built[T Storage](s T, err error) (Storage, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
