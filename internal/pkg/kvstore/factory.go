package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/clock"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	// DriverMemory keeps slots in process memory.
	DriverMemory = "memory"
	// DriverRedis keeps slots in Redis.
	DriverRedis = "redis"
	// DriverPostgres keeps slots in a Postgres table.
	DriverPostgres = "postgres"
	// DriverFile keeps slots as files on local disk.
	DriverFile = "file"
	// DriverObject keeps slots in an object storage bucket.
	DriverObject = "object"
)

var (
	// ErrUnknownDriver indicates an unsupported kvstore driver.
	ErrUnknownDriver = errors.New("kvstore: unknown driver")
	// ErrMissingBackend indicates the selected driver has no connection to use.
	ErrMissingBackend = errors.New("kvstore: backend connection is required for driver")
)

// FactoryOptions carries the connections a driver may need.
type FactoryOptions struct {
	Clock clock.Clocker
	// Prefix namespaces every key.
	Prefix string

	Redis *redis.Client

	Postgres      *pgxpool.Pool
	PostgresTable string

	FileDir string

	// Storage is already bound to its bucket.
	Storage storage.Storage
}

// NewFromDriver constructs a Store by driver name.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Store, error) {
	var (
		s   Store
		err error
	)

	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverMemory, "":
		s = NewMemory(opts.Clock)
	case DriverRedis:
		if opts.Redis == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingBackend, driver)
		}
		s = NewRedis(opts.Redis)
	case DriverPostgres:
		if opts.Postgres == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingBackend, driver)
		}
		s, err = NewPostgres(ctx, opts.Postgres, opts.PostgresTable)
	case DriverFile:
		s, err = NewFile(opts.FileDir, opts.Clock)
	case DriverObject:
		if opts.Storage == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingBackend, driver)
		}
		s = NewObject(opts.Storage, opts.Clock)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
	if err != nil {
		return nil, err
	}

	return WithPrefix(s, opts.Prefix), nil
}
