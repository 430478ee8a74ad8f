package kvstore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/goerror"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultTable is the table used by NewPostgres when none is given.
const DefaultTable = "kv_slots"

var reTableName = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// ErrInvalidTableName is returned for table names that are not plain lowercase identifiers.
var ErrInvalidTableName = errors.New("kvstore: invalid postgres table name")

// Postgres is a Store backed by a single table with an optional expiry column.
type Postgres struct {
	pool *pgxpool.Pool

	qGet    string
	qSet    string
	qDelete string
	qCAD    string
}

// NewPostgres creates the table when missing and returns a store over it.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool, table string) (*Postgres, error) {
	if table == "" {
		table = DefaultTable
	}
	if !reTableName.MatchString(table) {
		return nil, ErrInvalidTableName
	}

	ddl := `CREATE TABLE IF NOT EXISTS ` + table + ` (
		key        TEXT PRIMARY KEY,
		value      BYTEA NOT NULL,
		expires_at TIMESTAMPTZ NULL
	)`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return nil, err
	}

	return &Postgres{
		pool:    pool,
		qGet:    `SELECT value FROM ` + table + ` WHERE key = $1 AND (expires_at IS NULL OR expires_at > now())`,
		qSet:    `INSERT INTO ` + table + ` (key, value, expires_at) VALUES ($1, $2, $3) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`,
		qDelete: `DELETE FROM ` + table + ` WHERE key = $1`,
		qCAD:    `DELETE FROM ` + table + ` WHERE key = $1 AND value = $2 AND (expires_at IS NULL OR expires_at > now())`,
	}, nil
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.pool.QueryRow(ctx, p.qGet, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, goerror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (p *Postgres) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt *time.Time
	if ttl > 0 {
		t := time.Now().Add(ttl)
		expiresAt = &t
	}
	_, err := p.pool.Exec(ctx, p.qSet, key, value, expiresAt)
	return err
}

func (p *Postgres) Delete(ctx context.Context, key string) error {
	_, err := p.pool.Exec(ctx, p.qDelete, key)
	return err
}

func (p *Postgres) CompareAndDelete(ctx context.Context, key string, expected []byte) (bool, error) {
	tag, err := p.pool.Exec(ctx, p.qCAD, key, expected)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Close is a no-op; the pool is closed by whoever opened it.
func (p *Postgres) Close() error {
	return nil
}
