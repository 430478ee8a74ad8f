package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/clock"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/config"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/goroutine"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/hash"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/idempotency"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/instrument"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/kvstore"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/mail"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/messaging"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/otp"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/router"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/storage"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/uid"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/validator"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// abortTimeout bounds the cleanup of a Build that failed halfway.
const abortTimeout = 5 * time.Second

// App owns every long-lived dependency of the dashboard.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	config config.Config
	ins    instrument.Instrumentation

	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	hmac      hash.Hash
	uid       uid.NumberID
	eventID   uid.StringID
	uuid      uid.StringID
	secret    uid.StringID
	otp       otp.OTP

	// optional resources stay nil when not configured
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	idemp     idempotency.Idempotency
	mail      mail.Mail
	messaging messaging.Messaging
	storage   storage.Storage
	kv        kvstore.Store

	router     *router.Router
	httpServer *http.Server

	closers []closer
}

type closer struct {
	name string
	fn   func(context.Context) error
}

// New builds the App and exits the process when any dependency fails.
func New() *App {
	app, err := Build(context.Background())
	if err != nil {
		slog.Error("failed to start dashboard", "error", err)
		os.Exit(1)
	}
	return app
}

// Build wires the App step by step. When a step fails, everything built before
// it is closed and the step's error is returned.
func Build(ctx context.Context) (*App, error) {
	ctx, cancel := context.WithCancel(ctx)
	a := &App{ctx: ctx, cancel: cancel}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"config", a.initConfig},
		{"instrument", a.initInstrument},
		{"libraries", a.initLibraries},
		{"database", a.initDatabase},
		{"cache", a.initCache},
		{"mail", a.initMail},
		{"storage", a.initStorage},
		{"messaging", a.initMessaging},
		{"kvstore", a.initKVStore},
		{"http server", a.initHTTPServer},
		{"modules", a.initModules},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			abortCtx, abortCancel := context.WithTimeout(context.Background(), abortTimeout)
			a.closeAll(abortCtx)
			abortCancel()
			cancel()
			return nil, fmt.Errorf("init %s: %w", step.name, err)
		}
	}
	return a, nil
}

// onClose registers fn to run at shutdown. Closers run in reverse order of
// registration.
func (a *App) onClose(name string, fn func(context.Context) error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

func (a *App) closeAll(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resource", "name", c.name, "error", err)
		}
	}
	a.closers = nil
}
