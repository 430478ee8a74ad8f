package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
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
	"github.com/nats-io/nats.go"
	"github.com/nsqio/go-nsq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

const pingTimeout = 5 * time.Second

var errRedisURLRequired = errors.New("kvstore driver redis requires redis.url")

// configPath resolves CONFIG_PATH, then the container path, then the local
// path when LOCAL=true.
func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	if os.Getenv("LOCAL") == "true" {
		return "./config/config.yaml"
	}
	return "/config/config.yaml"
}

func (a *App) initConfig() error {
	cfg, err := config.NewViper(configPath())
	if err != nil {
		return err
	}
	cfg.SetDefaults(defaults())

	a.config = cfg
	a.onClose("config", func(context.Context) error { return cfg.Close() })
	return nil
}

func (a *App) initInstrument() error {
	ins, err := instrument.New(a.ctx, &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		LogLevel:         a.config.GetString("instrument.log_level"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
	})
	if err != nil {
		return err
	}

	a.ins = ins
	a.onClose("instrument", ins.Shutdown)
	return nil
}

func (a *App) initLibraries() error {
	tz := a.config.GetString("app.tz")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		slog.Warn("unknown app.tz, falling back to UTC", "tz", tz, "error", err)
		loc = time.UTC
	}
	a.clock = clock.NewIn(loc)
	a.uuid = uid.NewUUID()
	a.eventID = uid.NewOrderedUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))
	a.otp = otp.NewSixDigit()

	if a.validator, err = validator.NewV10Validator(); err != nil {
		return fmt.Errorf("validator: %w", err)
	}
	if a.uid, err = uid.NewSnowflake(); err != nil {
		return fmt.Errorf("snowflake: %w", err)
	}

	secret, err := uid.NewSecret(32)
	if err != nil {
		return fmt.Errorf("session secret: %w", err)
	}
	a.secret = secret

	hmacKey := a.config.GetString("hash.hmac.secret")
	if hmacKey == "" {
		// sessions stored by an earlier process stop verifying after a restart
		slog.Warn("hash.hmac.secret is empty, using a per-process random key")
		hmacKey = secret.Generate()
	}
	a.hmac = hash.NewHMACSHA256(hmacKey)
	return nil
}

func (a *App) kvDriver() string {
	return strings.ToLower(strings.TrimSpace(a.config.GetString("kvstore.driver")))
}

// initDatabase connects Postgres, only for the postgres kvstore driver.
func (a *App) initDatabase() error {
	if a.kvDriver() != kvstore.DriverPostgres {
		return nil
	}

	poolCfg, err := pgxpool.ParseConfig(a.config.GetString("database.url"))
	if err != nil {
		return fmt.Errorf("parse database.url: %w", err)
	}
	poolCfg.MaxConns = a.config.GetInt32("database.pool.max_conns")
	poolCfg.MinConns = a.config.GetInt32("database.pool.min_conns")
	poolCfg.MaxConnLifetime = a.config.GetSecond("database.pool.max_conn_lifetime_seconds")
	poolCfg.MaxConnIdleTime = a.config.GetSecond("database.pool.max_conn_idle_seconds")
	poolCfg.HealthCheckPeriod = a.config.GetSecond("database.pool.health_check_period_seconds")

	pool, err := pgxpool.NewWithConfig(a.ctx, poolCfg)
	if err != nil {
		return err
	}
	a.onClose("database", func(context.Context) error {
		pool.Close()
		return nil
	})

	ctx, cancel := context.WithTimeout(a.ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	a.dbConn = pool
	return nil
}

// initCache connects Redis when redis.url is set. Idempotent send-code is
// only available with a cache.
func (a *App) initCache() error {
	url := a.config.GetString("redis.url")
	if url == "" {
		if a.kvDriver() == kvstore.DriverRedis {
			return errRedisURLRequired
		}
		return nil
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		return fmt.Errorf("parse redis.url: %w", err)
	}
	rdb := redis.NewClient(opt)
	a.onClose("redis", func(context.Context) error { return rdb.Close() })

	ctx, cancel := context.WithTimeout(a.ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	a.cacheConn = rdb
	a.idemp = idempotency.New(rdb, a.config.GetString("redis.idempotency_prefix"))
	return nil
}

// initMail builds the SMTP client when mail.host is set.
func (a *App) initMail() error {
	if a.config.GetString("mail.host") == "" {
		return nil
	}

	client, err := mail.NewSMTP(mail.SMTPConfig{
		Host:               a.config.GetString("mail.host"),
		Port:               a.config.GetInt("mail.port"),
		Username:           a.config.GetString("mail.username"),
		Password:           a.config.GetString("mail.password"),
		From:               a.config.GetString("mail.from"),
		InsecureSkipVerify: a.config.GetBool("mail.insecure_skip_verify"),
	})
	if err != nil {
		return err
	}

	a.mail = client
	a.onClose("mail", func(context.Context) error { return client.Close() })
	return nil
}

// initStorage builds the bucket client behind the object kvstore driver.
func (a *App) initStorage() error {
	if a.kvDriver() != kvstore.DriverObject {
		return nil
	}

	driver := strings.TrimSpace(a.config.GetString("kvstore.object.driver"))
	opts := storage.FactoryOptions{
		Bucket: a.trimmed("kvstore.object.bucket"),
		S3: storage.S3Options{
			Region:       a.trimmed("storage.s3.region"),
			Endpoint:     a.trimmed("storage.s3.endpoint"),
			AccessKey:    a.trimmed("storage.s3.access_key"),
			SecretKey:    a.trimmed("storage.s3.secret_key"),
			SessionToken: a.trimmed("storage.s3.session_token"),
			UsePathStyle: a.config.GetBool("storage.s3.use_path_style"),
		},
		MinIO: storage.MinIOOptions{
			Region:       a.trimmed("storage.minio.region"),
			Endpoint:     a.trimmed("storage.minio.endpoint"),
			AccessKey:    a.trimmed("storage.minio.access_key"),
			SecretKey:    a.trimmed("storage.minio.secret_key"),
			SessionToken: a.trimmed("storage.minio.session_token"),
			UseSSL:       a.config.GetBool("storage.minio.use_ssl"),
		},
	}

	if strings.EqualFold(driver, storage.DriverGCS) {
		client, err := a.gcsClient()
		if err != nil {
			return err
		}
		opts.GCS.Client = client
	}

	stg, err := storage.NewFromDriver(a.ctx, driver, opts)
	if err != nil {
		return err
	}

	a.storage = stg
	a.onClose("storage", func(context.Context) error { return stg.Close() })
	return nil
}

// gcsClient returns nil when no GCS option is configured, which lets the
// storage package fall back to application default credentials.
func (a *App) gcsClient() (*gcs.Client, error) {
	var opts []option.ClientOption
	if a.config.GetBool("storage.gcs.without_auth") {
		opts = append(opts, option.WithoutAuthentication())
	}
	if path := a.trimmed("storage.gcs.credentials_file"); path != "" {
		// #nosec G304 -- path is from trusted config file.
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read gcs credentials: %w", err)
		}
		creds, err := google.CredentialsFromJSON(a.ctx, raw, gcs.ScopeReadWrite)
		if err != nil {
			return nil, fmt.Errorf("parse gcs credentials: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	}
	if endpoint := a.trimmed("storage.gcs.endpoint"); endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	if len(opts) == 0 {
		return nil, nil
	}
	return gcs.NewClient(a.ctx, opts...)
}

func (a *App) initMessaging() error {
	nsqCfg := nsq.NewConfig()
	nsqCfg.DialTimeout = a.config.GetSecond("messaging.nsq.dial_timeout_seconds")
	nsqCfg.ReadTimeout = a.config.GetSecond("messaging.nsq.read_timeout_seconds")
	nsqCfg.WriteTimeout = a.config.GetSecond("messaging.nsq.write_timeout_seconds")

	var pubsubOpts []option.ClientOption
	if endpoint := a.trimmed("messaging.pubsub.endpoint"); endpoint != "" {
		pubsubOpts = append(pubsubOpts, option.WithEndpoint(endpoint))
	}
	if a.config.GetBool("messaging.pubsub.without_auth") {
		pubsubOpts = append(pubsubOpts, option.WithoutAuthentication())
	}

	client, err := messaging.NewFromDriver(a.ctx, a.config.GetString("messaging.driver"), messaging.FactoryOptions{
		NSQ: messaging.NSQConfig{
			ProducerAddr:   a.config.GetString("messaging.nsq.producer_addr"),
			ProducerConfig: nsqCfg,
		},
		Kafka: messaging.KafkaConfig{
			Brokers:     a.config.GetArray("messaging.kafka.brokers"),
			ClientID:    a.config.GetString("messaging.kafka.client_id"),
			DialTimeout: a.config.GetSecond("messaging.kafka.dial_timeout_seconds"),
		},
		NATS: messaging.NATSConfig{
			URL: a.config.GetString("messaging.nats.url"),
			Options: []nats.Option{
				nats.Name(a.config.GetString("instrument.service_name")),
				nats.MaxReconnects(a.config.GetInt("messaging.nats.max_reconnects")),
				nats.Timeout(a.config.GetSecond("messaging.nats.timeout_seconds")),
				nats.ReconnectWait(a.config.GetSecond("messaging.nats.reconnect_wait_seconds")),
				nats.RetryOnFailedConnect(a.config.GetBool("messaging.nats.retry_on_failed_connect")),
			},
		},
		PubSub: messaging.PubSubConfig{
			ProjectID:     a.config.GetString("messaging.pubsub.project_id"),
			ClientOptions: pubsubOpts,
		},
	})
	if err != nil {
		return err
	}

	a.messaging = client
	a.onClose("messaging", func(context.Context) error { return client.Close() })
	return nil
}

func (a *App) initKVStore() error {
	store, err := kvstore.NewFromDriver(a.ctx, a.kvDriver(), kvstore.FactoryOptions{
		Clock:         a.clock,
		Prefix:        a.config.GetString("kvstore.prefix"),
		Redis:         a.cacheConn,
		Postgres:      a.dbConn,
		PostgresTable: a.config.GetString("kvstore.postgres.table"),
		FileDir:       a.config.GetString("kvstore.file.dir"),
		Storage:       a.storage,
	})
	if err != nil {
		return err
	}

	a.kv = store
	a.onClose("kvstore", func(context.Context) error { return store.Close() })
	return nil
}

func (a *App) initHTTPServer() error {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		Instrument: a.ins,
	})

	handler := cors.New(cors.Options{
		AllowedOrigins:   a.config.GetArray("app.server.cors"),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Idempotency-Key", router.HeaderCorrelationID},
		ExposedHeaders:   []string{router.HeaderCorrelationID},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           handler,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
		ErrorLog:          slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
	}
	return nil
}

func (a *App) trimmed(key string) string {
	return strings.TrimSpace(a.config.GetString(key))
}
