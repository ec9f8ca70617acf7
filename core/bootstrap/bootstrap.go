package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"

	coreconfig "github.com/m3rciful/datebot/core/config"
	coredatabase "github.com/m3rciful/datebot/core/database"
	"github.com/m3rciful/datebot/core/logger"
)

// Options control the startup pipeline. Nil funcs fall back to the core
// implementations. Redis is only dialled when Redis is non-nil.
type Options struct {
	Config   *coreconfig.Config
	Database coredatabase.Config
	Redis    *coredatabase.RedisConfig
	Seeders  []Seeder

	LoggerInit   func(*coreconfig.Config) error
	Connect      func(context.Context, coredatabase.Config) (*sqlx.DB, error)
	Migrate      func(context.Context, coredatabase.Config) error
	ConnectRedis func(context.Context, coredatabase.RedisConfig) (*goredis.Client, error)
}

// Result exposes the infrastructure built by Run.
type Result struct {
	DB    *sqlx.DB
	Redis *goredis.Client
}

// Close releases every opened connection.
func (r *Result) Close() error {
	var errs []error
	if r.Redis != nil {
		errs = append(errs, r.Redis.Close())
	}
	if r.DB != nil {
		errs = append(errs, r.DB.Close())
	}
	return errors.Join(errs...)
}

// Run initializes the logger, connects postgres, applies migrations, runs
// the seeders and finally dials Redis.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, errors.New("bootstrap: nil config provided")
	}
	opts.defaults()
	if err := opts.LoggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init: %w", err)
	}

	db, err := opts.Connect(ctx, opts.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database: %w", err)
	}
	res := &Result{DB: db}

	if err := opts.Migrate(ctx, opts.Database); err != nil {
		_ = res.Close()
		return nil, fmt.Errorf("bootstrap: migrations: %w", err)
	}
	for _, s := range opts.Seeders {
		if err := s.Seed(ctx, db); err != nil {
			_ = res.Close()
			return nil, fmt.Errorf("bootstrap: seed: %w", err)
		}
	}

	if opts.Redis != nil {
		client, err := opts.ConnectRedis(ctx, *opts.Redis)
		if err != nil {
			_ = res.Close()
			return nil, fmt.Errorf("bootstrap: redis: %w", err)
		}
		res.Redis = client
	}
	return res, nil
}

func (o *Options) defaults() {
	if o.LoggerInit == nil {
		o.LoggerInit = logger.InitLogger
	}
	if o.Connect == nil {
		o.Connect = coredatabase.Connect
	}
	if o.Migrate == nil {
		o.Migrate = coredatabase.RunMigrations
	}
	if o.ConnectRedis == nil {
		o.ConnectRedis = coredatabase.ConnectRedis
	}
}
