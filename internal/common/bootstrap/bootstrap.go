package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v4/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhttp "github.com/AlibekovAA/authd/internal/auth/http"
	"github.com/AlibekovAA/authd/internal/auth/service"
	"github.com/AlibekovAA/authd/internal/common/clock"
	"github.com/AlibekovAA/authd/internal/common/config"
	"github.com/AlibekovAA/authd/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/authd/internal/common/crypto"
	"github.com/AlibekovAA/authd/internal/common/db"
	commonhttp "github.com/AlibekovAA/authd/internal/common/http"
	"github.com/AlibekovAA/authd/internal/common/logger"
	"github.com/AlibekovAA/authd/internal/common/resilience"
	"github.com/AlibekovAA/authd/internal/migrations"
	userrepo "github.com/AlibekovAA/authd/internal/user/repository"
)

const serviceName = "auth"

type AuthApp struct {
	Config      config.AuthConfig
	Log         *logger.Logger
	Store       userrepo.Repository
	Credentials *service.CredentialService
	Tokens      *service.TokenIssuer

	closers []func() error
}

// NewAuthApp wires the store, hashing pool and services described by cfg.
// The returned app owns the store connection and must be closed.
func NewAuthApp(ctx context.Context, cfg config.AuthConfig, log *logger.Logger) (*AuthApp, error) {
	app := &AuthApp{Config: cfg, Log: log}

	store, closeStore, err := OpenStore(ctx, cfg, log, cfg.AutoMigrate)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, closeStore)

	app.Store = userrepo.NewBreakerRepository(store, resilience.CircuitBreakerConfig{
		Threshold:  int32(cfg.CircuitBreakerThreshold),
		Timeout:    cfg.CircuitBreakerTimeout,
		ResetAfter: cfg.CircuitBreakerReset,
		Name:       "user_store",
		Clock:      clock.NewRealClock(),
		Logger:     log,
	})

	hasher, err := commoncrypto.NewHasher(cfg.HashAlgorithm, cfg.BcryptCost, commoncrypto.Argon2Params{
		Memory:  cfg.Argon2MemoryKiB,
		Time:    cfg.Argon2Time,
		Threads: cfg.Argon2Threads,
	})
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to build password hasher: %w", err)
	}
	pool := commoncrypto.NewHashPool(hasher, cfg.HashWorkers)

	idGenerator, err := commoncrypto.NewIDGenerator(cfg.IDScheme)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to build id generator: %w", err)
	}

	realClock := clock.NewRealClock()
	app.Credentials = service.NewCredentialService(app.Store, pool, idGenerator, realClock, log)
	app.Tokens = service.NewTokenIssuer(cfg.JWTSecret, idGenerator, cfg.TokenTTL, realClock)

	log.Infof("auth app initialized: store=%s hash=%s workers=%d id=%s",
		cfg.StoreDriver, cfg.HashAlgorithm, pool.Size(), cfg.IDScheme)
	return app, nil
}

// Handler serves the auth routes and /metrics behind the common middleware
// chain.
func (a *AuthApp) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", authhttp.NewHandler(a.Credentials, a.Tokens, a.Config.RequestTimeout, a.Log))
	mux.Handle("/metrics", promhttp.Handler())
	return commonhttp.BuildBaseHandler(serviceName, a.Log, mux)
}

func (a *AuthApp) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// OpenStore connects the configured account store, applying migrations
// first when migrate is set. The returned func releases the connection.
func OpenStore(ctx context.Context, cfg config.AuthConfig, log *logger.Logger, migrate bool) (userrepo.Repository, func() error, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn("using in-memory account store: accounts are lost on restart")
		return userrepo.NewMemoryRepository(), func() error { return nil }, nil

	case config.StoreSQLite:
		sqlDB, err := userrepo.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if migrate {
			if err := runMigrations(ctx, log, sqlDB, migrations.SQLite); err != nil {
				_ = sqlDB.Close()
				return nil, nil, err
			}
		}
		metricsCtx, cancel := context.WithCancel(context.Background())
		db.StartSQLMetrics(metricsCtx, db.StoreSQLite, sqlDB, constants.DBPoolMetricsInterval)

		log.Infof("sqlite account store opened at %s", cfg.SQLitePath)
		return userrepo.NewSQLiteRepository(sqlDB), func() error {
			cancel()
			return sqlDB.Close()
		}, nil

	case config.StorePostgres:
		pool, err := db.NewPool(ctx, log, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if migrate {
			sqlDB := stdlib.OpenDB(*pool.Config().ConnConfig)
			err := runMigrations(ctx, log, sqlDB, migrations.Postgres)
			_ = sqlDB.Close()
			if err != nil {
				pool.Close()
				return nil, nil, err
			}
		}

		metricsCtx, cancel := context.WithCancel(context.Background())
		db.StartPoolMetrics(metricsCtx, pool, constants.DBPoolMetricsInterval)

		return userrepo.NewPgRepository(pool), func() error {
			cancel()
			pool.Close()
			return nil
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func runMigrations(ctx context.Context, log *logger.Logger, sqlDB *sql.DB, dialect migrations.Dialect) error {
	applied, err := migrations.Up(ctx, sqlDB, dialect)
	if err != nil {
		return err
	}
	log.Infof("%s migrations applied: %d", dialect, applied)
	return nil
}

// Migrate applies pending migrations for the configured SQL store and
// releases the connection.
func Migrate(ctx context.Context, cfg config.AuthConfig, log *logger.Logger) error {
	if cfg.StoreDriver == config.StoreMemory {
		log.Info("memory store has no schema, nothing to migrate")
		return nil
	}
	_, closeStore, err := OpenStore(ctx, cfg, log, true)
	if err != nil {
		return err
	}
	return closeStore()
}

func NewLogger(cfg config.AuthConfig) (*logger.Logger, error) {
	return logger.New(cfg.LogDir, serviceName, cfg.LogLevel)
}
