package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/sethvargo/go-retry"

	"github.com/AlibekovAA/authd/internal/common/constants"
	"github.com/AlibekovAA/authd/internal/common/logger"
)

// NewPool connects to PostgreSQL, retrying while the server comes up.
func NewPool(ctx context.Context, log *logger.Logger, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	cfg.MaxConns = constants.DBPoolMaxConns
	cfg.MinConns = constants.DBPoolMinConns
	cfg.MaxConnLifetime = constants.DBPoolConnMaxLifetime
	cfg.MaxConnIdleTime = constants.DBPoolConnMaxIdleTime
	cfg.HealthCheckPeriod = constants.DBPoolHealthCheck
	cfg.ConnConfig.ConnectTimeout = constants.DBPoolConnectTimeout
	cfg.ConnConfig.RuntimeParams = map[string]string{
		"application_name": "authd",
	}

	backoff := retry.WithMaxRetries(constants.DBPoolMaxAttempts-1, retry.NewConstant(constants.DBPoolRetryDelay))

	attempt := 0
	var pool *pgxpool.Pool
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		p, err := pgxpool.ConnectConfig(ctx, cfg)
		if err != nil {
			log.Warnf("failed to connect to database (attempt %d/%d): %v", attempt, constants.DBPoolMaxAttempts, err)
			return retry.RetryableError(err)
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempt, err)
	}

	log.Infof("database connection pool initialized: max=%d, min=%d", cfg.MaxConns, cfg.MinConns)
	return pool, nil
}
