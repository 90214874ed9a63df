package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	pgx "github.com/jackc/pgx/v4"
	"modernc.org/sqlite"

	"github.com/AlibekovAA/authd/internal/observability/metrics"
)

const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// HandleQueryError records the query duration and maps "no rows" from
// either pgx or database/sql to notFoundErr.
func HandleQueryError(err error, notFoundErr error, store, operation string, startTime time.Time) error {
	MeasureQueryDuration(store, operation, startTime)

	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}
	metrics.StoreQueryErrors.WithLabelValues(store, operation, ErrorType(err)).Inc()
	return fmt.Errorf("failed to %s: %w", operation, err)
}

func HandleExecError(err error, store, operation string, startTime time.Time) error {
	MeasureQueryDuration(store, operation, startTime)

	if err == nil {
		return nil
	}
	metrics.StoreQueryErrors.WithLabelValues(store, operation, ErrorType(err)).Inc()
	return fmt.Errorf("failed to %s: %w", operation, err)
}

func MeasureQueryDuration(store, operation string, startTime time.Time) {
	metrics.StoreQueryDurationSeconds.WithLabelValues(store, operation).Observe(time.Since(startTime).Seconds())
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// ErrorType is a low-cardinality label for query error metrics.
func ErrorType(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return "pg_" + pgErr.Code
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return fmt.Sprintf("sqlite_%d", sqliteErr.Code())
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "deadline_exceeded"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	return fmt.Sprintf("%T", err)
}
