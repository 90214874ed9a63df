package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/authd/internal/common/constants"
	"github.com/AlibekovAA/authd/internal/observability/metrics"
)

// StartPoolMetrics publishes pgx pool statistics until ctx is done.
func StartPoolMetrics(ctx context.Context, pool *pgxpool.Pool, interval time.Duration) {
	startStatsLoop(ctx, interval, func() {
		stats := pool.Stat()
		publishConnections(StorePostgres, stats.AcquiredConns(), stats.IdleConns(), stats.TotalConns(), stats.MaxConns())
	})
}

// StartSQLMetrics publishes database/sql statistics until ctx is done.
func StartSQLMetrics(ctx context.Context, store string, sqlDB *sql.DB, interval time.Duration) {
	startStatsLoop(ctx, interval, func() {
		stats := sqlDB.Stats()
		publishConnections(store, int32(stats.InUse), int32(stats.Idle), int32(stats.OpenConnections), int32(stats.MaxOpenConnections))
	})
}

func startStatsLoop(ctx context.Context, interval time.Duration, publish func()) {
	if interval <= 0 {
		interval = constants.DBPoolMetricsInterval
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				publish()
			}
		}
	}()
}

func publishConnections(store string, inUse, idle, open, max int32) {
	metrics.StoreConnections.WithLabelValues(store, "in_use").Set(float64(inUse))
	metrics.StoreConnections.WithLabelValues(store, "idle").Set(float64(idle))
	metrics.StoreConnections.WithLabelValues(store, "open").Set(float64(open))
	metrics.StoreConnections.WithLabelValues(store, "max").Set(float64(max))
}
