//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/AlibekovAA/authd/internal/common/db"
	"github.com/AlibekovAA/authd/internal/common/logger"
	"github.com/AlibekovAA/authd/internal/migrations"
	"github.com/AlibekovAA/authd/internal/user/repository"
)

func TestPgRepository_Integration(t *testing.T) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("authd_test"),
		postgres.WithUsername("authd"),
		postgres.WithPassword("authd"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := db.NewPool(ctx, logger.NewNop(), connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	sqlDB := stdlib.OpenDB(*pool.Config().ConnConfig)
	t.Cleanup(func() { _ = sqlDB.Close() })
	_, err = migrations.Up(ctx, sqlDB, migrations.Postgres)
	require.NoError(t, err)

	repo := repository.NewPgRepository(pool)

	require.NoError(t, repo.Create(ctx, testUser("u-1", "alice")))
	assert.ErrorIs(t, repo.Create(ctx, testUser("u-2", "alice")), repository.ErrUsernameAlreadyExists)

	got, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.True(t, got.CreatedAt.Equal(testUser("u-1", "alice").CreatedAt))

	_, err = repo.FindByUsername(ctx, "bob")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}
