package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	pgx "github.com/jackc/pgx/v4"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/authd/internal/user/domain"
)

type fakeRow struct {
	scanFunc func(dest ...interface{}) error
}

func (r fakeRow) Scan(dest ...interface{}) error {
	return r.scanFunc(dest...)
}

type fakeDB struct {
	execFunc     func(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	queryRowFunc func(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	return f.execFunc(ctx, sql, args...)
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return f.queryRowFunc(ctx, sql, args...)
}

func assertOopsCode(t *testing.T, err error, code string) {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T", err)
	assert.Equal(t, code, oopsErr.Code())
}

func TestPgRepository_Create(t *testing.T) {
	user := domain.User{ID: "u-1", Username: "alice", PasswordHash: "hash", CreatedAt: time.Now()}

	t.Run("success", func(t *testing.T) {
		var gotArgs []interface{}
		repo := NewPgRepository(&fakeDB{execFunc: func(_ context.Context, _ string, args ...interface{}) (pgconn.CommandTag, error) {
			gotArgs = args
			return pgconn.CommandTag("INSERT 0 1"), nil
		}})

		require.NoError(t, repo.Create(context.Background(), user))
		require.Len(t, gotArgs, 4)
		assert.Equal(t, "u-1", gotArgs[0])
		assert.Equal(t, "alice", gotArgs[1])
	})

	t.Run("unique violation", func(t *testing.T) {
		repo := NewPgRepository(&fakeDB{execFunc: func(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
			return nil, &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_username_key"}
		}})

		assert.ErrorIs(t, repo.Create(context.Background(), user), ErrUsernameAlreadyExists)
	})

	t.Run("io failure", func(t *testing.T) {
		boom := errors.New("connection reset")
		repo := NewPgRepository(&fakeDB{execFunc: func(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
			return nil, boom
		}})

		err := repo.Create(context.Background(), user)
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrUsernameAlreadyExists)
		assertOopsCode(t, err, "USER_STORE_INSERT_FAILED")
	})
}

func TestPgRepository_FindByUsername(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		repo := NewPgRepository(&fakeDB{queryRowFunc: func(_ context.Context, _ string, args ...interface{}) pgx.Row {
			assert.Equal(t, "alice", args[0])
			return fakeRow{scanFunc: func(dest ...interface{}) error {
				*dest[0].(*domain.ID) = "u-1"
				*dest[1].(*string) = "alice"
				*dest[2].(*string) = "hash"
				*dest[3].(*time.Time) = created
				return nil
			}}
		}})

		user, err := repo.FindByUsername(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, domain.User{ID: "u-1", Username: "alice", PasswordHash: "hash", CreatedAt: created}, user)
	})

	t.Run("not found", func(t *testing.T) {
		repo := NewPgRepository(&fakeDB{queryRowFunc: func(context.Context, string, ...interface{}) pgx.Row {
			return fakeRow{scanFunc: func(...interface{}) error { return pgx.ErrNoRows }}
		}})

		_, err := repo.FindByUsername(context.Background(), "ghost")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("io failure", func(t *testing.T) {
		repo := NewPgRepository(&fakeDB{queryRowFunc: func(context.Context, string, ...interface{}) pgx.Row {
			return fakeRow{scanFunc: func(...interface{}) error { return errors.New("timeout") }}
		}})

		_, err := repo.FindByUsername(context.Background(), "alice")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUserNotFound)
		assertOopsCode(t, err, "USER_STORE_QUERY_FAILED")
	})
}
