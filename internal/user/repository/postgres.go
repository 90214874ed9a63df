package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"
	"github.com/samber/oops"

	"github.com/AlibekovAA/authd/internal/common/db"
	"github.com/AlibekovAA/authd/internal/user/domain"
)

// dbtx is the part of *pgxpool.Pool the repository needs.
type dbtx interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type PgRepository struct {
	pool dbtx
}

func NewPgRepository(pool dbtx) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, user domain.User) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		string(user.ID),
		user.Username,
		user.PasswordHash,
		user.CreatedAt.UTC(),
	)
	if db.IsUniqueViolation(err) {
		db.MeasureQueryDuration(db.StorePostgres, "create user", start)
		return ErrUsernameAlreadyExists
	}
	if err := db.HandleExecError(err, db.StorePostgres, "create user", start); err != nil {
		return oops.Code("USER_STORE_INSERT_FAILED").
			With("store", db.StorePostgres).
			Wrap(err)
	}
	return nil
}

func (r *PgRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = $1`,
		username,
	)

	var user domain.User
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err := db.HandleQueryError(err, ErrUserNotFound, db.StorePostgres, "find user by username", start); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return domain.User{}, err
		}
		return domain.User{}, oops.Code("USER_STORE_QUERY_FAILED").
			With("store", db.StorePostgres).
			Wrap(err)
	}

	return user, nil
}
