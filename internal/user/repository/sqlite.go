package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/oops"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/AlibekovAA/authd/internal/common/constants"
	"github.com/AlibekovAA/authd/internal/common/db"
	"github.com/AlibekovAA/authd/internal/user/domain"
)

type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database file at path. Writes
// are serialised through a single connection; readers wait on the busy
// timeout instead of failing.
func OpenSQLite(path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
		cleanPath, constants.SQLiteBusyTimeout.Milliseconds())
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return sqlDB, nil
}

func NewSQLiteRepository(sqlDB *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: sqlDB}
}

func (r *SQLiteRepository) Create(ctx context.Context, user domain.User) error {
	start := time.Now()
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		string(user.ID),
		user.Username,
		user.PasswordHash,
		user.CreatedAt.UTC().UnixMilli(),
	)
	if isUniqueViolation(err) {
		db.MeasureQueryDuration(db.StoreSQLite, "create user", start)
		return ErrUsernameAlreadyExists
	}
	if err := db.HandleExecError(err, db.StoreSQLite, "create user", start); err != nil {
		return oops.Code("USER_STORE_INSERT_FAILED").
			With("store", db.StoreSQLite).
			Wrap(err)
	}
	return nil
}

func (r *SQLiteRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	start := time.Now()
	row := r.db.QueryRowContext(
		ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`,
		username,
	)

	var (
		user      domain.User
		createdAt int64
	)
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &createdAt)
	if err := db.HandleQueryError(err, ErrUserNotFound, db.StoreSQLite, "find user by username", start); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return domain.User{}, err
		}
		return domain.User{}, oops.Code("USER_STORE_QUERY_FAILED").
			With("store", db.StoreSQLite).
			Wrap(err)
	}

	user.CreatedAt = time.UnixMilli(createdAt).UTC()
	return user, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed: users.username")
}
