package migrations_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/AlibekovAA/authd/internal/migrations"
)

func TestUp_SQLite(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	defer db.Close()

	applied, err := migrations.Up(context.Background(), db, migrations.SQLite)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	applied, err = migrations.Up(context.Background(), db, migrations.SQLite)
	require.NoError(t, err)
	assert.Zero(t, applied, "second run is a no-op")

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'users'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "users", name)
}

func TestUp_UnknownDialect(t *testing.T) {
	_, err := migrations.Up(context.Background(), nil, migrations.Dialect("oracle"))
	assert.Error(t, err)
}
