// Package migrations holds the users schema for each supported SQL dialect
// and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Up applies every pending migration for dialect and returns how many ran.
func Up(ctx context.Context, db *sql.DB, dialect Dialect) (int, error) {
	var gooseDialect goose.Dialect
	switch dialect {
	case Postgres:
		gooseDialect = goose.DialectPostgres
	case SQLite:
		gooseDialect = goose.DialectSQLite3
	default:
		return 0, fmt.Errorf("unsupported migration dialect %q", dialect)
	}

	sub, err := fs.Sub(files, string(dialect))
	if err != nil {
		return 0, fmt.Errorf("open %s migrations: %w", dialect, err)
	}

	provider, err := goose.NewProvider(gooseDialect, db, sub)
	if err != nil {
		return 0, fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("apply %s migrations: %w", dialect, err)
	}
	return len(results), nil
}
