// Package migrations holds the SQL schema of the event stores and applies it
// with sql-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pkg/errors"
	migrate "github.com/rubenv/sql-migrate"
)

// Supported sql-migrate dialects.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Source returns the migration source for the given dialect.
func Source(dialect string) (migrate.MigrationSource, error) {
	switch dialect {
	case DialectPostgres:
		return &migrate.EmbedFileSystemMigrationSource{FileSystem: files, Root: "postgres"}, nil
	case DialectSQLite:
		return &migrate.EmbedFileSystemMigrationSource{FileSystem: files, Root: "sqlite"}, nil
	}
	return nil, fmt.Errorf("migrations: unsupported dialect '%s'", dialect)
}

// Up applies all pending migrations and returns how many were applied.
// Running it against an up-to-date schema is a no-op.
func Up(db *sql.DB, dialect string) (int, error) {
	src, err := Source(dialect)
	if err != nil {
		return 0, err
	}

	n, err := migrate.Exec(db, dialect, src, migrate.Up)
	if err != nil {
		return 0, errors.Wrap(err, "failed to apply migrations")
	}

	return n, nil
}
