// Package sqlstore keeps events in a SQL database through sqlx. It backs
// both the PostgreSQL and the SQLite driver.
package sqlstore

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/nsyszr/flowpilot/pkg/storage"
	"github.com/nsyszr/flowpilot/pkg/storage/migrations"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	// Register the database drivers
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// store contains all SQL based sub-stores for managing the models
type store struct {
	db     *sqlx.DB
	events *eventStore
}

// NewStore creates a new SQL based Storage interface on top of an already
// migrated database.
func NewStore(db *sqlx.DB) storage.Interface {
	return &store{
		db:     db,
		events: newEventStore(db),
	}
}

// OpenPostgres connects to PostgreSQL, applies the schema and returns the
// store.
func OpenPostgres(ctx context.Context, url string) (storage.Interface, error) {
	return open(ctx, "postgres", url, migrations.DialectPostgres)
}

// OpenSQLite opens (or creates) the SQLite database file at path, applies
// the schema and returns the store. Use ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, path string) (storage.Interface, error) {
	dsn := "file:" + path + "?_time_format=sqlite&_pragma=busy_timeout(5000)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}
	return open(ctx, "sqlite", dsn, migrations.DialectSQLite)
}

func open(ctx context.Context, driver, dsn, dialect string) (storage.Interface, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	if driver == "sqlite" {
		// SQLite serializes writers; one connection also keeps an in-memory
		// database alive across calls.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	n, err := migrations.Up(db.DB, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	log.WithFields(log.Fields{
		"driver":     driver,
		"migrations": n,
	}).Debug("sqlstore: schema ready")

	return NewStore(db), nil
}

// Events returns a sub-store for managing the Event model
func (s *store) Events() storage.EventStore {
	return s.events
}

// Close closes the database connection pool
func (s *store) Close() error {
	return s.db.Close()
}
