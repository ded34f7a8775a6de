// Package driver selects the storage backend from the configuration.
package driver

import (
	"context"
	"fmt"

	"github.com/nsyszr/flowpilot/config"
	"github.com/nsyszr/flowpilot/pkg/storage"
	"github.com/nsyszr/flowpilot/pkg/storage/memory"
	"github.com/nsyszr/flowpilot/pkg/storage/redis"
	"github.com/nsyszr/flowpilot/pkg/storage/sqlstore"
)

// Names of the supported backends.
const (
	Memory   = "memory"
	SQLite   = "sqlite"
	Postgres = "postgres"
	Redis    = "redis"
)

// New returns the OpenFunc of the backend named by c.StorageDriver. SQLite is
// the default.
func New(c *config.Config) (storage.OpenFunc, error) {
	switch c.StorageDriver {
	case Memory:
		// The memory store outlives its handles, like a durable medium would.
		s := memory.NewStore()
		return func(context.Context) (storage.Interface, error) {
			return s, nil
		}, nil
	case "", SQLite:
		path := c.SQLitePath
		if path == "" {
			path = "flowpilot.db"
		}
		return func(ctx context.Context) (storage.Interface, error) {
			return sqlstore.OpenSQLite(ctx, path)
		}, nil
	case Postgres:
		return func(ctx context.Context) (storage.Interface, error) {
			return sqlstore.OpenPostgres(ctx, c.DatabaseURL)
		}, nil
	case Redis:
		return func(ctx context.Context) (storage.Interface, error) {
			return redis.Open(ctx, redis.Options{
				Addr:     c.RedisAddr,
				Password: c.RedisPassword,
				DB:       c.RedisDB,
			})
		}, nil
	}

	return nil, fmt.Errorf("unknown storage driver '%s'", c.StorageDriver)
}

// NewInitializer is a shortcut for storage.NewInitializer(New(c)).
func NewInitializer(c *config.Config) (*storage.Initializer, error) {
	open, err := New(c)
	if err != nil {
		return nil, err
	}
	return storage.NewInitializer(open), nil
}
