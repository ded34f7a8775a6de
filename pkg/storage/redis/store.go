// Package redis keeps all events as one JSON-encoded Redis list, appended to
// on every Create.
package redis

import (
	"context"

	"github.com/nsyszr/flowpilot/pkg/storage"
	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
)

// EventsKey is the list holding the events.
const EventsKey = "workflow_recorder_events"

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

type store struct {
	client *goredis.Client
	events *eventStore
}

// Open connects to Redis and returns the store.
func Open(ctx context.Context, opts Options) (storage.Interface, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "failed to connect to redis")
	}

	return NewStore(client), nil
}

// NewStore creates a Redis based Storage interface with the given client.
func NewStore(client *goredis.Client) storage.Interface {
	return &store{
		client: client,
		events: newEventStore(client, EventsKey),
	}
}

func (s *store) Events() storage.EventStore {
	return s.events
}

func (s *store) Close() error {
	return s.client.Close()
}
