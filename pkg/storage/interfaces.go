package storage

import (
	"context"

	"github.com/nsyszr/flowpilot/pkg/model"
)

// Interface is implemented by the storage
type Interface interface {
	Events() EventStore
	Close() error
}

// EventStore is responsible for managing the Event model. It is append-only
// except for Clear. FetchAll and FindByCaseID return events in insertion
// order.
type EventStore interface {
	FetchAll(ctx context.Context) ([]model.Event, error)
	FindByCaseID(ctx context.Context, caseID string) ([]model.Event, error)
	Create(ctx context.Context, m *model.Event) error
	Clear(ctx context.Context) error
}
