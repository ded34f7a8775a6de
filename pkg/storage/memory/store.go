package memory

import "github.com/nsyszr/flowpilot/pkg/storage"

// Store contains all memory-based sub-stores for managing the persistent models
type store struct {
	events *eventStore
}

// NewStore creates a new memory-based Storage interface
func NewStore() storage.Interface {
	return &store{
		events: newEventStore(),
	}
}

// Events returns a sub-store for managing the event model
func (s *store) Events() storage.EventStore {
	return s.events
}

// Close is a no-op, the memory store lives as long as the process.
func (s *store) Close() error {
	return nil
}
