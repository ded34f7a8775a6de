package memory

import (
	"context"
	"sync"
	"time"

	"github.com/nsyszr/flowpilot/pkg/model"
	"github.com/nsyszr/flowpilot/pkg/storage"
)

type eventStore struct {
	store  []model.Event
	nextID int64
	sync.RWMutex
}

func newEventStore() *eventStore {
	return &eventStore{
		store:  make([]model.Event, 0),
		nextID: 1,
	}
}

func (s *eventStore) FetchAll(ctx context.Context) ([]model.Event, error) {
	s.RLock()
	defer s.RUnlock()

	models := make([]model.Event, 0, len(s.store))
	for i := range s.store {
		models = append(models, s.store[i].Clone())
	}

	return models, nil
}

func (s *eventStore) FindByCaseID(ctx context.Context, caseID string) ([]model.Event, error) {
	s.RLock()
	defer s.RUnlock()

	models := make([]model.Event, 0)
	for i := range s.store {
		if s.store[i].CaseID == caseID {
			models = append(models, s.store[i].Clone())
		}
	}

	return models, nil
}

func (s *eventStore) Create(ctx context.Context, m *model.Event) error {
	if err := storage.Validate(m); err != nil {
		return err
	}

	s.Lock()
	defer s.Unlock()

	m.ID = s.getNextID()
	m.CreatedAt = time.Now().Round(time.Second).UTC()

	s.store = append(s.store, m.Clone())

	return nil
}

// Clear removes all events. IDs keep increasing afterwards.
func (s *eventStore) Clear(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	s.store = make([]model.Event, 0)

	return nil
}

func (s *eventStore) getNextID() int64 {
	id := s.nextID
	s.nextID++
	return id
}
