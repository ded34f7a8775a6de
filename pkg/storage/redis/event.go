package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nsyszr/flowpilot/pkg/model"
	"github.com/nsyszr/flowpilot/pkg/storage"
	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

type eventStore struct {
	client goredis.Cmdable
	key    string
}

func newEventStore(client goredis.Cmdable, key string) *eventStore {
	return &eventStore{
		client: client,
		key:    key,
	}
}

type redisDataEvent struct {
	ID         int64            `json:"id"`
	CaseID     string           `json:"caseId"`
	Activity   string           `json:"activity"`
	Timestamp  int64            `json:"ts"`
	Attributes model.Attributes `json:"attributes,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
}

func (d *redisDataEvent) Model() *model.Event {
	return &model.Event{
		ID:         d.ID,
		CaseID:     d.CaseID,
		Activity:   d.Activity,
		Timestamp:  d.Timestamp,
		Attributes: d.Attributes,
		CreatedAt:  d.CreatedAt,
	}
}

// wrapError marks a closed client and lost connections as unavailable
// storage.
func wrapError(err error, message string) error {
	if errors.Is(err, goredis.ErrClosed) {
		return storage.NewUnavailableError(errors.Wrap(err, message))
	}
	return storage.WrapConnectionError(err, message)
}

func (s *eventStore) seqKey() string {
	return s.key + ":seq"
}

func (s *eventStore) FetchAll(ctx context.Context) ([]model.Event, error) {
	return s.fetch(ctx, func(*model.Event) bool { return true })
}

func (s *eventStore) FindByCaseID(ctx context.Context, caseID string) ([]model.Event, error) {
	return s.fetch(ctx, func(m *model.Event) bool { return m.CaseID == caseID })
}

func (s *eventStore) fetch(ctx context.Context, match func(*model.Event) bool) ([]model.Event, error) {
	items, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, wrapError(err, "failed to fetch events")
	}

	models := make([]model.Event, 0, len(items))
	for _, item := range items {
		d := redisDataEvent{}
		if err := json.Unmarshal([]byte(item), &d); err != nil {
			return nil, errors.Wrap(err, "failed to decode stored event")
		}
		if m := d.Model(); match(m) {
			models = append(models, *m)
		}
	}

	return models, nil
}

func (s *eventStore) Create(ctx context.Context, m *model.Event) error {
	if err := storage.Validate(m); err != nil {
		return err
	}

	id, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return wrapError(err, "failed to allocate event id")
	}

	d := redisDataEvent{
		ID:         id,
		CaseID:     m.CaseID,
		Activity:   m.Activity,
		Timestamp:  m.Timestamp,
		Attributes: m.Attributes,
		CreatedAt:  time.Now().Round(time.Second).UTC(),
	}
	data, err := json.Marshal(d)
	if err != nil {
		return errors.Wrap(err, "failed to encode event")
	}

	n, err := s.client.RPush(ctx, s.key, data).Result()
	if err != nil {
		return wrapError(err, "failed to create event")
	}
	log.Debugf("redis: event added, total events: %d", n)

	m.ID = d.ID
	m.CreatedAt = d.CreatedAt

	return nil
}

// Clear deletes the list. The id sequence is kept.
func (s *eventStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return wrapError(err, "failed to clear events")
	}

	return nil
}
