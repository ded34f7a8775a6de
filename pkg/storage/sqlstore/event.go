package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nsyszr/flowpilot/pkg/model"
	"github.com/nsyszr/flowpilot/pkg/storage"
	"github.com/pkg/errors"
)

func newEventStore(db *sqlx.DB) *eventStore {
	return &eventStore{
		db: db,
	}
}

type eventStore struct {
	db *sqlx.DB
}

type sqlDataEvent struct {
	ID         int64     `db:"id"`
	CaseID     string    `db:"case_id"`
	Activity   string    `db:"activity"`
	Timestamp  int64     `db:"ts"`
	Attributes string    `db:"attributes"`
	CreatedAt  time.Time `db:"created_at"`
}

var sqlParamsEvent = []string{
	"id",
	"case_id",
	"activity",
	"ts",
	"attributes",
	"created_at",
}

func (d *sqlDataEvent) Scan(m *model.Event) error {
	createdAt := m.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().Round(time.Second).UTC()
	}

	attrs := []byte("{}")
	if len(m.Attributes) > 0 {
		var err error
		if attrs, err = json.Marshal(m.Attributes); err != nil {
			return err
		}
	}

	d.ID = m.ID
	d.CaseID = m.CaseID
	d.Activity = m.Activity
	d.Timestamp = m.Timestamp
	d.Attributes = string(attrs)
	d.CreatedAt = createdAt

	return nil
}

func (d *sqlDataEvent) Model() (*model.Event, error) {
	m := &model.Event{
		ID:        d.ID,
		CaseID:    d.CaseID,
		Activity:  d.Activity,
		Timestamp: d.Timestamp,
		CreatedAt: d.CreatedAt.UTC(),
	}

	if d.Attributes != "" && d.Attributes != "{}" {
		if err := json.Unmarshal([]byte(d.Attributes), &m.Attributes); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (s *eventStore) FetchAll(ctx context.Context) ([]model.Event, error) {
	return fetchEvents(ctx, s.db, "SELECT "+selectColumns()+" FROM events ORDER BY id")
}

func (s *eventStore) FindByCaseID(ctx context.Context, caseID string) ([]model.Event, error) {
	return fetchEvents(ctx, s.db, "SELECT "+selectColumns()+" FROM events WHERE case_id=? ORDER BY id", caseID)
}

func (s *eventStore) Create(ctx context.Context, m *model.Event) error {
	if err := storage.Validate(m); err != nil {
		return err
	}
	return createEvent(ctx, s.db, m)
}

func (s *eventStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM events"); err != nil {
		return storage.WrapConnectionError(err, "failed to clear events")
	}

	return nil
}

func selectColumns() string {
	return strings.Join(sqlParamsEvent, ", ")
}

func fetchEvents(ctx context.Context, db *sqlx.DB, query string, args ...interface{}) ([]model.Event, error) {
	rows := make([]sqlDataEvent, 0)
	if err := db.SelectContext(ctx, &rows, db.Rebind(query), args...); err != nil {
		return nil, storage.WrapConnectionError(err, "failed to fetch events")
	}

	models := make([]model.Event, 0, len(rows))
	for _, d := range rows {
		m, err := d.Model()
		if err != nil {
			return nil, errors.Wrap(err, "failed to convert SQL data to event model")
		}

		models = append(models, *m)
	}

	return models, nil
}

func createEvent(ctx context.Context, db *sqlx.DB, m *model.Event) error {
	d := sqlDataEvent{}
	if err := d.Scan(m); err != nil {
		return errors.Wrap(err, "failed to convert event model to SQL data")
	}

	// Remove the id column because the database assigns it
	sqlParamsWithoutID := make([]string, 0)
	for _, s := range sqlParamsEvent {
		if s != "id" {
			sqlParamsWithoutID = append(sqlParamsWithoutID, s)
		}
	}

	query := fmt.Sprintf(
		"INSERT INTO events (%s) VALUES (%s) RETURNING id",
		strings.Join(sqlParamsWithoutID, ", "),
		":"+strings.Join(sqlParamsWithoutID, ", :"),
	)
	rows, err := db.NamedQueryContext(ctx, query, d)
	if err != nil {
		return storage.WrapConnectionError(err, "failed to create event")
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&m.ID); err != nil {
			return storage.WrapConnectionError(err, "failed to read event id")
		}
	}
	if err := rows.Err(); err != nil {
		return storage.WrapConnectionError(err, "failed to create event")
	}

	m.CreatedAt = d.CreatedAt

	return nil
}
