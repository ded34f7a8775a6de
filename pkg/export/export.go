// Package export renders the stored events as an XES-style tabular log.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/nsyszr/flowpilot/pkg/model"
	"github.com/nsyszr/flowpilot/pkg/storage"
	"github.com/pkg/errors"
)

// FileName is the name of the exported log.
const FileName = "log.xes.csv"

// TimeFormat renders timestamps as ISO-8601 instants with milliseconds.
const TimeFormat = "2006-01-02T15:04:05.000Z"

// Header is the fixed first line of the CSV export.
var Header = []string{"case_id", "activity", "timestamp", "url", "title", "visible_text", "tag"}

// StoreProvider returns the store handle to read from. *storage.Initializer
// implements it.
type StoreProvider interface {
	Init(ctx context.Context) (storage.Interface, error)
}

// Exporter reads the full event store and serializes it.
type Exporter struct {
	stores StoreProvider
}

func NewExporter(stores StoreProvider) *Exporter {
	return &Exporter{stores: stores}
}

// Export returns the CSV log. Events appear in store insertion order. On a
// read failure no partial output is returned.
func (e *Exporter) Export(ctx context.Context) ([]byte, error) {
	events, err := e.fetch(ctx)
	if err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	if err := WriteCSV(buf, events); err != nil {
		return nil, newError(err)
	}

	return buf.Bytes(), nil
}

// WriteTo writes the CSV log to w. Nothing is written when reading the store
// fails.
func (e *Exporter) WriteTo(ctx context.Context, w io.Writer) error {
	data, err := e.Export(ctx)
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return newError(err)
	}
	return nil
}

type jsonEvent struct {
	CaseID     string           `json:"caseId"`
	Activity   string           `json:"activity"`
	TS         int64            `json:"ts"`
	Attributes model.Attributes `json:"attributes,omitempty"`
}

// ExportJSON returns all events as a JSON array in insertion order.
func (e *Exporter) ExportJSON(ctx context.Context) ([]byte, error) {
	events, err := e.fetch(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]jsonEvent, 0, len(events))
	for _, m := range events {
		out = append(out, jsonEvent{
			CaseID:     m.CaseID,
			Activity:   m.Activity,
			TS:         m.Timestamp,
			Attributes: m.Attributes,
		})
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, newError(err)
	}
	return data, nil
}

func (e *Exporter) fetch(ctx context.Context) ([]model.Event, error) {
	s, err := e.stores.Init(ctx)
	if err != nil {
		return nil, newError(err)
	}

	events, err := s.Events().FetchAll(ctx)
	if err != nil {
		return nil, newError(err)
	}

	return events, nil
}

// WriteCSV writes the header and one line per event to w.
func WriteCSV(w io.Writer, events []model.Event) error {
	sb := &strings.Builder{}
	writeRow(sb, Header)

	for i := range events {
		writeRow(sb, Row(&events[i]))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// Row returns the CSV fields of one event, unescaped.
func Row(m *model.Event) []string {
	return []string{
		m.CaseID,
		m.Activity,
		m.Time().Format(TimeFormat),
		m.Attributes.Text(model.AttrURL),
		m.Attributes.Text(model.AttrTitle),
		m.Attributes.Text(model.AttrVisibleText),
		m.Attributes.Text(model.AttrTag),
	}
}

func writeRow(sb *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(Escape(f))
	}
	sb.WriteByte('\n')
}

// Escape quotes a field containing a comma, a double quote or a newline and
// doubles its inner quotes. Other fields are returned unchanged.
func Escape(field string) string {
	if !strings.ContainsAny(field, ",\"\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// ErrExportFailed is matched by every error returned from Exporter.
var ErrExportFailed = errors.New("export failed")

type exportError struct {
	cause error
}

func newError(err error) error {
	return &exportError{cause: err}
}

func (e *exportError) Error() string { return ErrExportFailed.Error() + ": " + e.cause.Error() }
func (e *exportError) Cause() error { return e.cause }
func (e *exportError) Unwrap() error { return e.cause }
func (e *exportError) Is(target error) bool { return target == ErrExportFailed }
