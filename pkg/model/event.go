package model

import "time"

// Event is a model of the persistency layer. It is one captured user
// interaction belonging to the trace identified by CaseID.
type Event struct {
	ID         int64
	CaseID     string
	Activity   string
	Timestamp  int64 // epoch milliseconds at capture time
	Attributes Attributes

	CreatedAt time.Time
}

// Conventional attribute keys set by the capture side.
const (
	AttrURL         = "url"
	AttrTitle       = "title"
	AttrVisibleText = "visible_text"
	AttrTag         = "tag"
)

// Time returns the capture time as UTC time.
func (e *Event) Time() time.Time {
	return time.UnixMilli(e.Timestamp).UTC()
}

// Clone returns a deep copy of the event. Stores keep clones so callers can
// never mutate a persisted record through a shared map.
func (e *Event) Clone() Event {
	out := *e
	out.Attributes = e.Attributes.Clone()
	return out
}

// NowMillis returns the current epoch time in milliseconds.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
