package transport

import (
	"encoding/json"
	"math"

	"github.com/nsyszr/flowpilot/pkg/model"
)

// Reply statuses
const (
	StatusSaved   = "saved"
	StatusSuccess = "success"
	StatusError   = "error"
)

// Commands understood by the persistence side.
const (
	CommandFlushEvents = "flushEvents"
)

// Error messages reported to the sender.
const (
	ErrMsgInvalidEvent   = "Invalid event data"
	ErrMsgInvalidMessage = "Invalid message data"
)

// MaxTimestamp bounds ts to the range of a JavaScript Date, in epoch
// milliseconds either side of 1970.
const MaxTimestamp = 8.64e15

// Message is the wire form of an inbound message. It is either an event
// (caseId, activity, ts, attributes) or a command.
type Message struct {
	CaseID     string           `json:"caseId,omitempty"`
	Activity   string           `json:"activity,omitempty"`
	TS         *float64         `json:"ts,omitempty"`
	Attributes model.Attributes `json:"attributes,omitempty"`
	Command    string           `json:"command,omitempty"`
}

// Reply is the answer to a Message.
type Reply struct {
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// NewMessage converts an event to its wire form.
func NewMessage(m *model.Event) *Message {
	ts := float64(m.Timestamp)
	return &Message{
		CaseID:     m.CaseID,
		Activity:   m.Activity,
		TS:         &ts,
		Attributes: m.Attributes,
	}
}

// Encode marshals the event to its wire form.
func Encode(m *model.Event) ([]byte, error) {
	return json.Marshal(NewMessage(m))
}

// Decode unmarshals a raw message.
func Decode(data []byte) (*Message, error) {
	msg := &Message{}
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// IsCommand reports whether the message carries a command.
func (msg *Message) IsCommand() bool {
	return msg.Command != ""
}

// Valid reports whether all mandatory event fields are set. A zero ts counts
// as missing, a ts outside +-MaxTimestamp as invalid.
func (msg *Message) Valid() bool {
	if msg.CaseID == "" || msg.Activity == "" || msg.TS == nil {
		return false
	}

	ts := *msg.TS
	return ts != 0 && !math.IsNaN(ts) && math.Abs(ts) <= MaxTimestamp
}

// Model converts the message to an event model. Call Valid first.
func (msg *Message) Model() *model.Event {
	m := &model.Event{
		CaseID:     msg.CaseID,
		Activity:   msg.Activity,
		Attributes: msg.Attributes,
	}
	if msg.TS != nil {
		m.Timestamp = int64(*msg.TS)
	}
	return m
}

func Saved() Reply {
	return Reply{Status: StatusSaved}
}

func Success(message string) Reply {
	return Reply{Status: StatusSuccess, Message: message}
}

func Failed(message string) Reply {
	return Reply{Status: StatusError, Error: message}
}

// OK reports whether the reply signals success.
func (r Reply) OK() bool {
	return r.Status != StatusError
}

// StoredEvent is published after an event was persisted.
type StoredEvent struct {
	ID         int64            `json:"id"`
	CaseID     string           `json:"caseId"`
	Activity   string           `json:"activity"`
	TS         int64            `json:"ts"`
	Attributes model.Attributes `json:"attributes,omitempty"`
}

// NewStoredEvent converts a persisted event to its notification form.
func NewStoredEvent(m *model.Event) *StoredEvent {
	return &StoredEvent{
		ID:         m.ID,
		CaseID:     m.CaseID,
		Activity:   m.Activity,
		TS:         m.Timestamp,
		Attributes: m.Attributes,
	}
}

// StoredSubject returns the subject stored-event notifications of caseID are
// published on. Characters not allowed in a subject token become '_'.
func StoredSubject(caseID string) string {
	token := []byte(caseID)
	for i, c := range token {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
		default:
			token[i] = '_'
		}
	}
	if len(token) == 0 {
		token = []byte("_")
	}
	return SubjectStoredPrefix + string(token)
}
