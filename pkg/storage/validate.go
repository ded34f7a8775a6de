package storage

import "github.com/nsyszr/flowpilot/pkg/model"

// Validate checks the mandatory fields of an event before it is appended.
// A zero timestamp is replaced by the current time.
func Validate(m *model.Event) error {
	if m == nil || m.CaseID == "" || m.Activity == "" {
		return ErrInvalidEvent
	}

	if m.Timestamp == 0 {
		m.Timestamp = model.NowMillis()
	}

	return nil
}
