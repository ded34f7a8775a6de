package resource

import (
	"sort"
	"time"

	"github.com/nsyszr/flowpilot/pkg/model"
)

type EventResource struct {
	ID         int64            `json:"id"`
	CaseID     string           `json:"caseId"`
	Activity   string           `json:"activity"`
	TS         int64            `json:"ts"`
	Timestamp  time.Time        `json:"timestamp"`
	Attributes model.Attributes `json:"attributes"`
}

type EventListResource struct {
	Members []*EventResource `json:"members"`
}

func NewEvent(m *model.Event) (out *EventResource) {
	out = &EventResource{
		ID:         m.ID,
		CaseID:     m.CaseID,
		Activity:   m.Activity,
		TS:         m.Timestamp,
		Timestamp:  m.Time(),
		Attributes: m.Attributes,
	}

	if out.Attributes == nil {
		out.Attributes = model.Attributes{}
	}

	return // out
}

// NewEventList keeps the store order, or sorts newest first when desc is
// set.
func NewEventList(m []model.Event, desc bool) (out *EventListResource) {
	out = &EventListResource{
		Members: make([]*EventResource, 0, len(m)),
	}

	for i := range m {
		out.Members = append(out.Members, NewEvent(&m[i]))
	}

	if desc {
		sort.SliceStable(out.Members, func(i, j int) bool {
			return out.Members[i].TS > out.Members[j].TS
		})
	}

	return // out
}
