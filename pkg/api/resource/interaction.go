package resource

import (
	"github.com/nsyszr/flowpilot/pkg/capture"
	"github.com/nsyszr/flowpilot/pkg/selector"
)

// InteractionResource is a raw click as posted by a browser shim.
type InteractionResource struct {
	CaseID   string             `json:"caseId"`
	Button   int                `json:"button"`
	CtrlKey  bool               `json:"ctrlKey"`
	AltKey   bool               `json:"altKey"`
	ShiftKey bool               `json:"shiftKey"`
	MetaKey  bool               `json:"metaKey"`
	Target   *selector.Snapshot `json:"target"`
	URL      string             `json:"url"`
	Title    string             `json:"title"`
}

func (r *InteractionResource) Interaction() capture.Interaction {
	in := capture.Interaction{
		Button:   r.Button,
		CtrlKey:  r.CtrlKey,
		AltKey:   r.AltKey,
		ShiftKey: r.ShiftKey,
		MetaKey:  r.MetaKey,
		Page:     capture.Page{URL: r.URL, Title: r.Title},
	}
	if r.Target != nil {
		in.Target = r.Target
	}
	return in
}

type CapturedResource struct {
	CaseID   string `json:"caseId"`
	Recorded bool   `json:"recorded"`
	Activity string `json:"activity,omitempty"`
	TS       int64  `json:"ts,omitempty"`
}
