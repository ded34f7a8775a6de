// Package capture turns raw click interactions into event records and hands
// them to the transport.
package capture

import (
	"context"
	"strings"
	"time"

	"github.com/nsyszr/flowpilot/pkg/model"
	"github.com/nsyszr/flowpilot/pkg/selector"
	"github.com/nsyszr/flowpilot/pkg/transport"
	log "github.com/sirupsen/logrus"
)

// MaxVisibleText is the rune limit of the visible_text attribute.
const MaxVisibleText = 100

// Mouse buttons
const (
	ButtonPrimary   = 0
	ButtonAuxiliary = 1
	ButtonSecondary = 2
)

// Target is the element an interaction happened on.
type Target interface {
	selector.Element
	TextContent() string
}

// Page is the context of the document the interaction happened in.
type Page struct {
	URL   string
	Title string
}

// Interaction is a raw click.
type Interaction struct {
	Button   int
	CtrlKey  bool
	AltKey   bool
	ShiftKey bool
	MetaKey  bool
	Target   Target
	Page     Page
}

// Primary reports whether the interaction is a plain primary click.
func (in *Interaction) Primary() bool {
	return in.Button == ButtonPrimary && !in.CtrlKey && !in.AltKey && !in.ShiftKey && !in.MetaKey
}

// Recorder normalizes the interactions of one capture lifetime. All events
// share the case id given at creation.
type Recorder struct {
	caseID string
	sender transport.Sender
	now    func() time.Time
}

func NewRecorder(caseID string, sender transport.Sender) *Recorder {
	return &Recorder{
		caseID: caseID,
		sender: sender,
		now:    time.Now,
	}
}

// CaseID returns the case id stamped on every event.
func (r *Recorder) CaseID() string {
	return r.caseID
}

// OnInteraction normalizes in and sends it. It returns false, and sends
// nothing, for secondary or modified clicks and for clicks without a target.
// Send failures are logged and not retried.
func (r *Recorder) OnInteraction(ctx context.Context, in Interaction) (*model.Event, bool) {
	if !in.Primary() || in.Target == nil {
		return nil, false
	}

	m := r.Normalize(in)

	log.WithFields(log.Fields{
		"case_id":  m.CaseID,
		"activity": m.Activity,
	}).Debug("capture: click captured")

	if err := r.sender.Send(ctx, m); err != nil {
		log.Errorf("capture: failed to send event: %s", err)
	}

	return m, true
}

// Normalize builds the event record of an accepted interaction.
func (r *Recorder) Normalize(in Interaction) *model.Event {
	return &model.Event{
		CaseID:    r.caseID,
		Activity:  "click " + selector.Resolve(in.Target),
		Timestamp: r.now().UnixMilli(),
		Attributes: model.Attributes{
			model.AttrURL:         model.StringValue(in.Page.URL),
			model.AttrTitle:       model.StringValue(in.Page.Title),
			model.AttrVisibleText: model.StringValue(VisibleText(in.Target.TextContent())),
			model.AttrTag:         model.StringValue(strings.ToLower(in.Target.TagName())),
		},
	}
}

// VisibleText trims s and cuts it to MaxVisibleText runes.
func VisibleText(s string) string {
	s = strings.TrimSpace(s)

	runes := []rune(s)
	if len(runes) > MaxVisibleText {
		return string(runes[:MaxVisibleText])
	}
	return s
}
