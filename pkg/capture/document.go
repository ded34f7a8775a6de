package capture

import (
	"context"
	"strings"

	"github.com/nsyszr/flowpilot/pkg/model"
	"github.com/nsyszr/flowpilot/pkg/selector"
	"golang.org/x/net/html"
)

// CaptureDocument clicks every element of doc whose tag is in tags, in
// document order, and returns the recorded events. An empty page title is
// taken from the document's <title>.
func (r *Recorder) CaptureDocument(ctx context.Context, doc *html.Node, page Page, tags []string) []model.Event {
	if page.Title == "" {
		page.Title = Title(doc)
	}

	wanted := make(map[string]bool, len(tags))
	for _, t := range tags {
		wanted[strings.ToLower(t)] = true
	}

	events := make([]model.Event, 0)
	for _, n := range selector.Elements(doc) {
		if !wanted[strings.ToLower(n.Data)] {
			continue
		}

		if m, ok := r.OnInteraction(ctx, Interaction{Button: ButtonPrimary, Target: n, Page: page}); ok {
			events = append(events, *m)
		}
	}

	return events
}

// Title returns the trimmed text of the first <title> element.
func Title(doc *html.Node) string {
	for _, n := range selector.Elements(doc) {
		if n.Data == "title" {
			return strings.TrimSpace(n.TextContent())
		}
	}
	return ""
}
