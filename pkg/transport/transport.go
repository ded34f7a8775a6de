// Package transport defines how event records travel from the capture side
// to the persistence side. Delivery is best effort: a message may be lost
// when nobody listens, and it may arrive more than once.
package transport

import (
	"context"

	"github.com/nsyszr/flowpilot/pkg/model"
)

// NATS subjects used between the capture and the persistence side.
const (
	SubjectEvents       = "flowpilot.v1.events.record"
	SubjectCommands     = "flowpilot.v1.commands"
	SubjectStoredPrefix = "flowpilot.v1.events.stored."
	QueuePersistence    = "flowpilot.v1.queue.persistence"
)

// Sender delivers events fire-and-forget. A nil error means the message left
// the sender, not that it was stored.
type Sender interface {
	Send(ctx context.Context, m *model.Event) error
}

// Handler is implemented by the receiving side. HandleMessage dispatches the
// raw message and returns immediately; the reply is delivered on the
// returned channel once processing is done. The channel receives exactly one
// value.
type Handler interface {
	HandleMessage(ctx context.Context, data []byte) <-chan Reply
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, data []byte) <-chan Reply

func (f HandlerFunc) HandleMessage(ctx context.Context, data []byte) <-chan Reply {
	return f(ctx, data)
}

// Resolved returns an already completed reply channel.
func Resolved(r Reply) <-chan Reply {
	ch := make(chan Reply, 1)
	ch <- r
	return ch
}
