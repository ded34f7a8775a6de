// Package memory is an in-process transport: a bounded channel between the
// capture side and a Handler, pumped by a single goroutine.
package memory

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/nsyszr/flowpilot/pkg/model"
	"github.com/nsyszr/flowpilot/pkg/transport"
	log "github.com/sirupsen/logrus"
)

// DefaultSize is the channel capacity used when none is given.
const DefaultSize = 100

// Channel is a best-effort transport.Sender. Messages that do not fit into
// the buffer, or are sent after Close, are dropped silently.
type Channel struct {
	h     transport.Handler
	inbox chan []byte
	done  chan struct{}

	mu     sync.RWMutex
	closed bool

	dropped uint64
}

// NewChannel creates a channel that dispatches to h and starts its pump.
func NewChannel(h transport.Handler, size int) *Channel {
	if size <= 0 {
		size = DefaultSize
	}

	c := &Channel{
		h:     h,
		inbox: make(chan []byte, size),
		done:  make(chan struct{}),
	}
	go c.pump()

	return c
}

// Send enqueues the event without waiting for it to be handled.
func (c *Channel) Send(ctx context.Context, m *model.Event) error {
	data, err := transport.Encode(m)
	if err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		c.drop("channel closed")
		return nil
	}

	select {
	case c.inbox <- data:
	default:
		c.drop("channel full")
	}

	return nil
}

// Dropped returns the number of messages lost so far.
func (c *Channel) Dropped() uint64 {
	return atomic.LoadUint64(&c.dropped)
}

// Close stops accepting messages and waits until the buffered ones are
// handled.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		<-c.done
		return
	}
	c.closed = true
	close(c.inbox)
	c.mu.Unlock()

	<-c.done
}

func (c *Channel) drop(reason string) {
	atomic.AddUint64(&c.dropped, 1)
	log.WithField("reason", reason).Debug("transport: message dropped")
}

// pump handles one message at a time, like a single-threaded receiver.
func (c *Channel) pump() {
	defer close(c.done)

	for data := range c.inbox {
		reply := <-c.h.HandleMessage(context.Background(), data)
		if !reply.OK() {
			log.Warnf("transport: message rejected: %s", reply.Error)
		}
	}
}
