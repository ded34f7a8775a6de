package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/nsyszr/flowpilot/pkg/model"
	"github.com/nsyszr/flowpilot/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collector struct {
	mu       sync.Mutex
	messages []*transport.Message
	block    chan struct{}
}

func (c *collector) HandleMessage(ctx context.Context, data []byte) <-chan transport.Reply {
	if c.block != nil {
		<-c.block
	}
	msg, err := transport.Decode(data)
	if err != nil {
		return transport.Resolved(transport.Failed(transport.ErrMsgInvalidMessage))
	}

	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()

	return transport.Resolved(transport.Saved())
}

func event(ts int64) *model.Event {
	return &model.Event{CaseID: "c1", Activity: "click #a", Timestamp: ts}
}

func TestChannelDeliversInOrder(t *testing.T) {
	h := &collector{}
	ch := NewChannel(h, 10)

	for i := int64(1); i <= 5; i++ {
		require.NoError(t, ch.Send(context.Background(), event(i)))
	}
	ch.Close()

	require.Len(t, h.messages, 5)
	for i, msg := range h.messages {
		assert.Equal(t, float64(i+1), *msg.TS)
	}
	assert.Zero(t, ch.Dropped())
}

func TestChannelDropsWhenFull(t *testing.T) {
	h := &collector{block: make(chan struct{})}
	ch := NewChannel(h, 1)

	// The pump takes at most one message and blocks in the handler, the
	// buffer holds one more. Everything else is lost.
	for i := int64(1); i <= 5; i++ {
		assert.NoError(t, ch.Send(context.Background(), event(i)))
	}
	assert.GreaterOrEqual(t, ch.Dropped(), uint64(3))

	close(h.block)
	ch.Close()

	assert.Equal(t, uint64(5), uint64(len(h.messages))+ch.Dropped())
}

func TestChannelSendAfterClose(t *testing.T) {
	h := &collector{}
	ch := NewChannel(h, 1)
	ch.Close()
	ch.Close()

	assert.NoError(t, ch.Send(context.Background(), event(1)))
	assert.Equal(t, uint64(1), ch.Dropped())
	assert.Empty(t, h.messages)
}
