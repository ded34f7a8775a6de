package natsio

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/test"
	nats "github.com/nats-io/nats.go"
	"github.com/nsyszr/flowpilot/pkg/model"
	"github.com/nsyszr/flowpilot/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runServer(t *testing.T) string {
	s := natsserver.RunRandClientPortServer()
	t.Cleanup(s.Shutdown)
	return s.ClientURL()
}

func testEvent() *model.Event {
	return &model.Event{
		CaseID:     "c1",
		Activity:   "click #btn",
		Timestamp:  1700000000000,
		Attributes: model.Attributes{model.AttrTag: model.StringValue("button")},
	}
}

func TestSendPublishesWithMsgID(t *testing.T) {
	url := runServer(t)

	watcher, err := nats.Connect(url)
	require.NoError(t, err)
	defer watcher.Close()
	sub, err := watcher.SubscribeSync(transport.SubjectEvents)
	require.NoError(t, err)
	require.NoError(t, watcher.Flush())

	c, err := Connect(url, time.Second)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Send(context.Background(), testEvent()))
	require.NoError(t, c.Send(context.Background(), testEvent()))
	require.NoError(t, c.Flush())

	first, err := sub.NextMsg(time.Second)
	require.NoError(t, err)
	second, err := sub.NextMsg(time.Second)
	require.NoError(t, err)

	// Fire and forget: nobody is asked to reply.
	assert.Empty(t, first.Reply)
	assert.NotEmpty(t, first.Header.Get(nats.MsgIdHdr))
	assert.NotEqual(t, first.Header.Get(nats.MsgIdHdr), second.Header.Get(nats.MsgIdHdr))

	msg, err := transport.Decode(first.Data)
	require.NoError(t, err)
	assert.True(t, msg.Valid())
	assert.Equal(t, "c1", msg.CaseID)
	assert.Equal(t, "button", msg.Attributes.Text(model.AttrTag))
}

func TestSendWithAck(t *testing.T) {
	url := runServer(t)

	responder, err := nats.Connect(url)
	require.NoError(t, err)
	defer responder.Close()
	_, err = responder.Subscribe(transport.SubjectEvents, func(m *nats.Msg) {
		assert.NotEmpty(t, m.Header.Get(nats.MsgIdHdr))
		data, _ := json.Marshal(transport.Saved())
		m.Respond(data)
	})
	require.NoError(t, err)
	require.NoError(t, responder.Flush())

	c, err := Connect(url, time.Second)
	require.NoError(t, err)
	defer c.Close()

	reply, err := c.SendWithAck(context.Background(), testEvent())
	require.NoError(t, err)
	assert.Equal(t, transport.StatusSaved, reply.Status)
}

func TestRequestTimeout(t *testing.T) {
	url := runServer(t)

	c, err := Connect(url, 50*time.Millisecond)
	require.NoError(t, err)
	defer c.Close()

	// Nobody is subscribed.
	_, err = c.Command(context.Background(), transport.CommandFlushEvents)
	assert.Error(t, err)
}

func TestNewClientDoesNotCloseForeignConnection(t *testing.T) {
	url := runServer(t)

	nc, err := nats.Connect(url)
	require.NoError(t, err)
	defer nc.Close()

	c := NewClient(nc, 0)
	c.Close()
	assert.True(t, nc.IsConnected())
}

func TestConnectUnreachable(t *testing.T) {
	_, err := Connect("nats://127.0.0.1:1", time.Second)
	assert.Error(t, err)
}
