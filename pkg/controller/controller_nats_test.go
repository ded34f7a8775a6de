package controller

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/test"
	nats "github.com/nats-io/nats.go"
	"github.com/nsyszr/flowpilot/pkg/export"
	"github.com/nsyszr/flowpilot/pkg/model"
	"github.com/nsyszr/flowpilot/pkg/storage"
	"github.com/nsyszr/flowpilot/pkg/storage/memory"
	"github.com/nsyszr/flowpilot/pkg/transport"
	"github.com/nsyszr/flowpilot/pkg/transport/natsio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type natsFixture struct {
	url   string
	store storage.Interface
	sink  *memorySink
	ctrl  *Controller
}

// newNATSFixture starts an embedded server and a subscribed controller
// backed by a memory store.
func newNATSFixture(t *testing.T) *natsFixture {
	srv := natsserver.RunRandClientPortServer()
	t.Cleanup(srv.Shutdown)

	f := &natsFixture{
		url:   srv.ClientURL(),
		store: memory.NewStore(),
		sink:  &memorySink{},
	}
	f.ctrl = f.newController(t)

	return f
}

func (f *natsFixture) newController(t *testing.T) *Controller {
	nc, err := nats.Connect(f.url)
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	stores := storage.NewInitializer(func(context.Context) (storage.Interface, error) {
		return f.store, nil
	})
	ctrl := NewController(nc, stores, f.sink)
	require.NoError(t, ctrl.Subscribe())
	require.NoError(t, nc.Flush())
	t.Cleanup(ctrl.Unsubscribe)

	return ctrl
}

func (f *natsFixture) client(t *testing.T) *natsio.Client {
	c, err := natsio.Connect(f.url, 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestNATSSendIsStored(t *testing.T) {
	f := newNATSFixture(t)
	c := f.client(t)

	for _, ts := range []int64{3, 1, 2} {
		require.NoError(t, c.Send(context.Background(), &model.Event{CaseID: "c1", Activity: "click #a", Timestamp: ts}))
	}
	require.NoError(t, c.Flush())

	assert.Eventually(t, func() bool {
		return len(fetchAll(t, f.store)) == 3
	}, 2*time.Second, 10*time.Millisecond)

	events := fetchAll(t, f.store)
	assert.Equal(t, int64(3), events[0].Timestamp)
	assert.Equal(t, int64(1), events[1].Timestamp)
	assert.Equal(t, int64(2), events[2].Timestamp)
}

func TestNATSSendWithAck(t *testing.T) {
	f := newNATSFixture(t)
	c := f.client(t)

	reply, err := c.SendWithAck(context.Background(), &model.Event{CaseID: "c1", Activity: "click #a", Timestamp: 1})
	require.NoError(t, err)
	assert.Equal(t, transport.Saved(), *reply)

	// A zero timestamp is sent as ts 0, which counts as missing.
	reply, err = c.SendWithAck(context.Background(), &model.Event{CaseID: "c1", Activity: "click #a"})
	require.NoError(t, err)
	assert.Equal(t, transport.Failed("Invalid event data"), *reply)

	assert.Len(t, fetchAll(t, f.store), 1)
}

func TestNATSFlushCommand(t *testing.T) {
	f := newNATSFixture(t)
	c := f.client(t)

	_, err := c.SendWithAck(context.Background(), &model.Event{
		CaseID:     "c1",
		Activity:   "click #btn",
		Timestamp:  1700000000000,
		Attributes: model.Attributes{model.AttrURL: model.StringValue("https://x.test")},
	})
	require.NoError(t, err)

	reply, err := c.Command(context.Background(), transport.CommandFlushEvents)
	require.NoError(t, err)
	assert.Equal(t, transport.Success("Events flushed to CSV"), *reply)

	f.sink.mu.Lock()
	data := f.sink.files[export.FileName]
	f.sink.mu.Unlock()
	assert.Equal(t,
		"case_id,activity,timestamp,url,title,visible_text,tag\n"+
			"c1,click #btn,2023-11-14T22:13:20.000Z,https://x.test,,,\n",
		string(data))

	reply, err = c.Command(context.Background(), "rewind")
	require.NoError(t, err)
	assert.Equal(t, transport.Failed("Invalid message data"), *reply)
}

func TestNATSQueueGroupStoresOnce(t *testing.T) {
	f := newNATSFixture(t)
	f.newController(t)
	c := f.client(t)

	const n = 10
	for i := 0; i < n; i++ {
		reply, err := c.SendWithAck(context.Background(), &model.Event{CaseID: "c1", Activity: "click #a", Timestamp: int64(i + 1)})
		require.NoError(t, err)
		require.True(t, reply.OK())
	}

	assert.Len(t, fetchAll(t, f.store), n)
}

func TestNATSStoredEventNotification(t *testing.T) {
	f := newNATSFixture(t)
	c := f.client(t)

	watcher, err := nats.Connect(f.url)
	require.NoError(t, err)
	defer watcher.Close()
	sub, err := watcher.SubscribeSync(transport.StoredSubject("session_1_abc"))
	require.NoError(t, err)
	require.NoError(t, watcher.Flush())

	_, err = c.SendWithAck(context.Background(), &model.Event{CaseID: "session_1_abc", Activity: "click #a", Timestamp: 5})
	require.NoError(t, err)

	msg, err := sub.NextMsg(2 * time.Second)
	require.NoError(t, err)

	ev := transport.StoredEvent{}
	require.NoError(t, json.Unmarshal(msg.Data, &ev))
	assert.Equal(t, "session_1_abc", ev.CaseID)
	assert.Equal(t, int64(5), ev.TS)
	assert.NotZero(t, ev.ID)
}
