// Package natsio carries events and commands over NATS.
package natsio

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	nats "github.com/nats-io/nats.go"
	"github.com/nsyszr/flowpilot/pkg/model"
	"github.com/nsyszr/flowpilot/pkg/transport"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DefaultTimeout bounds request/reply round trips.
const DefaultTimeout = 10 * time.Second

// Client is the capture-side end of the NATS transport.
type Client struct {
	nc      *nats.Conn
	timeout time.Duration
	owned   bool
}

// Connect opens a NATS connection owned by the returned client.
func Connect(url string, timeout time.Duration) (*Client, error) {
	nc, err := nats.Connect(url, nats.Name("flowpilot-capture"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to nats")
	}

	c := NewClient(nc, timeout)
	c.owned = true

	return c, nil
}

// NewClient wraps an existing connection.
func NewClient(nc *nats.Conn, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		nc:      nc,
		timeout: timeout,
	}
}

// Send publishes the event without a reply subject. Nobody acknowledges it;
// if no persistence side is subscribed the event is lost.
func (c *Client) Send(ctx context.Context, m *model.Event) error {
	msg, err := newEventMsg(m)
	if err != nil {
		return err
	}

	return c.nc.PublishMsg(msg)
}

// SendWithAck publishes the event as a request and waits for the reply of
// the persistence side.
func (c *Client) SendWithAck(ctx context.Context, m *model.Event) (*transport.Reply, error) {
	msg, err := newEventMsg(m)
	if err != nil {
		return nil, err
	}

	return c.request(ctx, msg)
}

// Command sends a command, e.g. transport.CommandFlushEvents, and waits for
// the reply.
func (c *Client) Command(ctx context.Context, command string) (*transport.Reply, error) {
	data, err := json.Marshal(transport.Message{Command: command})
	if err != nil {
		return nil, err
	}

	msg := nats.NewMsg(transport.SubjectCommands)
	msg.Header.Set(nats.MsgIdHdr, uuid.NewString())
	msg.Data = data

	return c.request(ctx, msg)
}

// Flush waits until the server processed all buffered publishes.
func (c *Client) Flush() error {
	return c.nc.Flush()
}

// Close closes the connection if the client opened it.
func (c *Client) Close() {
	if c.owned {
		c.nc.Close()
	}
}

func (c *Client) request(ctx context.Context, msg *nats.Msg) (*transport.Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.nc.RequestMsgWithContext(ctx, msg)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}

	reply := &transport.Reply{}
	if err := json.Unmarshal(res.Data, reply); err != nil {
		return nil, errors.Wrap(err, "invalid reply")
	}

	return reply, nil
}

func newEventMsg(m *model.Event) (*nats.Msg, error) {
	data, err := transport.Encode(m)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode event")
	}

	msg := nats.NewMsg(transport.SubjectEvents)
	// The id lets a JetStream stream drop redeliveries of the same event.
	msg.Header.Set(nats.MsgIdHdr, uuid.NewString())
	msg.Data = data

	log.WithFields(log.Fields{
		"subject": msg.Subject,
		"msg_id":  msg.Header.Get(nats.MsgIdHdr),
	}).Debug("natsio: sending event")

	return msg, nil
}
