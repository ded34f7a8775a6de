// Package controller is the persistence side of the pipeline: it validates
// inbound messages, appends events to the store and runs commands.
package controller

import (
	"context"
	"encoding/json"
	"fmt"

	nats "github.com/nats-io/nats.go"
	"github.com/nsyszr/flowpilot/pkg/export"
	"github.com/nsyszr/flowpilot/pkg/export/sink"
	"github.com/nsyszr/flowpilot/pkg/storage"
	"github.com/nsyszr/flowpilot/pkg/transport"
	log "github.com/sirupsen/logrus"
)

// FlushedMessage is the reply message of a successful flush.
const FlushedMessage = "Events flushed to CSV"

type Controller struct {
	nc       *nats.Conn
	stores   *storage.Initializer
	exporter *export.Exporter
	sink     sink.Sink
	subs     []*nats.Subscription
}

// NewController creates the persistence-side controller. nc may be nil when
// the controller is only driven through HandleMessage.
func NewController(nc *nats.Conn, stores *storage.Initializer, s sink.Sink) *Controller {
	return &Controller{
		nc:       nc,
		stores:   stores,
		exporter: export.NewExporter(stores),
		sink:     s,
	}
}

// Exporter returns the exporter reading the controller's store.
func (ctrl *Controller) Exporter() *export.Exporter {
	return ctrl.exporter
}

// Subscribe attaches the controller to the event and command subjects. Every
// instance joins the same queue group, so each message is stored once.
func (ctrl *Controller) Subscribe() error {
	if ctrl.nc == nil {
		return fmt.Errorf("controller: connection to nats is missing")
	}

	for _, subj := range []string{transport.SubjectEvents, transport.SubjectCommands} {
		sub, err := ctrl.nc.QueueSubscribe(subj, transport.QueuePersistence, ctrl.handleNATSMessage)
		if err != nil {
			return err
		}
		ctrl.subs = append(ctrl.subs, sub)
	}

	return nil
}

// Unsubscribe detaches the controller from NATS.
func (ctrl *Controller) Unsubscribe() {
	for _, sub := range ctrl.subs {
		if err := sub.Unsubscribe(); err != nil {
			log.Warnf("controller failed to unsubscribe from %s: %s", sub.Subject, err)
		}
	}
	ctrl.subs = nil
}

// handleNATSMessage waits for the reply before returning so messages of one
// subscription are stored in arrival order.
func (ctrl *Controller) handleNATSMessage(msg *nats.Msg) {
	logger := log.WithFields(log.Fields{
		"subject": msg.Subject,
		"msg_id":  msg.Header.Get(nats.MsgIdHdr),
	})

	reply := <-ctrl.HandleMessage(context.Background(), msg.Data)
	if !reply.OK() {
		logger.Warnf("controller rejected message: %s", reply.Error)
	}

	// Fire-and-forget publishes carry no reply subject
	if msg.Reply == "" {
		return
	}

	if err := ctrl.replyMessage(msg, reply); err != nil {
		logger.Errorf("controller failed to reply: %s", err)
	}
}

// HandleMessage implements transport.Handler. Malformed and invalid messages
// are answered immediately; valid ones are processed asynchronously.
func (ctrl *Controller) HandleMessage(ctx context.Context, data []byte) <-chan transport.Reply {
	msg, err := transport.Decode(data)
	if err != nil {
		log.Debugf("controller received undecodable message: %s", err)
		return transport.Resolved(transport.Failed(transport.ErrMsgInvalidMessage))
	}

	if msg.IsCommand() {
		return ctrl.handleCommand(ctx, msg.Command)
	}

	if !msg.Valid() {
		return transport.Resolved(transport.Failed(transport.ErrMsgInvalidEvent))
	}

	out := make(chan transport.Reply, 1)
	go func() {
		out <- ctrl.handleEvent(ctx, msg)
	}()

	return out
}

func (ctrl *Controller) replyMessage(msg *nats.Msg, rep interface{}) error {
	data, err := json.Marshal(rep)
	if err != nil {
		return err
	}

	return msg.Respond(data)
}
