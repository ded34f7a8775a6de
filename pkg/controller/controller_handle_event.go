package controller

import (
	"context"
	"encoding/json"

	"github.com/nsyszr/flowpilot/pkg/model"
	"github.com/nsyszr/flowpilot/pkg/storage"
	"github.com/nsyszr/flowpilot/pkg/transport"
	log "github.com/sirupsen/logrus"
)

func (ctrl *Controller) handleEvent(ctx context.Context, msg *transport.Message) transport.Reply {
	m := msg.Model()

	// The host may have torn the store down since the last message, so the
	// handle is requested for every message.
	s, err := ctrl.stores.Init(ctx)
	if err != nil {
		log.Errorf("controller failed to initialize storage: %s", err)
		return transport.Failed(err.Error())
	}

	if err := s.Events().Create(ctx, m); err != nil {
		if storage.IsInvalidEvent(err) {
			return transport.Failed(transport.ErrMsgInvalidEvent)
		}
		if storage.IsUnavailable(err) {
			// Reopen the store with the next message.
			ctrl.stores.Invalidate()
		}
		log.Errorf("controller failed to save event: %s", err)
		return transport.Failed(err.Error())
	}

	log.WithFields(log.Fields{
		"id":       m.ID,
		"case_id":  m.CaseID,
		"activity": m.Activity,
	}).Debug("controller saved event")

	if err := ctrl.publishStoredEvent(m); err != nil {
		log.Errorf("publish stored event failed: %s", err)
	}

	return transport.Saved()
}

func (ctrl *Controller) publishStoredEvent(m *model.Event) error {
	if ctrl.nc == nil {
		return nil
	}

	data, err := json.Marshal(transport.NewStoredEvent(m))
	if err != nil {
		return err
	}

	return ctrl.nc.Publish(transport.StoredSubject(m.CaseID), data)
}

// debugEvent is stored by Seed into an empty store.
func debugEvent() *model.Event {
	return &model.Event{
		CaseID:    "test-session-1",
		Activity:  "Click: Test Button",
		Timestamp: model.NowMillis(),
		Attributes: model.Attributes{
			model.AttrURL:         model.StringValue("https://example.com/test"),
			model.AttrTitle:       model.StringValue("Test Page"),
			model.AttrVisibleText: model.StringValue("Test Button"),
			model.AttrTag:         model.StringValue("button"),
		},
	}
}

// Seed initializes the store, logs how many events it holds and adds a
// debug event when it is empty. It returns whether an event was added.
func (ctrl *Controller) Seed(ctx context.Context) (bool, error) {
	s, err := ctrl.stores.Init(ctx)
	if err != nil {
		return false, err
	}

	events, err := s.Events().FetchAll(ctx)
	if err != nil {
		return false, err
	}
	log.Infof("Loaded %d events from storage", len(events))

	if len(events) > 0 {
		return false, nil
	}

	log.Info("Adding a test event for debugging")
	if err := s.Events().Create(ctx, debugEvent()); err != nil {
		return false, err
	}

	return true, nil
}
