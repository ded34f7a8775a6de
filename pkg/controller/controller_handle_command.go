package controller

import (
	"context"

	"github.com/nsyszr/flowpilot/pkg/export"
	"github.com/nsyszr/flowpilot/pkg/transport"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

func (ctrl *Controller) handleCommand(ctx context.Context, command string) <-chan transport.Reply {
	switch command {
	case transport.CommandFlushEvents:
		out := make(chan transport.Reply, 1)
		go func() {
			if _, err := ctrl.Flush(ctx); err != nil {
				out <- transport.Failed(err.Error())
				return
			}
			out <- transport.Success(FlushedMessage)
		}()
		return out
	}

	log.Debugf("controller received unknown command '%s'", command)
	return transport.Resolved(transport.Failed(transport.ErrMsgInvalidMessage))
}

// Flush exports all events to CSV and hands the file to the sink. It returns
// the location of the file.
func (ctrl *Controller) Flush(ctx context.Context) (string, error) {
	log.Info("Flushing events to CSV...")

	if ctrl.sink == nil {
		return "", errors.New("no export sink configured")
	}

	data, err := ctrl.exporter.Export(ctx)
	if err != nil {
		log.Errorf("Error flushing events to CSV: %s", err)
		return "", err
	}

	loc, err := ctrl.sink.Put(ctx, export.FileName, data)
	if err != nil {
		log.Errorf("Error flushing events to CSV: %s", err)
		return "", err
	}

	log.WithField("location", loc).Info("CSV export written")

	return loc, nil
}
