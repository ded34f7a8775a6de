package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nsyszr/flowpilot/config"
	"github.com/nsyszr/flowpilot/pkg/capture"
	"github.com/nsyszr/flowpilot/pkg/controller"
	"github.com/nsyszr/flowpilot/pkg/model"
	"github.com/nsyszr/flowpilot/pkg/selector"
	"github.com/nsyszr/flowpilot/pkg/session"
	"github.com/nsyszr/flowpilot/pkg/storage/driver"
	"github.com/nsyszr/flowpilot/pkg/transport/memory"
	"github.com/nsyszr/flowpilot/pkg/transport/natsio"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/net/html"
)

type CaptureHandler struct {
	c *config.Config
}

func newCaptureHandler(c *config.Config) *CaptureHandler {
	return &CaptureHandler{c: c}
}

// CaptureHTML replays a click on every matching element of an HTML file
// and sends the events to the recorder, or with --local straight into the
// configured store.
func (h *CaptureHandler) CaptureHTML(cmd *cobra.Command, args []string) {
	if len(args) < 1 || args[0] == "" {
		fmt.Println(cmd.UsageString())
		os.Exit(2)
	}

	setupLogging(log.InfoLevel)

	f, err := os.Open(args[0])
	if err != nil {
		log.Errorf("Failed to open %s: %s", args[0], err)
		os.Exit(1)
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		log.Errorf("Failed to parse %s: %s", args[0], err)
		os.Exit(1)
	}

	url, _ := cmd.Flags().GetString("url")
	if url == "" {
		url = "file://" + args[0]
	}
	tags, _ := cmd.Flags().GetStringSlice("tag")
	caseID, _ := cmd.Flags().GetString("case-id")
	if caseID == "" {
		caseID = session.NewIdentity().CaseID()
	}

	local, _ := cmd.Flags().GetBool("local")

	var events []model.Event
	if local {
		events, err = h.captureLocal(doc, caseID, url, tags)
	} else {
		events, err = h.captureRemote(doc, caseID, url, tags)
	}
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}

	log.WithFields(log.Fields{
		"case_id": caseID,
		"tags":    strings.Join(tags, ","),
	}).Infof("Sent %d events", len(events))
}

// captureRemote publishes the events to a running recorder.
func (h *CaptureHandler) captureRemote(doc *html.Node, caseID, url string, tags []string) ([]model.Event, error) {
	client, err := natsio.Connect(h.c.NATSServerURL, time.Duration(h.c.RequestTimeout)*time.Second)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	rec := capture.NewRecorder(caseID, client)
	events := rec.CaptureDocument(context.Background(), doc, capture.Page{URL: url}, tags)

	if err := client.Flush(); err != nil {
		return nil, errors.Wrap(err, "failed to flush nats connection")
	}

	return events, nil
}

// captureLocal stores the events in the configured store without a
// recorder in between.
func (h *CaptureHandler) captureLocal(doc *html.Node, caseID, url string, tags []string) ([]model.Event, error) {
	stores, err := driver.NewInitializer(h.c)
	if err != nil {
		return nil, err
	}
	defer stores.Close()

	ctrl := controller.NewController(nil, stores, nil)
	// Room for one event per element, so nothing is dropped.
	ch := memory.NewChannel(ctrl, len(selector.Elements(doc))+1)

	rec := capture.NewRecorder(caseID, ch)
	events := rec.CaptureDocument(context.Background(), doc, capture.Page{URL: url}, tags)

	// Wait until the buffered events are stored.
	ch.Close()
	if dropped := ch.Dropped(); dropped > 0 {
		log.Warnf("%d events were dropped", dropped)
	}

	return events, nil
}
