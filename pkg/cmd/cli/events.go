package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nsyszr/flowpilot/config"
	"github.com/nsyszr/flowpilot/pkg/export"
	"github.com/nsyszr/flowpilot/pkg/storage/driver"
	"github.com/nsyszr/flowpilot/pkg/transport"
	"github.com/nsyszr/flowpilot/pkg/transport/natsio"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// EventsHandler works on the configured store directly, except for flush
// which asks a running recorder over NATS.
type EventsHandler struct {
	c *config.Config
}

func newEventsHandler(c *config.Config) *EventsHandler {
	return &EventsHandler{c: c}
}

// Export writes the stored events to the given file, or stdout if none.
func (h *EventsHandler) Export(cmd *cobra.Command, args []string) {
	setupLogging(log.InfoLevel)

	stores, err := driver.NewInitializer(h.c)
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
	defer stores.Close()

	format, _ := cmd.Flags().GetString("format")
	exporter := export.NewExporter(stores)
	ctx := context.Background()

	var data []byte
	switch format {
	case "", "csv":
		data, err = exporter.Export(ctx)
	case "json":
		data, err = exporter.ExportJSON(ctx)
	default:
		log.Errorf("unsupported format '%s'", format)
		os.Exit(2)
	}
	if err != nil {
		log.Errorf("Failed to export events: %s", err)
		os.Exit(1)
	}

	if len(args) == 0 || args[0] == "-" {
		os.Stdout.Write(data)
		return
	}

	if err := os.WriteFile(args[0], data, 0644); err != nil {
		log.Errorf("Failed to write %s: %s", args[0], err)
		os.Exit(1)
	}
	log.Infof("Exported events to %s", args[0])
}

// Clear removes every stored event.
func (h *EventsHandler) Clear(cmd *cobra.Command, args []string) {
	setupLogging(log.InfoLevel)

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		fmt.Println("Refusing to clear the store without --yes")
		os.Exit(2)
	}

	stores, err := driver.NewInitializer(h.c)
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
	defer stores.Close()

	ctx := context.Background()
	s, err := stores.Init(ctx)
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}

	if err := s.Events().Clear(ctx); err != nil {
		log.Errorf("Failed to clear events: %s", err)
		os.Exit(1)
	}
	log.Info("Events cleared")
}

// Flush asks the recorder to hand the CSV log to its export sink.
func (h *EventsHandler) Flush(cmd *cobra.Command, args []string) {
	setupLogging(log.InfoLevel)

	client, err := natsio.Connect(h.c.NATSServerURL, time.Duration(h.c.RequestTimeout)*time.Second)
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
	defer client.Close()

	reply, err := client.Command(context.Background(), transport.CommandFlushEvents)
	if err != nil {
		log.Errorf("Failed to flush events: %s", err)
		os.Exit(1)
	}
	if !reply.OK() {
		log.Errorf("Failed to flush events: %s", reply.Error)
		os.Exit(1)
	}
	log.Info(reply.Message)
}
