package cmd

import (
	"github.com/nsyszr/flowpilot/pkg/cmd/server"
	"github.com/spf13/cobra"
)

// serveRecorderCmd represents the serve recorder command
var serveRecorderCmd = &cobra.Command{
	Use:   "recorder",
	Short: "Serve the event recorder (NATS consumer and HTTP API)",
	Run:   server.RunServeRecorder(c),
}

func init() {
	serveCmd.AddCommand(serveRecorderCmd)
}
