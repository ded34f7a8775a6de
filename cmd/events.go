package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// eventsCmd represents the events command
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Work with recorded events",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(cmd.UsageString())
		os.Exit(2)
	},
}

// eventsExportCmd represents the events export command
var eventsExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the stored events as XES CSV log",
	Run:   cmdHandler.Events.Export,
}

// eventsClearCmd represents the events clear command
var eventsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all stored events",
	Run:   cmdHandler.Events.Clear,
}

// eventsFlushCmd represents the events flush command
var eventsFlushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Ask the recorder to flush the event log to its export sink",
	Run:   cmdHandler.Events.Flush,
}

func init() {
	RootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsExportCmd)
	eventsCmd.AddCommand(eventsClearCmd)
	eventsCmd.AddCommand(eventsFlushCmd)

	eventsExportCmd.Flags().String("format", "csv", "output format (csv or json)")
	eventsClearCmd.Flags().Bool("yes", false, "confirm deleting all events")
}
