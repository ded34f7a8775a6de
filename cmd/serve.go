package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start a flowpilot service",
	Long: `Start one of the flowpilot services. The recorder consumes captured
events from NATS, stores them and serves the HTTP API.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(cmd.UsageString())
		os.Exit(2)
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
