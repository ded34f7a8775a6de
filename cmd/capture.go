package cmd

import (
	"github.com/spf13/cobra"
)

// captureCmd represents the capture command
var captureCmd = &cobra.Command{
	Use:   "capture <html-file>",
	Short: "Record clicks on the elements of an HTML page",
	Run:   cmdHandler.Capture.CaptureHTML,
}

func init() {
	RootCmd.AddCommand(captureCmd)

	captureCmd.Flags().String("url", "", "page url recorded with each event (default file://<html-file>)")
	captureCmd.Flags().String("case-id", "", "case id of the capture session (default a new session id)")
	captureCmd.Flags().StringSlice("tag", []string{"a", "button"}, "element tags to click")
	captureCmd.Flags().Bool("local", false, "store the events in the configured store instead of sending them over NATS")
}
