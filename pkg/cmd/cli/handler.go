package cli

import (
	colorable "github.com/mattn/go-colorable"
	"github.com/nsyszr/flowpilot/config"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	Migration *MigrateHandler
	Events    *EventsHandler
	Capture   *CaptureHandler
}

func NewHandler(c *config.Config) *Handler {
	return &Handler{
		Migration: newMigrateHandler(c),
		Events:    newEventsHandler(c),
		Capture:   newCaptureHandler(c),
	}
}

// setupLogging sends colored CLI output to stdout.
func setupLogging(level log.Level) {
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{
		ForceColors: true,
	})
	log.SetOutput(colorable.NewColorableStdout())
}
