package api

import (
	"github.com/labstack/echo"
	"github.com/nats-io/nats.go"
	"github.com/nsyszr/flowpilot/pkg/export"
	"github.com/nsyszr/flowpilot/pkg/transport"
	log "github.com/sirupsen/logrus"
)

// Handler contains all properties to serve the API
type Handler struct {
	nc         *nats.Conn
	stores     export.StoreProvider
	dispatcher transport.Handler
	sender     transport.Sender
	exporter   *export.Exporter
}

// NewHandler create a new API handler. nc may be nil, the realtime endpoint
// is unavailable then. sender receives events captured by the interactions
// endpoint; it may be nil as well.
func NewHandler(nc *nats.Conn, stores export.StoreProvider, dispatcher transport.Handler, sender transport.Sender) *Handler {
	return &Handler{
		nc:         nc,
		stores:     stores,
		dispatcher: dispatcher,
		sender:     sender,
		exporter:   export.NewExporter(stores),
	}
}

// RegisterRoutes attaches the handlers to the echo web server
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	log.Debug("Register API routes")
	api := e.Group("/api/v1")

	api.GET("/events", h.handleFetchEvents)
	api.POST("/events", h.handleCreateEvent)
	api.DELETE("/events", h.handleClearEvents)
	api.GET("/events/export", h.handleExportEvents)

	api.POST("/commands", h.handleCommand)
	api.POST("/interactions", h.handleCaptureInteraction)

	api.Any("/realtime-events", h.realtimeEventsHandler())
}
