package api

import (
	"net/http"

	"github.com/labstack/echo"
	"github.com/nsyszr/flowpilot/pkg/api/resource"
	"github.com/nsyszr/flowpilot/pkg/capture"
	"github.com/nsyszr/flowpilot/pkg/session"
	"github.com/nsyszr/flowpilot/pkg/transport"
)

// handleCaptureInteraction normalizes a raw click on the server side. The
// event is handed to the capture sender without waiting for it to be stored.
func (h *Handler) handleCaptureInteraction(c echo.Context) error {
	if h.sender == nil {
		return c.JSON(http.StatusServiceUnavailable, transport.Failed("capture is disabled"))
	}

	in := &resource.InteractionResource{}
	if err := c.Bind(in); err != nil {
		return c.JSON(http.StatusBadRequest, transport.Failed(transport.ErrMsgInvalidMessage))
	}
	if in.Target == nil {
		return c.JSON(http.StatusBadRequest, transport.Failed(transport.ErrMsgInvalidMessage))
	}

	// A client without a case id starts a new capture session.
	caseID := in.CaseID
	if caseID == "" {
		caseID = session.NewIdentity().CaseID()
	}

	rec := capture.NewRecorder(caseID, h.sender)
	m, ok := rec.OnInteraction(c.Request().Context(), in.Interaction())
	if !ok {
		return c.JSON(http.StatusOK, &resource.CapturedResource{CaseID: caseID})
	}

	return c.JSON(http.StatusAccepted, &resource.CapturedResource{
		CaseID:   caseID,
		Recorded: true,
		Activity: m.Activity,
		TS:       m.Timestamp,
	})
}
