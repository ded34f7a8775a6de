package api

import (
	"io"
	"net/http"

	"github.com/labstack/echo"
	"github.com/nsyszr/flowpilot/pkg/api/resource"
	"github.com/nsyszr/flowpilot/pkg/export"
	"github.com/nsyszr/flowpilot/pkg/model"
	"github.com/nsyszr/flowpilot/pkg/transport"
)

func (h *Handler) handleFetchEvents(c echo.Context) error {
	ctx := c.Request().Context()

	s, err := h.stores.Init(ctx)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, transport.Failed(err.Error()))
	}

	var m []model.Event
	if caseID := c.QueryParam("caseId"); caseID != "" {
		m, err = s.Events().FindByCaseID(ctx, caseID)
	} else {
		m, err = s.Events().FetchAll(ctx)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, transport.Failed(err.Error()))
	}

	return c.JSON(http.StatusOK, resource.NewEventList(m, c.QueryParam("order") == "desc"))
}

func (h *Handler) handleCreateEvent(c echo.Context) error {
	// Commands have their own route.
	return h.dispatch(c, http.StatusCreated, func(msg *transport.Message) string {
		if msg.IsCommand() {
			return transport.ErrMsgInvalidEvent
		}
		return ""
	})
}

func (h *Handler) handleCommand(c echo.Context) error {
	return h.dispatch(c, http.StatusOK, func(msg *transport.Message) string {
		if !msg.IsCommand() {
			return transport.ErrMsgInvalidMessage
		}
		return ""
	})
}

// dispatch hands the raw body to the same handler the transport uses once
// accept found nothing to complain about.
func (h *Handler) dispatch(c echo.Context, okStatus int, accept func(*transport.Message) string) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, transport.Failed(transport.ErrMsgInvalidMessage))
	}

	msg, err := transport.Decode(body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, transport.Failed(transport.ErrMsgInvalidMessage))
	}
	if reason := accept(msg); reason != "" {
		return c.JSON(http.StatusBadRequest, transport.Failed(reason))
	}

	reply := <-h.dispatcher.HandleMessage(c.Request().Context(), body)

	return c.JSON(replyStatus(reply, okStatus), reply)
}

func replyStatus(reply transport.Reply, okStatus int) int {
	if reply.OK() {
		return okStatus
	}

	switch reply.Error {
	case transport.ErrMsgInvalidEvent, transport.ErrMsgInvalidMessage:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *Handler) handleClearEvents(c echo.Context) error {
	ctx := c.Request().Context()

	s, err := h.stores.Init(ctx)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, transport.Failed(err.Error()))
	}

	if err := s.Events().Clear(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, transport.Failed(err.Error()))
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) handleExportEvents(c echo.Context) error {
	ctx := c.Request().Context()

	if c.QueryParam("format") == "json" {
		data, err := h.exporter.ExportJSON(ctx)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, transport.Failed(err.Error()))
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="log.xes.json"`)
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, data)
	}

	data, err := h.exporter.Export(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, transport.Failed(err.Error()))
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+export.FileName+`"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}
