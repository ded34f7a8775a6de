package api

import (
	"encoding/json"
	"net/http"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/labstack/echo"
	"github.com/nats-io/nats.go"
	"github.com/nsyszr/flowpilot/pkg/api/resource"
	"github.com/nsyszr/flowpilot/pkg/transport"
	log "github.com/sirupsen/logrus"
)

// realtimeEventsHandler streams stored-event notifications to a websocket
// client until it disconnects.
func (h *Handler) realtimeEventsHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.nc == nil {
			return c.JSON(http.StatusServiceUnavailable, transport.Failed("realtime events require nats"))
		}

		conn, _, _, err := ws.UpgradeHTTP(c.Request(), c.Response())
		if err != nil {
			log.Error("api: failed to upgrade to websocket: ", err)
			return nil
		}
		defer conn.Close()

		outbox := make(chan []byte, 64)
		sub, err := h.nc.Subscribe(transport.SubjectStoredPrefix+"*", func(msg *nats.Msg) {
			ev := transport.StoredEvent{}
			if err := json.Unmarshal(msg.Data, &ev); err != nil {
				return
			}

			out, err := json.Marshal(resource.NewRealtimeEvent(ev.CaseID, "stored", &ev))
			if err != nil {
				return
			}

			select {
			case outbox <- out:
			default:
				log.Warn("api: realtime client too slow, event dropped")
			}
		})
		if err != nil {
			log.Error("api: failed to subscribe to stored events: ", err)
			return nil
		}
		defer sub.Unsubscribe()

		// Reading detects the client closing the connection.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := wsutil.ReadClientData(conn); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case out := <-outbox:
				if err := wsutil.WriteServerMessage(conn, ws.OpText, out); err != nil {
					log.Error("api: failed to send realtime event: ", err)
					return nil
				}
			case <-closed:
				return nil
			}
		}
	}
}
