package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/labstack/echo"
	natsserver "github.com/nats-io/nats-server/v2/test"
	nats "github.com/nats-io/nats.go"
	"github.com/nsyszr/flowpilot/pkg/controller"
	"github.com/nsyszr/flowpilot/pkg/storage"
	"github.com/nsyszr/flowpilot/pkg/storage/memory"
	"github.com/nsyszr/flowpilot/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type realtimeMessage struct {
	CaseID string                `json:"caseId"`
	Topic  string                `json:"topic"`
	Data   transport.StoredEvent `json:"data"`
}

func TestRealtimeEvents(t *testing.T) {
	srv := natsserver.RunRandClientPortServer()
	defer srv.Shutdown()

	nc, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	defer nc.Close()

	s := memory.NewStore()
	stores := storage.NewInitializer(func(context.Context) (storage.Interface, error) {
		return s, nil
	})
	e := echo.New()
	NewHandler(nc, stores, controller.NewController(nil, stores, nil), nil).RegisterRoutes(e)

	hs := httptest.NewServer(e)
	defer hs.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, br, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(hs.URL, "http")+"/api/v1/realtime-events")
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))

	var r io.Reader = conn
	if br != nil {
		r = io.MultiReader(br, conn)
	}
	rw := struct {
		io.Reader
		io.Writer
	}{r, conn}

	received := make(chan []byte, 1)
	go func() {
		data, _, err := wsutil.ReadServerData(rw)
		if err != nil {
			close(received)
			return
		}
		received <- data
	}()

	// A dot is not allowed in a subject token, so the subject differs from
	// the case id.
	ev := transport.StoredEvent{ID: 7, CaseID: "a.b", Activity: "click #a", TS: 42}
	payload, err := json.Marshal(ev)
	require.NoError(t, err)

	// The server subscribes after the upgrade, publish until it is listening.
	var data []byte
	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()
wait:
	for {
		require.NoError(t, nc.Publish(transport.StoredSubject(ev.CaseID), payload))
		select {
		case d, ok := <-received:
			require.True(t, ok, "websocket closed before an event arrived")
			data = d
			break wait
		case <-tick.C:
		case <-ctx.Done():
			t.Fatal("no realtime event received")
		}
	}

	msg := realtimeMessage{}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "a.b", msg.CaseID)
	assert.Equal(t, "stored", msg.Topic)
	assert.Equal(t, ev, msg.Data)
}
