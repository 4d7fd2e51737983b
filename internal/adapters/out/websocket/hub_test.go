package websocket_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dispatch/internal/adapters/out/websocket"
	"dispatch/internal/core/ports"

	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHubServer(t *testing.T) (*websocket.Hub, string) {
	t.Helper()
	hub := websocket.NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		group := ports.ObserverGroup(r.URL.Query().Get("group"))
		_ = hub.Serve(w, r, group, r.URL.Query().Get("recipient"))
	}))
	t.Cleanup(func() {
		hub.Close()
		server.Close()
	})
	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, hub *websocket.Hub, base string, group ports.ObserverGroup, recipient string) *gorillaws.Conn {
	t.Helper()
	before := hub.Count(group, recipient)
	conn, resp, err := gorillaws.DefaultDialer.Dial(base+"?group="+string(group)+"&recipient="+recipient, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	require.Eventually(t, func() bool { return hub.Count(group, recipient) == before+1 },
		time.Second, 10*time.Millisecond)
	return conn
}

func read(t *testing.T, conn *gorillaws.Conn) websocket.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg websocket.Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_NotifyRecipientRoom(t *testing.T) {
	hub, base := newHubServer(t)
	alice := dial(t, hub, base, ports.RequesterObservers, "alice")
	bob := dial(t, hub, base, ports.RequesterObservers, "bob")

	event := ports.Event{Topic: "order.status.updated", Payload: map[string]string{"orderId": "o-1"}}
	require.NoError(t, hub.Notify(t.Context(), ports.RequesterObservers, "alice", event))

	msg := read(t, alice)
	assert.Equal(t, "order.status.updated", msg.Topic)
	assert.Equal(t, map[string]any{"orderId": "o-1"}, msg.Payload)

	require.NoError(t, bob.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := bob.ReadMessage()
	require.Error(t, err)
}

func TestHub_NotifyGroupBroadcast(t *testing.T) {
	hub, base := newHubServer(t)
	first := dial(t, hub, base, ports.CourierPool, "")
	second := dial(t, hub, base, ports.CourierPool, "")
	node := dial(t, hub, base, ports.SupplyNodeObservers, "node-1")

	require.NoError(t, hub.Notify(t.Context(), ports.CourierPool, "", ports.Event{Topic: "order.delivered"}))

	assert.Equal(t, "order.delivered", read(t, first).Topic)
	assert.Equal(t, "order.delivered", read(t, second).Topic)

	require.NoError(t, node.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := node.ReadMessage()
	require.Error(t, err)
}

func TestHub_DisconnectLeavesRoom(t *testing.T) {
	hub, base := newHubServer(t)
	conn := dial(t, hub, base, ports.SupplyNodeObservers, "node-1")

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Count(ports.SupplyNodeObservers, "node-1") == 0 },
		time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Notify(t.Context(), ports.SupplyNodeObservers, "node-1", ports.Event{Topic: "x"}))
}

func TestHub_NotifyWithoutClients(t *testing.T) {
	hub := websocket.NewHub(nil)
	require.NoError(t, hub.Notify(t.Context(), ports.CourierPool, "", ports.Event{Topic: "order.created"}))
}
