package socket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to read events from a WebSocket connection with a timeout.
func readEvent(t *testing.T, conn *websocket.Conn) ChangeEvent {
	var evt ChangeEvent
	// Set a deadline to avoid tests hanging forever.
	conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	_, p, err := conn.ReadMessage()
	require.NoError(t, err, "Failed to read message from WebSocket")
	err = json.Unmarshal(p, &evt)
	require.NoError(t, err, "Failed to unmarshal ChangeEvent JSON")
	return evt
}

func TestChangeFeed(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	// Two subscribers on "bills", one on "members".
	conn1, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws?store=bills", nil)
	require.NoError(t, err, "Subscriber 1 failed to connect")
	defer conn1.Close()

	conn2, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws?store=bills", nil)
	require.NoError(t, err, "Subscriber 2 failed to connect")
	defer conn2.Close()

	conn3, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws?store=members", nil)
	require.NoError(t, err, "Subscriber 3 failed to connect")
	defer conn3.Close()

	// Registration races the publish below; give the hub a beat to settle.
	time.Sleep(50 * time.Millisecond)

	content := `{"id":"1","amount":10}`
	hub.Publish(ChangeEvent{Type: UpsertType, Store: "bills", ID: "1", Payload: json.RawMessage(content)})

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		evt := readEvent(t, conn)
		assert.Equal(t, UpsertType, evt.Type)
		assert.Equal(t, "bills", evt.Store)
		assert.Equal(t, "1", evt.ID)
		assert.JSONEq(t, content, string(evt.Payload))
	}

	// The members subscriber must not see bills traffic.
	conn3.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err = conn3.ReadMessage()
	assert.Error(t, err, "expected read timeout on unrelated store feed")
}

func TestDeleteEvent(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws?store=bills", nil)
	require.NoError(t, err)
	defer conn.Close()

	time.Sleep(50 * time.Millisecond)

	hub.Publish(ChangeEvent{Type: DeleteType, Store: "bills", ID: "1"})

	evt := readEvent(t, conn)
	assert.Equal(t, DeleteType, evt.Type)
	assert.Equal(t, "1", evt.ID)
	assert.Empty(t, evt.Payload)
}

func TestServeWsRequiresStore(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r)
	}))
	defer server.Close()

	resp, err := http.Get(server.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
