package notifiers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/florelab/floradb/internal/flora"
)

func TestNewWebSocketNotifier(t *testing.T) {
	notifier := NewWebSocketNotifier("ws-1")
	defer notifier.Close()

	assert.Equal(t, "ws-1", notifier.ID())
	assert.Equal(t, "websocket", notifier.Type())
	assert.Equal(t, 0, notifier.ClientCount())

	upgrader := notifier.Upgrader()
	assert.NotZero(t, upgrader.ReadBufferSize)
	assert.NotZero(t, upgrader.WriteBufferSize)
}

// dialTestClient upgrades an HTTP test server connection and registers it
// with the notifier, returning the client side.
func dialTestClient(t *testing.T, notifier *WebSocketNotifier) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := notifier.Upgrader()
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		notifier.RegisterClient(conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	// Wait for the broadcaster goroutine to pick up the registration
	deadline := time.Now().Add(2 * time.Second)
	for notifier.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	require.Equal(t, 1, notifier.ClientCount(), "client never registered")

	return client
}

func TestWebSocketNotifier_BroadcastsToClient(t *testing.T) {
	notifier := NewWebSocketNotifier("ws-1")
	defer notifier.Close()

	client := dialTestClient(t, notifier)

	event := testEvent()
	require.NoError(t, notifier.Notify(context.Background(), event))

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := client.ReadMessage()
	require.NoError(t, err)

	var decoded flora.Event
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, event.GardenID, decoded.GardenID)
	assert.Equal(t, event.Action, decoded.Action)
	assert.Equal(t, event.NewLength, decoded.NewLength)
}

func TestWebSocketNotifier_UnregisterClient(t *testing.T) {
	notifier := NewWebSocketNotifier("ws-1")
	defer notifier.Close()

	processed := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := notifier.Upgrader()
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		notifier.RegisterClient(conn)
		notifier.UnregisterClient(conn)
		close(processed)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()

	select {
	case <-processed:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never registered the client")
	}

	deadline := time.Now().Add(2 * time.Second)
	for notifier.ClientCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, 0, notifier.ClientCount())
}

func TestWebSocketNotifier_Notify_NoClients(t *testing.T) {
	notifier := NewWebSocketNotifier("ws-1")
	defer notifier.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.NoError(t, notifier.Notify(ctx, testEvent()))
}

func TestWebSocketNotifier_Close(t *testing.T) {
	notifier := NewWebSocketNotifier("ws-1")

	require.NoError(t, notifier.Close())

	// Close is idempotent
	assert.NotPanics(t, func() { notifier.Close() })

	// Registering after close is ignored rather than blocking
	assert.NotPanics(t, func() { notifier.RegisterClient(nil) })
}
