package realtime

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
	"go.uber.org/zap"
)

func startHub(t *testing.T, origins []string) (*Hub, string) {
	t.Helper()
	hub := NewHub(origins, zap.NewNop())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.ServeWS(w, r)
	}))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string, header http.Header) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.ClientCount() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_BroadcastsToAllClients(t *testing.T) {
	hub, url := startHub(t, nil)
	a := dial(t, url, nil)
	b := dial(t, url, nil)
	waitForClients(t, hub, 2)

	msg, err := NewMessage("order.created", map[string]string{"order_number": "ORD-1"})
	require.NoError(t, err)
	require.NoError(t, hub.Publish(context.Background(), msg))

	for _, conn := range []*websocket.Conn{a, b} {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var got Message
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, "order.created", got.Type)
		assert.JSONEq(t, `{"order_number":"ORD-1"}`, string(got.Data))
	}
}

func TestHub_ClientDisconnectIsRemoved(t *testing.T) {
	hub, url := startHub(t, nil)
	conn := dial(t, url, nil)
	waitForClients(t, hub, 1)

	require.NoError(t, conn.Close())
	waitForClients(t, hub, 0)
}

func TestHub_RejectsForeignOrigin(t *testing.T) {
	_, url := startHub(t, []string{"https://admin.example.com"})

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example.com"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	dial(t, url, http.Header{"Origin": {"https://admin.example.com"}})
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	hub, url := startHub(t, nil)
	conn := dial(t, url, nil)
	waitForClients(t, hub, 1)

	hub.Close()
	assert.Zero(t, hub.ClientCount())

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestNewMessage_EncodeError(t *testing.T) {
	_, err := NewMessage("bad", make(chan int))
	assert.Error(t, err)
}

func TestMessage_JSONShape(t *testing.T) {
	msg, err := NewMessage("x", 1)
	require.NoError(t, err)
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"x"`)
	assert.Contains(t, string(raw), `"data":1`)
}
