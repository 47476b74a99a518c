package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTestHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubPingPong(t *testing.T) {
	hub := NewHub(func(*http.Request) bool { return true })
	conn := dialTestHub(t, hub)

	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "ping"}))

	var resp map[string]string
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "pong", resp["type"])
}

func TestHubBroadcastReachesOnlySubscribers(t *testing.T) {
	hub := NewHub(func(*http.Request) bool { return true })
	subscribed := dialTestHub(t, hub)
	other := dialTestHub(t, hub)

	require.NoError(t, subscribed.WriteJSON(ClientMsg{Type: "subscribe", EventID: "MATCH_001"}))
	require.NoError(t, other.WriteJSON(ClientMsg{Type: "subscribe", EventID: "MATCH_999"}))

	// espera o servidor registrar as assinaturas
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.subs["MATCH_001"]) == 1 && len(hub.subs["MATCH_999"]) == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.Broadcast(LineUpdate{EventID: "MATCH_001", Payload: map[string]any{"price": -110}})

	var got LineUpdate
	require.NoError(t, subscribed.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, subscribed.ReadJSON(&got))
	assert.Equal(t, "MATCH_001", got.EventID)

	// o outro cliente não recebe nada
	require.NoError(t, other.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var none LineUpdate
	err := other.ReadJSON(&none)
	assert.Error(t, err)
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub(func(*http.Request) bool { return true })
	conn := dialTestHub(t, hub)

	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "subscribe", EventID: "MATCH_001"}))
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.subs["MATCH_001"]) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "unsubscribe", EventID: "MATCH_001"}))
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.subs["MATCH_001"]) == 0
	}, 2*time.Second, 10*time.Millisecond)

	// broadcast sem inscritos é no-op
	hub.Broadcast(LineUpdate{EventID: "MATCH_001"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var none LineUpdate
	assert.Error(t, conn.ReadJSON(&none))
}
