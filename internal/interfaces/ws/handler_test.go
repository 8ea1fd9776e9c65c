package ws

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/loyalty/backend/internal/application/session"
	"github.com/loyalty/backend/internal/infrastructure/config"
)

type wsFixture struct {
	coordinator *session.Coordinator
	server      *httptest.Server
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	coordinator := session.NewCoordinator(nil, session.DefaultConfig(), zap.NewNop())
	t.Cleanup(coordinator.Stop)

	cfg := config.WebSocketConfig{
		ReadLimit:    64 << 10,
		WriteTimeout: time.Second,
		PingInterval: 50 * time.Millisecond,
		PongTimeout:  5 * time.Second,
	}

	engine := gin.New()
	NewHandler(coordinator, cfg, zap.NewNop()).RegisterRoutes(engine)

	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)

	return &wsFixture{coordinator: coordinator, server: server}
}

func (f *wsFixture) dial(t *testing.T, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + path
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg map[string]any
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

// readUntilAction skips interleaved messages until one with the wanted
// action arrives.
func readUntilAction(t *testing.T, conn *websocket.Conn, action string) map[string]any {
	t.Helper()
	for i := 0; i < 10; i++ {
		msg := readMessage(t, conn)
		if msg["action"] == action {
			return msg
		}
	}
	t.Fatalf("never received action %q", action)
	return nil
}

func TestDisplayConnectReceivesState(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t, "/ws/tablet")

	msg := readMessage(t, conn)
	assert.Equal(t, "set_state", msg["action"])
	assert.Equal(t, "idle", msg["state"])

	require.Eventually(t, func() bool {
		_, _, displayConnected, _ := f.coordinator.Status()
		return displayConnected
	}, time.Second, 10*time.Millisecond)
}

func TestControlConnectReceivesAck(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t, "/ws/register")

	msg := readMessage(t, conn)
	assert.Equal(t, "connected", msg["action"])

	require.Eventually(t, func() bool {
		_, _, _, controlConnected := f.coordinator.Status()
		return controlConnected
	}, time.Second, 10*time.Millisecond)
}

func TestControlScanRecordsPendingScan(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t, "/ws/register")
	readUntilAction(t, conn, "connected")

	require.NoError(t, conn.WriteJSON(map[string]any{
		"action":  "customer_scanned",
		"barcode": "LOY1234560001",
	}))

	require.Eventually(t, func() bool {
		_, pending, _, _ := f.coordinator.Status()
		return pending != nil && pending.IdentifierToken == "LOY1234560001"
	}, time.Second, 10*time.Millisecond)
}

func TestScanForwardedToDisplay(t *testing.T) {
	f := newWSFixture(t)
	display := f.dial(t, "/ws/tablet")
	control := f.dial(t, "/ws/register")
	readUntilAction(t, display, "set_state")
	readUntilAction(t, control, "connected")

	require.NoError(t, control.WriteJSON(map[string]any{
		"action":  "customer_scanned",
		"barcode": "LOY1234560001",
	}))

	msg := readUntilAction(t, display, "show_customer_info")
	assert.Equal(t, "LOY1234560001", msg["barcode"])
}

func TestStartRegistrationShowsForm(t *testing.T) {
	f := newWSFixture(t)
	display := f.dial(t, "/ws/tablet")
	control := f.dial(t, "/ws/register")
	readUntilAction(t, display, "set_state")
	readUntilAction(t, control, "connected")

	require.NoError(t, control.WriteJSON(map[string]any{"action": "start_registration"}))

	msg := readUntilAction(t, display, "show_registration_form")
	assert.Equal(t, "New Customer Registration", msg["title"])

	ack := readUntilAction(t, control, "registration_started")
	assert.Equal(t, "registration", ack["state"])
}

func TestSubmitFormForwardedToControl(t *testing.T) {
	f := newWSFixture(t)
	display := f.dial(t, "/ws/tablet")
	control := f.dial(t, "/ws/register")
	readUntilAction(t, display, "set_state")
	readUntilAction(t, control, "connected")

	require.NoError(t, control.WriteJSON(map[string]any{"action": "start_registration"}))
	readUntilAction(t, display, "show_registration_form")

	require.NoError(t, display.WriteJSON(map[string]any{
		"action": "submit_customer_form",
		"data":   map[string]any{"name": "Ada Lovelace", "email": "ada@example.com"},
	}))

	msg := readUntilAction(t, control, "process_customer_registration")
	data, ok := msg["customer_data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Ada Lovelace", data["name"])

	confirm := readUntilAction(t, display, "show_confirmation")
	assert.Equal(t, "Welcome, Ada Lovelace!", confirm["message"])
}

func TestHeartbeatAcknowledged(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t, "/ws/tablet")
	readUntilAction(t, conn, "set_state")

	require.NoError(t, conn.WriteJSON(map[string]any{"action": "heartbeat"}))
	readUntilAction(t, conn, "heartbeat_ack")
}

func TestMalformedMessageIgnored(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t, "/ws/tablet")
	readUntilAction(t, conn, "set_state")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))

	// The connection survives and keeps dispatching.
	require.NoError(t, conn.WriteJSON(map[string]any{"action": "heartbeat"}))
	readUntilAction(t, conn, "heartbeat_ack")
}

func TestDisconnectClearsSlot(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t, "/ws/tablet")
	readUntilAction(t, conn, "set_state")

	require.Eventually(t, func() bool {
		_, _, displayConnected, _ := f.coordinator.Status()
		return displayConnected
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		_, _, displayConnected, _ := f.coordinator.Status()
		return !displayConnected
	}, time.Second, 10*time.Millisecond)
}

func TestReconnectReplacesPeer(t *testing.T) {
	f := newWSFixture(t)
	first := f.dial(t, "/ws/tablet")
	readUntilAction(t, first, "set_state")

	second := f.dial(t, "/ws/tablet")
	readUntilAction(t, second, "set_state")

	// The replaced peer gets closed by the coordinator; the new one stays.
	require.Eventually(t, func() bool {
		_, _, displayConnected, _ := f.coordinator.Status()
		return displayConnected
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, second.WriteJSON(map[string]any{"action": "heartbeat"}))
	readUntilAction(t, second, "heartbeat_ack")
}

func TestPeerSendAfterClose(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t, "/ws/tablet")

	peer := newPeer(conn, time.Second)
	require.NoError(t, peer.Close())

	assert.ErrorIs(t, peer.Send(session.Message{"action": "set_state"}), ErrPeerClosed)
	assert.NoError(t, peer.Close())
}
