package gateway

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

	"chat-relay-backend/internal/protocol"
	"chat-relay-backend/internal/relay"
)

func startRelayHub(t *testing.T) string {
	t.Helper()

	hub := relay.NewHub()
	go hub.Run()

	srv := httptest.NewServer(http.HandlerFunc(relay.NewHandler(hub).ServeWS))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

// startInstance boots a full gateway: hub, relay client, and websocket
// endpoint, the same wiring as cmd/gateway-server.
func startInstance(t *testing.T, relayURL string) (string, *relay.Client) {
	t.Helper()

	hub := NewHub()
	rc := relay.NewClient(relayURL, hub)
	hub.SetRelay(rc)

	go hub.Run()
	go rc.Run()
	t.Cleanup(rc.Stop)

	srv := httptest.NewServer(http.HandlerFunc(NewHandler(hub).ServeWS))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http"), rc
}

func dialClient(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendMessage(t *testing.T, conn *websocket.Conn, msg *protocol.Message) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
}

// awaitType reads frames until one of the wanted type arrives, skipping
// everything else.
func awaitType(t *testing.T, conn *websocket.Conn, typ string, timeout time.Duration) *protocol.Message {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s frame: %v", typ, err)
		}

		var msg protocol.Message
		require.NoError(t, json.Unmarshal(data, &msg))
		if msg.Type == typ {
			return &msg
		}
	}
}

func TestChatCrossesInstances(t *testing.T) {
	relayURL := startRelayHub(t)

	instanceA, rcA := startInstance(t, relayURL)
	instanceB, rcB := startInstance(t, relayURL)

	require.Eventually(t, func() bool {
		return rcA.Connected() && rcB.Connected()
	}, 5*time.Second, 10*time.Millisecond, "instances never linked up")

	alice := dialClient(t, instanceA)
	bob := dialClient(t, instanceB)

	sendMessage(t, alice, &protocol.Message{Type: protocol.TypeJoinRoom, Room: "general", Sender: "alice"})
	awaitType(t, alice, protocol.TypeUserJoined, 5*time.Second)

	sendMessage(t, bob, &protocol.Message{Type: protocol.TypeJoinRoom, Room: "General ", Sender: "bob"})
	awaitType(t, bob, protocol.TypeUserJoined, 5*time.Second)

	sendMessage(t, bob, &protocol.Message{Type: protocol.TypeChat, Room: "general", Sender: "bob", Content: "hello from b"})

	got := awaitType(t, alice, protocol.TypeChat, 5*time.Second)
	assert.Equal(t, "bob", got.Sender)
	assert.Equal(t, "hello from b", got.Content)
	assert.Equal(t, "general", got.Room)
	assert.NotEmpty(t, got.ID)
}

func TestRoomCreationPropagates(t *testing.T) {
	relayURL := startRelayHub(t)

	instanceA, rcA := startInstance(t, relayURL)
	instanceB, rcB := startInstance(t, relayURL)

	require.Eventually(t, func() bool {
		return rcA.Connected() && rcB.Connected()
	}, 5*time.Second, 10*time.Millisecond)

	observer := dialClient(t, instanceB)
	awaitType(t, observer, protocol.TypeRoomList, 5*time.Second) // initial directory

	creator := dialClient(t, instanceA)
	sendMessage(t, creator, &protocol.Message{Type: protocol.TypeJoinRoom, Room: "new-room", Sender: "alice"})

	// The observer on the other instance learns about the room without any
	// membership broadcast.
	deadline := time.Now().Add(5 * time.Second)
	for {
		list := awaitType(t, observer, protocol.TypeRoomList, time.Until(deadline))
		for _, name := range list.Rooms {
			if name == "new-room" {
				return
			}
		}
	}
}

func TestLocalDeliveryWithRelayDown(t *testing.T) {
	// Hub unreachable: the instance runs in degraded, local-only mode.
	instance, rc := startInstance(t, "ws://127.0.0.1:1/ws")
	require.False(t, rc.Connected())

	alice := dialClient(t, instance)
	bob := dialClient(t, instance)

	sendMessage(t, alice, &protocol.Message{Type: protocol.TypeJoinRoom, Room: "room-1", Sender: "alice"})
	awaitType(t, alice, protocol.TypeRoomUsers, 5*time.Second)

	sendMessage(t, bob, &protocol.Message{Type: protocol.TypeJoinRoom, Room: "room-1", Sender: "bob"})
	awaitType(t, bob, protocol.TypeRoomUsers, 5*time.Second)

	sendMessage(t, bob, &protocol.Message{Type: protocol.TypeChat, Room: "room-1", Sender: "bob", Content: "still works"})

	got := awaitType(t, alice, protocol.TypeChat, 5*time.Second)
	assert.Equal(t, "still works", got.Content)
}
