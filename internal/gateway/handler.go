package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chat-relay-backend/internal/protocol"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler exposes the hub over HTTP: the websocket upgrade endpoint for chat
// clients and the room directory.
type Handler struct {
	hub *Hub
}

func NewHandler(h *Hub) *Handler {
	return &Handler{hub: h}
}

// ServeWS upgrades the request and registers the connection with the hub.
// A client starts with no display name and becomes active with its first
// join-room message.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cl := &Client{
		Conn:    conn,
		Message: make(chan *protocol.Message, 16),
		ID:      uuid.NewString(),
		done:    make(chan struct{}),
	}

	h.hub.register <- cl

	go cl.keepAlive()
	go cl.writeMessage()
	go cl.readMessage(h.hub)
}

// Rooms returns the room directory as JSON.
func (h *Handler) Rooms(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	return json.NewEncoder(w).Encode(h.hub.RoomNames())
}
