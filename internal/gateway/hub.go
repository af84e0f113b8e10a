// Package gateway runs the client-facing side of one chat instance: the
// websocket clients, the room registry, local fan-out, and the bridge to the
// cross-instance relay.
package gateway

import (
	"log"

	"chat-relay-backend/internal/protocol"
	"chat-relay-backend/internal/registry"
)

// RelayPublisher forwards locally-originated messages to the relay hub so
// other instances can deliver them. Publish must never block; during a relay
// outage messages are dropped, not queued.
type RelayPublisher interface {
	Publish(msg *protocol.Message)
}

type inboundFrame struct {
	client *Client
	msg    *protocol.Message
}

// Hub owns all mutable chat state of this instance: the connected clients,
// the room registry, and the set of message identifiers already delivered.
// State is mutated only from the Run loop, so a join checking "is this a new
// room" and creating it is one atomic step.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	inbound    chan inboundFrame
	fromRelay  chan *protocol.Message

	clients  map[string]*Client
	registry *registry.Registry
	seen     map[string]struct{}
	relay    RelayPublisher
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundFrame),
		fromRelay:  make(chan *protocol.Message),
		clients:    make(map[string]*Client),
		registry:   registry.New(),
		seen:       make(map[string]struct{}),
	}
}

// SetRelay attaches the cross-instance publisher. Without one the hub runs
// in local-only mode.
func (h *Hub) SetRelay(p RelayPublisher) {
	h.relay = p
}

// Receive hands a message that arrived from the relay hub to the run loop.
func (h *Hub) Receive(msg *protocol.Message) {
	h.fromRelay <- msg
}

// RoomNames returns the current room directory.
func (h *Hub) RoomNames() []string {
	return h.registry.Rooms()
}

// Run is the hub's event loop. It must be started in its own goroutine and
// runs for the lifetime of the process.
func (h *Hub) Run() {
	for {
		select {
		case cl := <-h.register:
			h.addClient(cl)
		case cl := <-h.unregister:
			h.removeClient(cl)
		case in := <-h.inbound:
			h.handleClientMessage(in.client, in.msg)
		case msg := <-h.fromRelay:
			h.handleRelayMessage(msg)
		}
	}
}

func (h *Hub) addClient(cl *Client) {
	h.clients[cl.ID] = cl
	incConnections()

	// A fresh client learns the directory before joining anything.
	h.trySend(cl, protocol.NewRoomList(h.registry.Rooms()))
}

func (h *Hub) removeClient(cl *Client) {
	if _, ok := h.clients[cl.ID]; !ok {
		return
	}
	delete(h.clients, cl.ID)
	close(cl.Message)
	decConnections()

	emptied := false
	for _, dep := range h.registry.Leave(cl.ID) {
		if dep.UserLeft {
			h.broadcastRoom(dep.Room, protocol.NewUserLeft(dep.Room, dep.Name))
			h.broadcastRoom(dep.Room, protocol.NewRoomUsers(dep.Room, dep.Users))
		}
		if dep.Emptied {
			emptied = true
		}
	}
	if emptied {
		h.broadcastAll(protocol.NewRoomList(h.registry.Rooms()))
	}
	setRooms(h.registry.RoomCount())
}

func (h *Hub) handleClientMessage(cl *Client, msg *protocol.Message) {
	switch msg.Type {
	case protocol.TypeJoinRoom:
		h.handleJoin(cl, msg)
	case protocol.TypeChat:
		h.handleChat(cl, msg)
	default:
		log.Printf("Dropping %s frame from client %s: not a client message", msg.Type, cl.ID)
	}
}

func (h *Hub) handleJoin(cl *Client, msg *protocol.Message) {
	if msg.ID != "" && h.alreadySeen(msg.ID) {
		return
	}

	res, err := h.registry.Join(cl.ID, msg.Room, msg.Sender)
	if err != nil {
		log.Printf("Rejecting join from client %s: %v", cl.ID, err)
		return
	}

	if res.NewRoom {
		h.announceRoom(res.Room)
	}
	if res.NewMember {
		h.broadcastRoom(res.Room, protocol.NewUserJoined(res.Room, msg.Sender))
		h.broadcastRoom(res.Room, protocol.NewRoomUsers(res.Room, res.Users))
	}
}

func (h *Hub) handleChat(cl *Client, msg *protocol.Message) {
	msg.EnsureID()
	if h.alreadySeen(msg.ID) {
		return
	}

	h.broadcastRoom(msg.Room, msg)
	h.publish(msg)
}

func (h *Hub) handleRelayMessage(msg *protocol.Message) {
	switch msg.Type {
	case protocol.TypeChat:
		msg.EnsureID()
		if h.alreadySeen(msg.ID) {
			return
		}
		// Deliver locally only; relayed traffic is never forwarded back.
		h.broadcastRoom(msg.Room, msg)

	case protocol.TypeRoomCreated:
		if msg.ID != "" && h.alreadySeen(msg.ID) {
			return
		}
		created, err := h.registry.EnsureRoom(msg.Room)
		if err != nil {
			log.Printf("Dropping relayed room-created: %v", err)
			return
		}
		if created {
			h.broadcastAll(protocol.NewRoomList(h.registry.Rooms()))
			setRooms(h.registry.RoomCount())
		}

	default:
		log.Printf("Dropping relayed %s frame: not replicated across instances", msg.Type)
	}
}

// announceRoom publishes a room-created event to the relay and pushes the
// updated directory to every local client.
func (h *Hub) announceRoom(room string) {
	created := protocol.NewRoomCreated(room)
	h.seen[created.ID] = struct{}{}
	h.publish(created)

	h.broadcastAll(protocol.NewRoomList(h.registry.Rooms()))
	setRooms(h.registry.RoomCount())
}

// alreadySeen reports whether the identifier was processed before, marking
// it as seen otherwise. Entries are never evicted.
func (h *Hub) alreadySeen(id string) bool {
	if _, ok := h.seen[id]; ok {
		incDeduplicated()
		return true
	}
	h.seen[id] = struct{}{}
	return false
}

func (h *Hub) broadcastRoom(room string, msg *protocol.Message) {
	delivered := 0
	for _, id := range h.registry.Members(room) {
		cl, ok := h.clients[id]
		if !ok {
			continue
		}
		if h.trySend(cl, msg) {
			delivered++
		}
	}
	if delivered > 0 {
		addDelivered(delivered)
	}
}

func (h *Hub) broadcastAll(msg *protocol.Message) {
	for _, cl := range h.clients {
		h.trySend(cl, msg)
	}
}

// trySend is fire-and-forget: a client whose buffer is full is skipped, and
// a closing connection triggers its own cleanup through unregister.
func (h *Hub) trySend(cl *Client, msg *protocol.Message) bool {
	select {
	case cl.Message <- msg:
		return true
	default:
		return false
	}
}

func (h *Hub) publish(msg *protocol.Message) {
	if h.relay == nil {
		return
	}
	h.relay.Publish(msg)
}
