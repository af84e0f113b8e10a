// Package protocol defines the JSON wire envelope exchanged between chat
// clients, gateway instances, and the relay hub.
package protocol

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Message type tags. Clients send join-room and chat; everything else is
// emitted by a gateway. room-created additionally travels between instances
// through the relay hub.
const (
	TypeJoinRoom    = "join-room"
	TypeChat        = "chat"
	TypeUserJoined  = "user-joined"
	TypeUserLeft    = "user-left"
	TypeRoomUsers   = "room-users"
	TypeRoomCreated = "room-created"
	TypeRoomList    = "room-list"
)

// Message is the tagged wire envelope. Which fields are populated depends on
// Type; Validate enforces the required set per type. ID is assigned once at
// the point of creation and carried unchanged through the relay so receivers
// can deduplicate.
type Message struct {
	Type    string   `json:"type"`
	Room    string   `json:"room,omitempty"`
	Sender  string   `json:"sender,omitempty"`
	Content string   `json:"message,omitempty"`
	Users   []string `json:"users,omitempty"`
	Rooms   []string `json:"rooms,omitempty"`
	ID      string   `json:"id,omitempty"`
}

// NormalizeRoom canonicalizes a room name: surrounding whitespace is trimmed
// and the result is lowercased. Two names differing only by case or
// surrounding whitespace address the same room.
func NormalizeRoom(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Decode parses a raw text frame into a Message, normalizing the room name
// and validating the required fields for its type. A non-nil error means the
// frame must be dropped.
func Decode(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("protocol: decode frame: %w", err)
	}
	msg.Room = NormalizeRoom(msg.Room)
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Encode serializes the message for transmission.
func (m *Message) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode %s frame: %w", m.Type, err)
	}
	return data, nil
}

// Validate checks the per-type required fields. The room name is expected to
// be normalized already; an empty room where one is required is an error.
func (m *Message) Validate() error {
	switch m.Type {
	case TypeJoinRoom:
		if m.Room == "" || m.Sender == "" {
			return fmt.Errorf("protocol: %s requires room and sender", m.Type)
		}
	case TypeChat:
		if m.Room == "" || m.Sender == "" || m.Content == "" {
			return fmt.Errorf("protocol: %s requires room, sender and message", m.Type)
		}
	case TypeUserJoined, TypeUserLeft:
		if m.Room == "" || m.Sender == "" {
			return fmt.Errorf("protocol: %s requires room and sender", m.Type)
		}
	case TypeRoomUsers:
		if m.Room == "" {
			return fmt.Errorf("protocol: %s requires room", m.Type)
		}
	case TypeRoomCreated:
		if m.Room == "" {
			return fmt.Errorf("protocol: %s requires room", m.Type)
		}
	case TypeRoomList:
	default:
		return fmt.Errorf("protocol: unknown message type %q", m.Type)
	}
	return nil
}

// EnsureID assigns a fresh identifier if the message does not carry one yet.
// Identifiers are never reassigned.
func (m *Message) EnsureID() {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
}

// NewUserJoined builds the broadcast announcing that sender became a member
// of room.
func NewUserJoined(room, sender string) *Message {
	return &Message{Type: TypeUserJoined, Room: room, Sender: sender, ID: uuid.NewString()}
}

// NewUserLeft builds the broadcast announcing that sender left room.
func NewUserLeft(room, sender string) *Message {
	return &Message{Type: TypeUserLeft, Room: room, Sender: sender, ID: uuid.NewString()}
}

// NewRoomUsers builds the membership snapshot broadcast for room.
func NewRoomUsers(room string, users []string) *Message {
	return &Message{Type: TypeRoomUsers, Room: room, Users: users, ID: uuid.NewString()}
}

// NewRoomCreated builds the cross-instance notification that room now
// exists somewhere in the system.
func NewRoomCreated(room string) *Message {
	return &Message{Type: TypeRoomCreated, Room: room, ID: uuid.NewString()}
}

// NewRoomList builds the room directory broadcast. It intentionally carries
// no identifier; directory snapshots are idempotent and never deduplicated.
func NewRoomList(rooms []string) *Message {
	return &Message{Type: TypeRoomList, Rooms: rooms}
}
