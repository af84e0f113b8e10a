// Package registry holds the per-instance room and connection bookkeeping.
// It is pure state: operations mutate membership and report what changed as
// effect values; all broadcast policy lives with the caller.
package registry

import (
	"errors"
	"sort"
	"sync"

	"chat-relay-backend/internal/protocol"
)

// ErrEmptyRoomName is returned when a room name normalizes to the empty
// string. Such joins are rejected without side effects.
var ErrEmptyRoomName = errors.New("registry: empty room name")

// JoinResult reports the effects of a join so the caller can decide which
// notifications to emit.
type JoinResult struct {
	Room      string // normalized name
	NewRoom   bool   // the room did not exist before this join
	NewMember bool   // the display name was not present in the room before
	Users     []string
}

// Departure describes what happened to one room when a connection left it.
type Departure struct {
	Room     string
	Name     string
	UserLeft bool // the display name is no longer present in the room
	Emptied  bool // the room lost its last connection and was deleted
	Users    []string
}

type room struct {
	members map[string]struct{} // connection IDs
	users   []string            // display names, insertion order
}

type connection struct {
	name  string
	rooms map[string]struct{}
}

// Registry tracks which connections are members of which rooms on this
// gateway instance. All methods are safe for concurrent use; each operation
// is atomic, so "did the room exist" and "create it" cannot race.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*room
	conns map[string]*connection
}

func New() *Registry {
	return &Registry{
		rooms: make(map[string]*room),
		conns: make(map[string]*connection),
	}
}

// Join adds the connection to the named room under the given display name.
// The room name is normalized first; a name that normalizes to "" is
// rejected. Both the socket-set and name-set updates are idempotent.
func (r *Registry) Join(connID, roomName, displayName string) (JoinResult, error) {
	name := protocol.NormalizeRoom(roomName)
	if name == "" {
		return JoinResult{}, ErrEmptyRoomName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[connID]
	if !ok {
		conn = &connection{rooms: make(map[string]struct{})}
		r.conns[connID] = conn
	}
	conn.name = displayName
	conn.rooms[name] = struct{}{}

	res := JoinResult{Room: name}

	rm, ok := r.rooms[name]
	if !ok {
		rm = &room{members: make(map[string]struct{})}
		r.rooms[name] = rm
		res.NewRoom = true
	}

	rm.members[connID] = struct{}{}
	if !containsName(rm.users, displayName) {
		rm.users = append(rm.users, displayName)
		res.NewMember = true
	}

	res.Users = append([]string(nil), rm.users...)
	return res, nil
}

// EnsureRoom creates the room if it does not exist yet, with no members.
// Both local joins and relay room-created notifications funnel through the
// same creation path, so the created flag has a single source of truth.
func (r *Registry) EnsureRoom(roomName string) (bool, error) {
	name := protocol.NormalizeRoom(roomName)
	if name == "" {
		return false, ErrEmptyRoomName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[name]; ok {
		return false, nil
	}
	r.rooms[name] = &room{members: make(map[string]struct{})}
	return true, nil
}

// Leave removes the connection from every room it joined and forgets it.
// The display name is removed from a room only when no other connection in
// that room holds the same name. A room whose socket set drains to zero is
// deleted and reported as emptied.
func (r *Registry) Leave(connID string) []Departure {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[connID]
	if !ok {
		return nil
	}
	delete(r.conns, connID)

	var departures []Departure
	for name := range conn.rooms {
		rm, ok := r.rooms[name]
		if !ok {
			continue
		}
		delete(rm.members, connID)

		dep := Departure{Room: name, Name: conn.name}
		if !r.nameHeldByMember(rm, conn.name) {
			rm.users = removeName(rm.users, conn.name)
			dep.UserLeft = true
		}
		if len(rm.members) == 0 {
			delete(r.rooms, name)
			dep.Emptied = true
		}
		dep.Users = append([]string(nil), rm.users...)
		departures = append(departures, dep)
	}
	return departures
}

// Users returns the display names currently in the room, in join order.
func (r *Registry) Users(roomName string) []string {
	name := protocol.NormalizeRoom(roomName)

	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[name]
	if !ok {
		return nil
	}
	return append([]string(nil), rm.users...)
}

// Members returns the connection IDs currently registered in the room.
func (r *Registry) Members(roomName string) []string {
	name := protocol.NormalizeRoom(roomName)

	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[name]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(rm.members))
	for id := range rm.members {
		ids = append(ids, id)
	}
	return ids
}

// Rooms returns all known room names, sorted.
func (r *Registry) Rooms() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.rooms))
	for name := range r.rooms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RoomCount reports how many rooms currently exist on this instance.
func (r *Registry) RoomCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// nameHeldByMember reports whether any remaining member connection of rm
// holds the given display name. Caller must hold r.mu.
func (r *Registry) nameHeldByMember(rm *room, name string) bool {
	for id := range rm.members {
		if conn, ok := r.conns[id]; ok && conn.name == name {
			return true
		}
	}
	return false
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func removeName(names []string, name string) []string {
	out := names[:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
