// internal/app/system/live/hub.go
// Package live is the real-time delivery channel. Each authenticated
// websocket connection belongs to exactly one logical room named after
// its user ID; domain operations push events into rooms through the
// Broadcaster capability. Delivery is best effort: if a room has no
// connected member the event is dropped, and the persisted notification
// is the durable fallback clients can poll for.
package live

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Broadcaster is the capability feature handlers receive to emit live
// events. The hub implements it; handlers never reach for a shared
// global.
type Broadcaster interface {
	EmitToUser(userID string, event string, payload any)
}

// Event names pushed to clients.
const (
	EventNewRequest          = "new_request"
	EventRequestStatusUpdate = "request_status_update"
	EventNewFabricAssignment = "new_fabric_assignment"
)

// serverEvent is the wire shape of a server-to-client push.
type serverEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Hub tracks connections and their room memberships. Rooms are only
// mutated by the join/leave handlers of the owning connection; the hub
// serializes that with one mutex.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Conn]struct{}
	conns map[*Conn]struct{}
	log   *zap.Logger
}

// NewHub builds an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]map[*Conn]struct{}),
		conns: make(map[*Conn]struct{}),
		log:   logger,
	}
}

// EmitToUser pushes an event to every connection in the user's room.
// Empty rooms drop the event.
func (h *Hub) EmitToUser(userID string, event string, payload any) {
	msg, err := json.Marshal(serverEvent{Event: event, Data: payload})
	if err != nil {
		h.log.Error("live: marshal event failed",
			zap.String("event", event), zap.Error(err))
		return
	}

	h.mu.RLock()
	members := h.rooms[userID]
	targets := make([]*Conn, 0, len(members))
	for c := range members {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		h.log.Debug("live: no connection in room, event dropped",
			zap.String("room", userID), zap.String("event", event))
		return
	}
	for _, c := range targets {
		c.enqueue(msg)
	}
}

// RoomCount returns the number of connections in a room.
func (h *Hub) RoomCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) register(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c] = struct{}{}
	// Every connection is implicitly a member of its private
	// connection-identifier room.
	h.addToRoom(c, c.id)
}

func (h *Hub) unregister(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[c]; !ok {
		return
	}
	delete(h.conns, c)
	for room := range c.rooms {
		h.removeFromRoom(c, room)
	}
}

// joinRoom makes c a member of exactly two rooms: its private
// connection identifier and the requested room. Joining is idempotent.
// Returns the resulting membership list.
func (h *Hub) joinRoom(c *Conn, room string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	for existing := range c.rooms {
		if existing != c.id {
			h.removeFromRoom(c, existing)
		}
	}
	h.addToRoom(c, room)
	return c.roomListLocked()
}

// inRoom reports membership, used to verify a join before acking.
func (h *Hub) inRoom(c *Conn, room string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := c.rooms[room]
	return ok
}

func (h *Hub) roomsOf(c *Conn) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return c.roomListLocked()
}

// addToRoom and removeFromRoom require h.mu to be held.
func (h *Hub) addToRoom(c *Conn, room string) {
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Conn]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
}

func (h *Hub) removeFromRoom(c *Conn, room string) {
	delete(c.rooms, room)
	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}
