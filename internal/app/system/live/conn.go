// internal/app/system/live/conn.go
package live

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 << 10
	sendBuffer     = 32
)

// clientMessage is what clients send: join_room and get_rooms. AckID is
// echoed back so the client can correlate the reply (the callback
// equivalent).
type clientMessage struct {
	Action string `json:"action"`
	Room   string `json:"room,omitempty"`
	AckID  string `json:"ack_id,omitempty"`
}

// ackReply answers a client message.
type ackReply struct {
	Event   string   `json:"event"`
	AckID   string   `json:"ack_id,omitempty"`
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Rooms   []string `json:"rooms,omitempty"`
}

// Conn is one websocket connection. The private identifier id doubles
// as an always-held room name; userID is the authenticated user the
// connection may join.
type Conn struct {
	id     string
	userID string
	ws     *websocket.Conn
	send   chan []byte
	rooms  map[string]struct{} // guarded by hub.mu
	hub    *Hub
	log    *zap.Logger
}

// NewConn wraps an upgraded websocket for the authenticated user,
// registers it with the hub, and starts its pumps. The caller has
// already validated the credential.
func NewConn(hub *Hub, ws *websocket.Conn, userID string) *Conn {
	c := &Conn{
		id:     uuid.NewString(),
		userID: userID,
		ws:     ws,
		send:   make(chan []byte, sendBuffer),
		rooms:  make(map[string]struct{}),
		hub:    hub,
	}
	c.log = hub.log.With(zap.String("conn_id", c.id), zap.String("user_id", userID))
	hub.register(c)
	go c.writePump()
	go c.readPump()
	return c
}

// ID returns the private connection identifier.
func (c *Conn) ID() string { return c.id }

// roomListLocked returns the connection's memberships sorted for
// stable replies. hub.mu must be held.
func (c *Conn) roomListLocked() []string {
	out := make([]string, 0, len(c.rooms))
	for room := range c.rooms {
		out = append(out, room)
	}
	sort.Strings(out)
	return out
}

func (c *Conn) enqueue(msg []byte) {
	select {
	case c.send <- msg:
	default:
		// Slow consumer: drop the connection rather than block the hub.
		c.log.Warn("live: send buffer full, closing connection")
		go c.close()
	}
}

func (c *Conn) close() {
	c.hub.unregister(c)
	_ = c.ws.Close()
}

func (c *Conn) readPump() {
	defer c.close()
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("live: read failed", zap.Error(err))
			}
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.reply(ackReply{Event: "error", Success: false, Message: "malformed message"})
			continue
		}
		c.handle(msg)
	}
}

func (c *Conn) handle(msg clientMessage) {
	switch msg.Action {
	case "join_room":
		c.handleJoin(msg)
	case "get_rooms":
		c.reply(ackReply{
			Event:   "get_rooms",
			AckID:   msg.AckID,
			Success: true,
			Rooms:   c.hub.roomsOf(c),
		})
	default:
		c.reply(ackReply{
			Event:   "error",
			AckID:   msg.AckID,
			Success: false,
			Message: "unknown action: " + msg.Action,
		})
	}
}

// handleJoin enforces the one-room rule: a connection may only join the
// room named after its own authenticated user ID. The join leaves every
// other room first (except the private connection identifier), then
// verifies membership before acking.
func (c *Conn) handleJoin(msg clientMessage) {
	if msg.Room == "" || msg.Room != c.userID {
		c.log.Warn("live: unauthorized join rejected", zap.String("room", msg.Room))
		c.reply(ackReply{
			Event:   "join_room",
			AckID:   msg.AckID,
			Success: false,
			Message: "unauthorized: cannot join another user's room",
		})
		return
	}
	rooms := c.hub.joinRoom(c, msg.Room)
	if !c.hub.inRoom(c, msg.Room) {
		c.reply(ackReply{
			Event:   "join_room",
			AckID:   msg.AckID,
			Success: false,
			Message: "join failed",
		})
		return
	}
	c.log.Debug("live: joined room", zap.String("room", msg.Room))
	c.reply(ackReply{
		Event:   "join_room",
		AckID:   msg.AckID,
		Success: true,
		Rooms:   rooms,
	})
}

func (c *Conn) reply(a ackReply) {
	msg, err := json.Marshal(a)
	if err != nil {
		return
	}
	c.enqueue(msg)
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
