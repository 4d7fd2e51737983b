// Package websocket pushes lifecycle events to connected clients.
//
// Clients join a room identified by an observer group and a recipient id
// (a supply node or a requester). Courier pool clients join with an empty
// recipient and receive every pool broadcast.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"dispatch/internal/core/ports"

	gorillaws "github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 32
)

// Message is the frame written to clients.
type Message struct {
	Topic   string `json:"topic"`
	Payload any    `json:"payload"`
}

type room struct {
	group     ports.ObserverGroup
	recipient string
}

type client struct {
	conn *gorillaws.Conn
	room room
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub implements ports.Observers over websocket connections.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[room]map[*client]struct{}
	upgrader gorillaws.Upgrader
	logger   *slog.Logger
}

var _ ports.Observers = (*Hub)(nil)

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		rooms: make(map[room]map[*client]struct{}),
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger.With("component", "ObserverHub"),
	}
}

// Notify queues event for every client in the group's room for recipient.
// An empty recipient reaches every client of the group. Slow clients whose
// buffer is full are disconnected.
func (h *Hub) Notify(ctx context.Context, group ports.ObserverGroup, recipient string, event ports.Event) error {
	frame, err := json.Marshal(Message{Topic: event.Topic, Payload: event.Payload})
	if err != nil {
		return err
	}

	var slow []*client
	h.mu.RLock()
	for r, members := range h.rooms {
		if r.group != group || (recipient != "" && r.recipient != recipient) {
			continue
		}
		for c := range members {
			select {
			case c.send <- frame:
			default:
				slow = append(slow, c)
			}
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.WarnContext(ctx, "dropping slow observer", "group", string(group), "recipient", c.room.recipient)
		h.unregister(c)
	}
	return nil
}

// Count returns the number of clients connected for group and recipient.
func (h *Hub) Count(group ports.ObserverGroup, recipient string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room{group: group, recipient: recipient}])
}

// Serve upgrades the request and keeps the connection in the room until the
// client goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, group ports.ObserverGroup, recipient string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{
		conn: conn,
		room: room{group: group, recipient: recipient},
		send: make(chan []byte, sendBuffer),
	}
	h.register(c)
	h.logger.Info("observer connected", "group", string(group), "recipient", recipient)

	go h.writePump(c)
	h.readPump(c)
	return nil
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for r, members := range h.rooms {
		for c := range members {
			c.close()
		}
		delete(h.rooms, r)
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[c.room]
	if !ok {
		members = make(map[*client]struct{})
		h.rooms[c.room] = members
	}
	members[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[c.room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, c.room)
		}
	}
	c.close()
}

// readPump discards inbound frames; it exists to process control frames and
// notice disconnects.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if gorillaws.IsUnexpectedCloseError(err, gorillaws.CloseGoingAway, gorillaws.CloseNormalClosure) {
				h.logger.Warn("observer connection lost", "group", string(c.room.group), "error", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(gorillaws.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(gorillaws.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(gorillaws.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
