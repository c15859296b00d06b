package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/gestify/internal/app"
)

const (
	// writeWait bounds a single websocket write.
	writeWait = 2 * time.Second

	// sendBuffer is the number of events queued per client.
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// EventMessage is the JSON sent to websocket clients for each trigger.
type EventMessage struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	Action     string  `json:"action,omitempty"`
	Confidence float32 `json:"confidence"`
	Text       string  `json:"text"`
	Timestamp  int64   `json:"timestamp"`
}

// NewEventMessage converts a trigger event for the wire.
func NewEventMessage(e app.TriggerEvent) EventMessage {
	return EventMessage{
		ID:         e.ID,
		Label:      e.Label,
		Action:     string(e.Action),
		Confidence: e.Confidence,
		Text:       e.Text(),
		Timestamp:  e.FiredAt.UnixMilli(),
	}
}

// EventHub broadcasts trigger events to websocket clients. Each client has
// its own send buffer drained by a writer goroutine, so a slow client never
// blocks Publish; its messages are dropped once the buffer is full.
type EventHub struct {
	clients map[*client]struct{}
	mu      sync.Mutex
	closed  bool
	dropped atomic.Uint64
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewEventHub creates an empty EventHub.
func NewEventHub() *EventHub {
	return &EventHub{clients: make(map[*client]struct{})}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	defer h.remove(c)

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// writePump sends queued messages until the send channel is closed or a
// write fails. Closing the connection also ends the read loop.
func (h *EventHub) writePump(c *client) {
	defer c.conn.Close()

	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *EventHub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Publish queues e for every connected client without blocking.
func (h *EventHub) Publish(e app.TriggerEvent) {
	msg, err := json.Marshal(NewEventMessage(e))
	if err != nil {
		log.Printf("failed to encode event: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.dropped.Add(1)
		}
	}
}

// Clients returns the number of connected clients.
func (h *EventHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped returns the number of messages discarded because a client's send
// buffer was full.
func (h *EventHub) Dropped() uint64 {
	return h.dropped.Load()
}

// Close disconnects every client and rejects new ones.
func (h *EventHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
