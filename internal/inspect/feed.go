package inspect

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/dropzone/pkg/upload"
)

// MessageType represents the type of feed message.
type MessageType string

const (
	MessageTypeState  MessageType = "state"
	MessageTypeClosed MessageType = "closed"
)

// Message is sent to feed clients via WebSocket.
type Message struct {
	Type  MessageType   `json:"type"`
	State *upload.State `json:"state,omitempty"`
	View  *upload.View  `json:"view,omitempty"`
}

// Feed defaults.
const (
	// DefaultWriteTimeout bounds a single write to a feed client.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultSendBuffer is the number of snapshots queued per client.
	// When a client falls behind, the oldest queued snapshot is dropped.
	DefaultSendBuffer = 16
)

type client struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex // guards send and closed
	closed bool
}

func newClient(conn *websocket.Conn, buffer int) *client {
	return &client{
		conn: conn,
		send: make(chan []byte, buffer),
	}
}

// enqueue queues data without blocking, dropping the oldest queued
// message when the buffer is full.
func (c *client) enqueue(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	for {
		select {
		case c.send <- data:
			return
		default:
		}
		select {
		case <-c.send:
		default:
		}
	}
}

// close stops the writer once the queued messages are flushed.
func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// writeLoop sends queued messages until the queue is closed or a write
// fails, then closes the connection.
func (c *client) writeLoop(timeout time.Duration) {
	defer c.conn.Close()

	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(timeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(timeout))
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Feed streams widget snapshots to WebSocket clients.
//
// Publish never blocks on a client: each client has its own queue and
// writer goroutine, and a client that stops reading is disconnected once
// a write exceeds the write timeout.
type Feed struct {
	clients  map[*client]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader

	writeTimeout time.Duration
	sendBuffer   int

	// current returns the message sent to a client when it connects.
	current func() Message
}

// NewFeed creates a feed. current supplies the greeting for new clients.
func NewFeed(current func() Message) *Feed {
	return &Feed{
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // local debugging tool
			},
		},
		writeTimeout: DefaultWriteTimeout,
		sendBuffer:   DefaultSendBuffer,
		current:      current,
	}
}

// SetWriteTimeout sets the deadline applied to each write. Non-positive
// values are ignored. Call it before serving clients.
func (f *Feed) SetWriteTimeout(d time.Duration) {
	if d > 0 {
		f.writeTimeout = d
	}
}

// HandleWebSocket upgrades the connection, sends the current snapshot and
// keeps the client registered until it disconnects.
func (f *Feed) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := f.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}

	c := newClient(conn, f.sendBuffer)

	// The greeting is queued under the lock so it precedes any Publish.
	f.mu.Lock()
	f.clients[c] = true
	if f.current != nil {
		if data, err := json.Marshal(f.current()); err == nil {
			c.enqueue(data)
		}
	}
	f.mu.Unlock()

	go c.writeLoop(f.writeTimeout)

	// Keep connection alive until client disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	f.remove(c)
}

// Publish queues msg for all clients. It does not wait for delivery.
func (f *Feed) Publish(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	for c := range f.clients {
		c.enqueue(data)
	}
}

// ClientCount returns the number of connected clients.
func (f *Feed) ClientCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// Close disconnects all clients after their queued messages are sent.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for c := range f.clients {
		c.close()
		delete(f.clients, c)
	}
}

func (f *Feed) remove(c *client) {
	f.mu.Lock()
	delete(f.clients, c)
	f.mu.Unlock()
	c.close()
}
