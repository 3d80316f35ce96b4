package portal

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/muurk/picoprov/internal/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed for in-flight requests to finish on deactivation
	shutdownGrace = 3 * time.Second
)

// StatusEvent is one message on the WebSocket status feed.
type StatusEvent struct {
	Type string `json:"type"`           // "status", "connected", "disconnected", "config_mode"
	From string `json:"from,omitempty"` // Previous state, for "status" events
	To   string `json:"to,omitempty"`   // New state, for "status" events
}

// hub tracks connected WebSocket clients and fans events out to them. A
// client that cannot keep up is dropped rather than blocking the feed.
type hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func newHub() *hub {
	return &hub{clients: make(map[*websocket.Conn]bool)}
}

func (h *hub) add(c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
}

func (h *hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

// broadcast sends the event to every connected client, dropping any client
// whose write fails.
func (h *hub) broadcast(event StatusEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		if err := c.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			delete(h.clients, c)
			_ = c.Close()
			continue
		}
		if err := c.WriteJSON(event); err != nil {
			logging.Debug("Dropping slow WebSocket client")
			delete(h.clients, c)
			_ = c.Close()
		}
	}
}

// closeAll disconnects every client. Used when the portal deactivates.
func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		_ = c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "portal closing"),
			time.Now().Add(writeWait))
		_ = c.Close()
		delete(h.clients, c)
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
