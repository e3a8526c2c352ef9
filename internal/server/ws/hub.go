// Package ws streams one frame per simulation tick to connected dashboard
// clients over WebSocket.
package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/signalscope/signalscope/internal/sim"
)

// Hub maintains active WebSocket connections and broadcasts tick frames.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Outbound messages to all clients
	broadcast chan []byte

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	mu sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc

	logger logrus.FieldLogger
}

// TickMessage is the wire format for one simulation tick.
type TickMessage struct {
	Type      string    `json:"type"`
	Frame     sim.Frame `json:"frame"`
	State     sim.State `json:"state"`
	Timestamp time.Time `json:"timestamp"`
}

// NewHub creates a hub bound to the given context.
func NewHub(ctx context.Context, logger logrus.FieldLogger) *Hub {
	hubCtx, cancel := context.WithCancel(ctx)
	return &Hub{
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		ctx:        hubCtx,
		cancel:     cancel,
		logger:     logger,
	}
}

// Run processes registrations and broadcasts until the context is done.
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.WithField("client", client.id).Debug("websocket client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.WithField("client", client.id).Debug("websocket client disconnected")

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client buffer full, drop the connection
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// drop unregisters a client, giving up once the hub has shut down so a
// disconnecting client never blocks on a hub that stopped receiving.
func (h *Hub) drop(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.ctx.Done():
	}
}

// Stop shuts the hub down and closes all client connections.
func (h *Hub) Stop() {
	h.cancel()
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

// BroadcastFrame sends one tick frame and the accompanying state snapshot to
// every connected client. Implements sim.Broadcaster.
func (h *Hub) BroadcastFrame(frame sim.Frame, state sim.State) {
	msg := TickMessage{
		Type:      "tick",
		Frame:     frame,
		State:     state,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.WithError(err).Warn("failed to marshal tick message")
		return
	}

	select {
	case h.broadcast <- data:
	case <-h.ctx.Done():
	default:
		// Broadcast queue full: drop the frame, the next tick carries the
		// complete state anyway.
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
