// Package websocket pushes refresh notifications to open clients after
// each mutation, so a schedule left open on the fridge tablet reloads
// when a mission is toggled from a phone. Persistence stays
// last-writer-wins; the hub only nudges clients to refetch.
package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Message is a sync notification broadcast to all connected clients.
type Message struct {
	Type    string         `json:"type"`
	Entity  string         `json:"entity"`
	Action  string         `json:"action"`
	ID      string         `json:"id,omitempty"`
	Profile string         `json:"profile,omitempty"`
	Extra   map[string]any `json:"extra,omitempty"`
}

// NewMessage creates a Message with the Type field derived from entity
// and action.
func NewMessage(entity, action, id, profileName string) Message {
	return Message{
		Type:    fmt.Sprintf("%s_%s", entity, action),
		Entity:  entity,
		Action:  action,
		ID:      id,
		Profile: profileName,
	}
}

// Hub maintains the set of active WebSocket clients and broadcasts
// messages.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends a message to all connected clients.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// drop when the client buffer is full
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
