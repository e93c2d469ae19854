package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/battleship-go2/internal/model"
)

// Hub tracks live connections by identity and fans events out to them
type Hub struct {
	mu      sync.RWMutex
	clients map[model.Identity]*Client
	logger  *slog.Logger
}

// Ensure Hub implements Sender
var _ Sender = (*Hub)(nil)

// NewHub creates an empty Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[model.Identity]*Client),
		logger:  logger.With(slog.String("component", "realtime")),
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client.id] = client
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client registered",
		slog.String("identity", string(client.id)),
		slog.Int("total_clients", clientCount))
}

// Unregister removes a client and closes its send buffer
func (h *Hub) Unregister(id model.Identity) {
	h.mu.Lock()
	client, ok := h.clients[id]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, id)
	close(client.send)
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client unregistered",
		slog.String("identity", string(id)),
		slog.Duration("connection_duration", time.Since(client.connectedAt)),
		slog.Int("total_clients", clientCount))
}

// Send queues an event for one identity. Unknown identities are ignored.
func (h *Hub) Send(to model.Identity, event model.Event) {
	message, err := Encode(event)
	if err != nil {
		h.logger.Error("failed to encode event",
			slog.String("event", string(event.Name)),
			slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[to]
	if !ok {
		h.logger.Debug("event for disconnected identity dropped",
			slog.String("identity", string(to)),
			slog.String("event", string(event.Name)))
		return
	}
	h.enqueue(client, event.Name, message)
}

// Broadcast queues an event for every connected identity
func (h *Hub) Broadcast(event model.Event) {
	message, err := Encode(event)
	if err != nil {
		h.logger.Error("failed to encode event",
			slog.String("event", string(event.Name)),
			slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	sentCount := 0
	droppedCount := 0
	for _, client := range h.clients {
		if h.enqueue(client, event.Name, message) {
			sentCount++
		} else {
			droppedCount++
		}
	}
	if droppedCount > 0 {
		h.logger.Warn("broadcast partial failure",
			slog.String("event", string(event.Name)),
			slog.Int("sent", sentCount),
			slog.Int("dropped", droppedCount))
	}
}

// enqueue must be called with at least the read lock held
func (h *Hub) enqueue(client *Client, name model.EventName, message []byte) bool {
	select {
	case client.send <- message:
		return true
	default:
		h.logger.Warn("message dropped - client buffer full",
			slog.String("identity", string(client.id)),
			slog.String("event", string(name)))
		return false
	}
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clientCount := len(h.clients)
	for id, client := range h.clients {
		close(client.send)
		delete(h.clients, id)
	}
	h.logger.Info("hub stopped", slog.Int("disconnected_clients", clientCount))
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Connected returns true if the identity has a live connection
func (h *Hub) Connected(id model.Identity) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[id]
	return ok
}
