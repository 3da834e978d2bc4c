// Package hub fans each completed cycle out to websocket clients. Clients
// subscribe to route variant keys (the leaderboard bucket keys) or to "*"
// for the whole fleet.
package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"buspulse/internal/domain"
)

// SubscribeAll is the wildcard subscription key.
const SubscribeAll = "*"

type Client struct {
	ID     string
	Send   chan []byte
	routes map[string]struct{}
	mu     sync.RWMutex
}

func NewClient(id string, bufferSize int) *Client {
	return &Client{
		ID:     id,
		Send:   make(chan []byte, bufferSize),
		routes: make(map[string]struct{}),
	}
}

func (c *Client) AddRoutes(keys []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		c.routes[key] = struct{}{}
	}
}

func (c *Client) RemoveRoutes(keys []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.routes, key)
	}
}

// wantsAll reports whether the client holds the wildcard subscription.
func (c *Client) wantsAll() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.routes[SubscribeAll]
	return ok
}

func (c *Client) wantsVariant(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.routes[SubscribeAll]; ok {
		return true
	}
	_, ok := c.routes[key]
	return ok
}

func (c *Client) hasSubscriptions() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.routes) > 0
}

type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan *domain.CycleResult

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		broadcast:  make(chan *domain.CycleResult, 8),
		logger:     logger,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAllClients()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug("client registered", "client_id", client.ID, "total", h.ClientCount())

		case client := <-h.unregister:
			h.removeClient(client)

		case result := <-h.broadcast:
			h.fanout(result)
		}
	}
}

// Broadcast queues a cycle result for fanout. Drops the result rather than
// block the poll loop when the hub is backed up.
func (h *Hub) Broadcast(result *domain.CycleResult) {
	select {
	case h.broadcast <- result:
	default:
		h.logger.Warn("broadcast channel full, dropping cycle result")
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CycleMessage is the per-client push for one completed cycle. Vehicles are
// filtered to the client's subscriptions; stats always cover the full fleet.
type CycleMessage struct {
	Type    string       `json:"type"`
	Payload CyclePayload `json:"payload"`
}

type CyclePayload struct {
	UpdatedAt *string                  `json:"updatedAt,omitempty"`
	Stats     domain.FleetStats        `json:"stats"`
	Vehicles  []domain.VehiclePosition `json:"vehicles"`
}

func (h *Hub) fanout(result *domain.CycleResult) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if !client.hasSubscriptions() {
			continue
		}

		msg := buildCycleMessage(client, result)
		data, err := json.Marshal(msg)
		if err != nil {
			continue
		}

		select {
		case client.Send <- data:
		default:
			h.logger.Debug("client send buffer full", "client_id", client.ID)
		}
	}
}

func buildCycleMessage(client *Client, result *domain.CycleResult) CycleMessage {
	vehicles := result.Snapshot.Vehicles
	if !client.wantsAll() {
		filtered := make([]domain.VehiclePosition, 0)
		for _, v := range vehicles {
			if client.wantsVariant(v.VariantKey) {
				filtered = append(filtered, v)
			}
		}
		vehicles = filtered
	}

	return CycleMessage{
		Type: "cycle",
		Payload: CyclePayload{
			UpdatedAt: result.Snapshot.UpdatedAt,
			Stats:     result.Snapshot.Stats,
			Vehicles:  vehicles,
		},
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}

	delete(h.clients, client)
	close(client.Send)
	h.logger.Debug("client unregistered", "client_id", client.ID, "total", len(h.clients))
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.Send)
	}
	h.clients = make(map[*Client]struct{})
}
