// Package feed streams route mutation events to connected clients over
// websockets, fanned out across instances through a redis channel.
package feed

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Channel carries route events between instances.
const Channel = "feed:routes"

// Event is one route mutation: created, updated, or deleted.
type Event struct {
	Kind    string    `json:"kind"`
	RouteID string    `json:"routeId"`
	At      time.Time `json:"at"`
}

type Hub struct {
	redis   *redis.Client
	clients map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	Send chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		clients: map[*Client]struct{}{},
	}
	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register() *Client {
	client := &Client{Send: make(chan []byte, 64)}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.Send)
	}
}

// Publish broadcasts a route event to local clients and onto the redis
// channel for other instances. It satisfies the persistence layer's
// Publisher contract; failures are logged, never propagated into the
// mutation path.
func (h *Hub) Publish(ctx context.Context, kind, routeID string) {
	payload, err := json.Marshal(Event{Kind: kind, RouteID: routeID, At: time.Now().UTC()})
	if err != nil {
		log.Printf("feed marshal error: %v", err)
		return
	}
	if h.redis == nil {
		h.deliver(payload)
		return
	}
	// local clients receive the event through our own subscription
	if err := h.redis.Publish(ctx, Channel, payload).Err(); err != nil {
		log.Printf("feed publish error: %v", err)
		h.deliver(payload)
	}
}

func (h *Hub) deliver(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis() {
	pubsub := h.redis.Subscribe(context.Background(), Channel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.deliver([]byte(msg.Payload))
	}
}
