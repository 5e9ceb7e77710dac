package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"roboto-sai-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// ClusterChannel carries events between instances when redis is available.
const ClusterChannel = "chat_events"

// Hub fans chat events out to every socket open on a session key.
type Hub struct {
	// Registered clients map: session key -> clients (multi-tab)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	// Closed once Run returns; sends on register/unregister give up then.
	done chan struct{}

	mu sync.RWMutex

	// Redis connection for cross-instance delivery
	rdb *redis.Client

	logger logger.ILogger
}

type clusterEnvelope struct {
	SessionKey string          `json:"session_key"`
	Origin     string          `json:"origin"`
	Message    json.RawMessage `json:"message"`
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

// Run serves register/unregister requests until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionKey] = append(h.clients[client.SessionKey], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"session": client.SessionKey})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

// join hands client to Run. It reports false when the hub has stopped.
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// leave hands client back to Run. After Run has stopped it returns at once,
// since closeAll already released every client.
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.SessionKey]
	if !ok {
		return
	}
	for i, c := range clients {
		if c == client {
			h.clients[client.SessionKey] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.SessionKey]) == 0 {
		delete(h.clients, client.SessionKey)
		h.logger.Info("Hub", "Session has no more listeners", map[string]interface{}{"session": client.SessionKey})
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key, clients := range h.clients {
		for _, c := range clients {
			close(c.Send)
		}
		delete(h.clients, key)
	}
}

// Publish delivers payload to local listeners of sessionKey and, when redis
// is configured, to listeners on other instances.
func (h *Hub) Publish(ctx context.Context, sessionKey string, payload []byte) {
	h.deliverLocal(sessionKey, payload)

	if h.rdb == nil {
		return
	}
	env, err := json.Marshal(clusterEnvelope{SessionKey: sessionKey, Origin: instanceID, Message: payload})
	if err != nil {
		return
	}
	if err := h.rdb.Publish(ctx, ClusterChannel, env).Err(); err != nil {
		h.logger.Warn("Hub", "Cluster publish failed", map[string]interface{}{"error": err.Error()})
	}
}

// Listeners reports how many sockets are open for sessionKey, or across all
// sessions when sessionKey is empty.
func (h *Hub) Listeners(sessionKey string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if sessionKey != "" {
		return len(h.clients[sessionKey])
	}
	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}

func (h *Hub) deliverLocal(sessionKey string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[sessionKey] {
		select {
		case client.Send <- payload:
		default:
			h.logger.Warn("Hub", "Client send buffer full, dropping event", map[string]interface{}{"session": sessionKey})
		}
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, ClusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env clusterEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				h.logger.Warn("Hub", "Cluster message parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			// Local listeners were already served by Publish.
			if env.Origin == instanceID {
				continue
			}
			h.deliverLocal(env.SessionKey, env.Message)
		}
	}
}
