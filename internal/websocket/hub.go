package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"oracle-assistant-be/internal/dto"
	"oracle-assistant-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "workspace_events"

const (
	EventWorkspace = "workspace"
	EventAuth      = "auth"
)

type envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type clusterMessage struct {
	Origin       string          `json:"origin"`
	TargetUserID string          `json:"target_user_id"`
	Message      json.RawMessage `json:"message"`
}

// Hub tracks the open browser connections of every user on this instance. With Redis
// configured, pushes are fanned out so tabs connected to other instances see them too.
type Hub struct {
	// UserID -> connections (multi-tab, multi-device)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb        *redis.Client
	instanceID string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("HUB", "Client registered", map[string]interface{}{"user_id": client.UserID.String()})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[client.UserID]
	for i, c := range clients {
		if c == client {
			h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.UserID]) == 0 {
		delete(h.clients, client.UserID)
		h.logger.Info("HUB", "Client completely unregistered", map[string]interface{}{"user_id": client.UserID.String()})
	}
}

// PushWorkspace sends the user's latest workspace view to all their connections.
func (h *Hub) PushWorkspace(userID uuid.UUID, view *dto.WorkspaceView) {
	h.push(userID, envelope{Type: EventWorkspace, Data: view})
}

// PushAuth tells the user's other tabs about a sign-in or sign-out.
func (h *Hub) PushAuth(userID uuid.UUID, event string) {
	h.push(userID, envelope{Type: EventAuth, Data: map[string]string{"event": event}})
}

func (h *Hub) push(userID uuid.UUID, msg envelope) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("HUB", "Failed to encode push", map[string]interface{}{"error": err.Error()})
		return
	}

	h.deliver(userID, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterMessage{
			Origin:       h.instanceID,
			TargetUserID: userID.String(),
			Message:      data,
		})
		if err := h.rdb.Publish(context.Background(), clusterChannel, payload).Err(); err != nil {
			h.logger.Warn("HUB", "Redis publish failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

// deliver holds the read lock for the whole loop: remove closes Send under the
// write lock, so a send here never races a close.
func (h *Hub) deliver(userID uuid.UUID, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[userID] {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("HUB", "Client send buffer full, dropping connection", map[string]interface{}{"user_id": userID.String()})
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

// ConnectionCount is the number of open connections for a user on this instance.
func (h *Hub) ConnectionCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Every instance subscribes to one channel and keeps the messages addressed to
// users it holds connections for.
func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
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
			h.handleClusterMessage(msg.Payload)
		}
	}
}

func (h *Hub) handleClusterMessage(raw string) {
	var payload clusterMessage
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		h.logger.Warn("HUB", "Redis message parse error", map[string]interface{}{"error": err.Error()})
		return
	}
	if payload.Origin == h.instanceID {
		return
	}

	userID, err := uuid.Parse(payload.TargetUserID)
	if err != nil {
		return
	}
	h.deliver(userID, payload.Message)
}
