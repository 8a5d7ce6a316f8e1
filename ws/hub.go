package ws

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const writeTimeout = 5 * time.Second

// Client wraps a websocket connection with a write lock so concurrent
// deliveries to the same connection do not interleave frames.
type Client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *Client) Send(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

// Hub is the per-user connection registry. A user may hold several live
// connections (multiple tabs/devices); Deliver fans out to all of them.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*Client]struct{}
	log     *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]map[*Client]struct{}),
		log:     log,
	}
}

func (h *Hub) Register(userID uuid.UUID, conn *websocket.Conn) *Client {
	client := &Client{conn: conn}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(userID uuid.UUID, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[userID]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.clients, userID)
		}
	}
}

// Deliver sends the payload to every live connection of the user.
// Best-effort: a dead connection is logged and skipped, never retried here.
func (h *Hub) Deliver(userID uuid.UUID, payload interface{}) {
	h.mu.RLock()
	conns := make([]*Client, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.Send(payload); err != nil {
			h.log.WithError(err).WithField("user", userID).Warn("ws delivery failed")
		}
	}
}

// ConnectionCount reports live connections for a user.
func (h *Hub) ConnectionCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// RunRedisBridge subscribes to the per-user event channels and feeds the
// local hub, so instances behind a load balancer all fan out. Blocks until
// the context is done.
func (h *Hub) RunRedisBridge(ctx context.Context, rdb *redis.Client) {
	sub := rdb.PSubscribe(ctx, "events:*")
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			userID, err := uuid.Parse(strings.TrimPrefix(msg.Channel, "events:"))
			if err != nil {
				h.log.WithField("channel", msg.Channel).Warn("malformed event channel")
				continue
			}
			h.Deliver(userID, json.RawMessage(msg.Payload))
		}
	}
}
