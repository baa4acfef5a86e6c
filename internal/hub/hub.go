package hub

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"admissions-back/internal/apperrors"
	"admissions-back/internal/model"
)

type Config struct {
	MaxConnections int
	SendBuffer     int
	WriteTimeout   time.Duration
	PingInterval   time.Duration
	PongWait       time.Duration
}

// Hub fans committed events out to live websocket clients. Broadcast works on
// a snapshot of the registry, so a client connecting mid-broadcast sees only
// subsequent events.
type Hub struct {
	l   *zap.Logger
	cfg Config

	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool
}

func NewHub(l *zap.Logger, cfg Config) *Hub {
	return &Hub{
		l:       l,
		cfg:     cfg,
		clients: make(map[*Client]struct{}),
	}
}

// Register wraps an upgraded connection into a client with the default
// subscription set. ErrHubFull means the caller should close with a policy
// violation code.
func (h *Hub) Register(conn *websocket.Conn, identity string) (*Client, error) {
	client := newClient(h, conn, identity)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, apperrors.ErrHubClosed
	}

	if h.cfg.MaxConnections > 0 && len(h.clients) >= h.cfg.MaxConnections {
		return nil, apperrors.ErrHubFull
	}

	h.clients[client] = struct{}{}

	h.l.Info("Stream client connected",
		zap.String("identity", identity),
		zap.Int("clients", len(h.clients)),
	)

	return client, nil
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}

	delete(h.clients, c)

	h.l.Info("Stream client disconnected",
		zap.String("identity", c.identity),
		zap.Int("clients", len(h.clients)),
	)
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// Broadcast delivers the envelope to every subscribed client. Delivery is
// non-blocking: a client whose buffer is full is dropped rather than allowed
// to stall the rest. The drop uses the policy code so a well-behaved client
// backs off and reconnects instead of giving up.
func (h *Hub) Broadcast(envelope *model.EventEnvelope) {
	payload, err := envelope.Encode()
	if err != nil {
		h.l.Error("Failed to encode envelope for broadcast", zap.Error(err))

		return
	}

	h.mu.RLock()
	snapshot := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		snapshot = append(snapshot, client)
	}
	h.mu.RUnlock()

	for _, client := range snapshot {
		if !client.subscribed(envelope.EventType) {
			continue
		}

		select {
		case client.send <- payload:
		default:
			h.l.Warn("Dropping slow stream client",
				zap.String("identity", client.identity),
			)

			client.drop(websocket.ClosePolicyViolation, "send buffer overflow")
		}
	}
}

// Close disconnects everyone and refuses new registrations.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	snapshot := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		snapshot = append(snapshot, client)
	}
	h.mu.Unlock()

	for _, client := range snapshot {
		client.drop(websocket.CloseGoingAway, "server shutting down")
	}
}

func (h *Hub) Name() string {
	return "hub"
}

// Handle lets the hub sit on the dispatcher as a best-effort consumer.
func (h *Hub) Handle(_ context.Context, envelope *model.EventEnvelope) error {
	h.Broadcast(envelope)

	return nil
}
