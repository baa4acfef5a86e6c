package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"admissions-back/internal/model"
)

// Client is one live websocket subscriber. Fresh clients start subscribed to
// the full event set and narrow it with stream commands.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	identity string
	send     chan []byte

	mu   sync.RWMutex
	subs map[string]struct{}

	closeOnce sync.Once
	done      chan struct{}
}

func newClient(h *Hub, conn *websocket.Conn, identity string) *Client {
	subs := make(map[string]struct{}, len(model.StreamEvents))
	for _, eventType := range model.StreamEvents {
		subs[eventType] = struct{}{}
	}

	return &Client{
		hub:      h,
		conn:     conn,
		identity: identity,
		send:     make(chan []byte, h.cfg.SendBuffer),
		subs:     subs,
		done:     make(chan struct{}),
	}
}

func (c *Client) subscribed(eventType string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.subs[eventType]

	return ok
}

func (c *Client) apply(cmd model.StreamCommand) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch cmd.Action {
	case model.StreamActionSubscribe:
		for _, eventType := range cmd.EventTypes {
			c.subs[eventType] = struct{}{}
		}
	case model.StreamActionUnsubscribe:
		for _, eventType := range cmd.EventTypes {
			delete(c.subs, eventType)
		}
	}
}

// Run pumps the connection until the context ends or either side closes.
// Blocks the caller, which is how gin keeps the handler alive.
func (c *Client) Run(ctx context.Context) {
	go c.writePump()

	go func() {
		select {
		case <-ctx.Done():
			c.drop(websocket.CloseGoingAway, "server shutting down")
		case <-c.done:
		}
	}()

	c.readPump()
}

func (c *Client) readPump() {
	defer c.drop(websocket.CloseNormalClosure, "")

	_ = c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.PongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var cmd model.StreamCommand
		if err := json.Unmarshal(raw, &cmd); err != nil {
			c.hub.l.Debug("Ignoring malformed stream command",
				zap.String("identity", c.identity),
				zap.Error(err),
			)

			continue
		}

		c.apply(cmd)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case payload, ok := <-c.send:
			if !ok {
				return
			}

			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))

			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.drop(websocket.CloseInternalServerErr, "write failed")

				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(c.hub.cfg.WriteTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				c.drop(websocket.CloseInternalServerErr, "ping failed")

				return
			}
		}
	}
}

// drop closes the connection with the given code, at most once, and takes the
// client out of the registry.
func (c *Client) drop(code int, reason string) {
	c.closeOnce.Do(func() {
		deadline := time.Now().Add(time.Second)
		_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
		_ = c.conn.Close()

		close(c.done)

		c.hub.unregister(c)
	})
}
