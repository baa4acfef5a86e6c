// Package stream is the client side of the live event channel: a persistent
// WebSocket connection that resubscribes and reconnects with bounded backoff.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	DefaultBaseDelay   = time.Second
	DefaultMaxDelay    = 30 * time.Second
	DefaultMaxAttempts = 10
	DefaultPolicyDelay = 5 * time.Minute
)

var ErrFatalClose = errors.New("server reported a fatal error")

type Config struct {
	URL         string // ws:// or wss:// endpoint
	Token       string // optional auth token, passed as a query parameter
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MaxAttempts int // consecutive failed reconnects before giving up
	PolicyDelay time.Duration
	BufferSize  int
}

type command struct {
	Action     string   `json:"action"`
	EventTypes []string `json:"eventTypes"`
}

type Client struct {
	cfg    Config
	events chan json.RawMessage

	mu   sync.Mutex
	conn *websocket.Conn
	subs []string
}

func New(cfg Config) *Client {
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}

	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultMaxDelay
	}

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}

	if cfg.PolicyDelay <= 0 {
		cfg.PolicyDelay = DefaultPolicyDelay
	}

	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 64
	}

	return &Client{
		cfg:    cfg,
		events: make(chan json.RawMessage, cfg.BufferSize),
	}
}

// Events delivers pushed envelopes. The channel closes when Run returns.
func (c *Client) Events() <-chan json.RawMessage {
	return c.events
}

// Subscribe narrows the server-side subscription set to the given event
// types. The set survives reconnects.
func (c *Client) Subscribe(eventTypes ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.subs = eventTypes

	if c.conn == nil {
		return nil
	}

	return c.conn.WriteJSON(command{Action: "subscribe", EventTypes: eventTypes})
}

// Run keeps the connection alive until ctx is canceled, the reconnect budget
// is exhausted, or the server signals a fatal close.
func (c *Client) Run(ctx context.Context) error {
	defer close(c.events)

	attempt := 0

	for {
		conn, err := c.dial(ctx)
		if err != nil {
			attempt++

			if attempt >= c.cfg.MaxAttempts {
				return fmt.Errorf("gave up after %d connect attempts: %w", attempt, err)
			}

			if !sleep(ctx, nextDelay(attempt, c.cfg.BaseDelay, c.cfg.MaxDelay)) {
				return nil
			}

			continue
		}

		attempt = 0

		c.attach(conn)

		readErr := c.readLoop(ctx, conn)

		c.detach()
		_ = conn.Close()

		if ctx.Err() != nil {
			return nil
		}

		switch closePolicy(readErr) {
		case closeFatal:
			return fmt.Errorf("%w: %s", ErrFatalClose, readErr)
		case closePolicyReject:
			// server shed this connection on purpose, back off hard
			if !sleep(ctx, c.cfg.PolicyDelay) {
				return nil
			}
		default:
			attempt = 1
			if !sleep(ctx, nextDelay(attempt, c.cfg.BaseDelay, c.cfg.MaxDelay)) {
				return nil
			}
		}
	}
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	target := c.cfg.URL

	if c.cfg.Token != "" {
		u, err := url.Parse(target)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stream url: %w", err)
		}

		q := u.Query()
		q.Set("token", c.cfg.Token)
		u.RawQuery = q.Encode()
		target = u.String()
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to dial stream (%s): %w", resp.Status, err)
		}

		return nil, fmt.Errorf("failed to dial stream: %w", err)
	}

	return conn, nil
}

func (c *Client) attach(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.conn = conn

	if len(c.subs) > 0 {
		_ = conn.WriteJSON(command{Action: "subscribe", EventTypes: c.subs})
	}
}

func (c *Client) detach() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.conn = nil
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) error {
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		select {
		case c.events <- payload:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

type closeKind int

const (
	closeOrdinary closeKind = iota
	closePolicyReject
	closeFatal
)

func closePolicy(err error) closeKind {
	switch {
	case websocket.IsCloseError(err, websocket.ClosePolicyViolation):
		return closePolicyReject
	case websocket.IsCloseError(err, websocket.CloseInternalServerErr):
		return closeFatal
	default:
		return closeOrdinary
	}
}

func nextDelay(attempt int, base, max time.Duration) time.Duration {
	delay := base

	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= max {
			return max
		}
	}

	if delay > max {
		return max
	}

	return delay
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
