package pushbus

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultTimeout = 10 * time.Second

	keyHeader = "X-Bus-Key"
)

// Publisher delivers one serialized event to a topic of the push substrate.
// The substrate itself handles fan-out and webhook retries.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, payload []byte) error
	Close() error
}

type Config struct {
	Endpoint string // base URL, e.g. https://bus.internal
	Key      string // shared access key, sent on every publish
	Timeout  time.Duration
}

type client struct {
	cfg  *Config
	http *http.Client
}

func New(cfg *Config) (Publisher, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("no push bus endpoint provided")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &client{
		cfg:  cfg,
		http: &http.Client{},
	}, nil
}

// Publish POSTs a single-element JSON array, matching the batch shape the
// substrate pushes downstream.
func (c *client) Publish(ctx context.Context, topic string, _, payload []byte) (err error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	body := make([]byte, 0, len(payload)+2)
	body = append(body, '[')
	body = append(body, payload...)
	body = append(body, ']')

	url := fmt.Sprintf("%s/topics/%s/events", c.cfg.Endpoint, topic)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build publish request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if c.cfg.Key != "" {
		req.Header.Set(keyHeader, c.cfg.Key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// transport failures and deadline hits are retryable
		return Temporary(fmt.Errorf("publish request failed: %w", err))
	}

	defer func() {
		if cErr := resp.Body.Close(); cErr != nil {
			err = fmt.Errorf("%w, failed to close response body: %w", err, cErr)
		}
	}()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	pubErr := fmt.Errorf("publish to %q rejected: %s: %s", topic, resp.Status, respBody)

	if retryableStatus(resp.StatusCode) {
		return Temporary(pubErr)
	}

	return pubErr
}

func (c *client) Close() error {
	c.http.CloseIdleConnections()

	return nil
}

func retryableStatus(code int) bool {
	return code == http.StatusRequestTimeout ||
		code == http.StatusTooManyRequests ||
		code >= http.StatusInternalServerError
}
