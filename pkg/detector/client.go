// Package detector connects to an external facial-landmark detector over
// WebSocket and feeds its frames into the pipeline queue. The detector is
// a sidecar process (camera plus face mesh model); this client owns the
// connection lifecycle, including reconnect with backoff.
package detector

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/oculab/go-ocular/internal/log"
	"github.com/oculab/go-ocular/pkg/pipeline"
	"github.com/oculab/go-ocular/pkg/protocol"
)

// Config holds connection tuning.
type Config struct {
	// URL of the detector's landmark stream, e.g. ws://localhost:9000/landmarks.
	URL string

	DialTimeout time.Duration

	// Reconnect backoff window. Delay doubles from Min to Max and resets
	// after a successful connect.
	ReconnectMin time.Duration
	ReconnectMax time.Duration
}

// DefaultConfig returns sane reconnect behavior for a local sidecar.
func DefaultConfig(url string) Config {
	return Config{
		URL:          url,
		DialTimeout:  10 * time.Second,
		ReconnectMin: 500 * time.Millisecond,
		ReconnectMax: 15 * time.Second,
	}
}

// Client is a reconnecting subscriber to one detector stream.
type Client struct {
	cfg   Config
	queue *pipeline.FrameQueue

	mu        sync.Mutex
	connected bool
}

// New creates a client feeding the given queue.
func New(cfg Config, queue *pipeline.FrameQueue) *Client {
	if cfg.ReconnectMin <= 0 {
		cfg.ReconnectMin = 500 * time.Millisecond
	}
	if cfg.ReconnectMax < cfg.ReconnectMin {
		cfg.ReconnectMax = 15 * time.Second
	}
	return &Client{cfg: cfg, queue: queue}
}

// Connected reports whether a detector connection is currently up.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Client) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}

// Run connects and consumes the stream until the context is cancelled,
// reconnecting with exponential backoff after any failure.
func (c *Client) Run(ctx context.Context) error {
	delay := c.cfg.ReconnectMin

	for {
		err := c.runOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			log.Warn("detector connection lost", "url", c.cfg.URL, "err", err, "retry_in", delay)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}

		delay *= 2
		if delay > c.cfg.ReconnectMax {
			delay = c.cfg.ReconnectMax
		}
	}
}

// runOnce dials, then pumps messages until the connection drops.
func (c *Client) runOnce(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.DialTimeout}

	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	log.Info("detector connected", "url", c.cfg.URL)
	c.setConnected(true)
	defer c.setConnected(false)

	// Close the socket when the context ends so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if err := c.dispatch(ctx, conn, data); err != nil {
			return err
		}
	}
}

// dispatch routes one wire message. Malformed messages are logged and
// skipped; only queue/context failures abort the connection.
func (c *Client) dispatch(ctx context.Context, conn *websocket.Conn, data []byte) error {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		log.Warn("malformed detector message", "err", err)
		return nil
	}

	switch msg.Type {
	case protocol.TypeLandmarks:
		lm, err := msg.GetLandmarksData()
		if err != nil {
			log.Warn("bad landmarks payload", "err", err)
			return nil
		}
		return c.queue.Push(ctx, pipeline.Item{Frame: lm.ToFrame()})

	case protocol.TypeNoFace:
		return c.queue.Push(ctx, pipeline.Item{Miss: true})

	case protocol.TypePing:
		ping, err := msg.GetPingData()
		if err != nil {
			return nil
		}
		pong, err := protocol.NewPongMessage(ping.ID, msg.Timestamp, time.Now().UnixMilli())
		if err != nil {
			return nil
		}
		payload, err := pong.Bytes()
		if err != nil {
			return nil
		}
		return conn.WriteMessage(websocket.TextMessage, payload)

	default:
		log.Warn("unexpected detector message", "type", msg.Type)
		return nil
	}
}
