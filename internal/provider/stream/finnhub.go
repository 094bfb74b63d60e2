// Package stream implements the live quote stream backed by the Finnhub
// WebSocket trade feed.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
)

const defaultWebsocketURL = "wss://ws.finnhub.io"

// Config holds the stream connection settings.
type Config struct {
	Token          string
	WebsocketURL   string
	ReconnectDelay time.Duration
	PingInterval   time.Duration
}

// Client implements QuoteStream over the Finnhub trade WebSocket.
type Client struct {
	cfg  Config
	conn *websocket.Conn
}

// New creates a Finnhub quote stream.
func New(cfg Config) domrepo.QuoteStream {
	if cfg.WebsocketURL == "" {
		cfg.WebsocketURL = defaultWebsocketURL
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	return &Client{cfg: cfg}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", c.cfg.WebsocketURL, c.cfg.Token)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("stream connect: %w", err)
	}
	c.conn = conn
	return nil
}

// Subscribe registers interest in the given symbols.
func (c *Client) Subscribe(ctx context.Context, symbols []string) error {
	if c.conn == nil {
		return fmt.Errorf("stream not connected")
	}
	for _, s := range symbols {
		msg := map[string]string{"type": "subscribe", "symbol": s}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", s, err)
		}
	}
	return nil
}

type wsTrade struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	V float64 `json:"v"`
	T int64   `json:"t"` // ms
}

type wsMessage struct {
	Type string    `json:"type"`
	Data []wsTrade `json:"data"`
}

// Read streams live quotes and errors. Both channels close when the read
// loop exits; slow consumers lose frames instead of blocking the socket.
// The ping loop is bound to this session's connection and stops with it,
// so repeated connect/read cycles never accumulate goroutines.
func (c *Client) Read(ctx context.Context) (<-chan *models.Quote, <-chan error) {
	quotes := make(chan *models.Quote, 1024)
	errs := make(chan error, 1)

	conn := c.conn
	if conn == nil {
		errs <- fmt.Errorf("stream not connected")
		close(quotes)
		close(errs)
		return quotes, errs
	}

	sessionCtx, endSession := context.WithCancel(ctx)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.cfg.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sessionCtx.Done():
				return
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// read loop
	go func() {
		defer endSession()
		defer close(quotes)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				_, b, err := conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("stream read: %w", err)
					return
				}
				var m wsMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-JSON frames
					continue
				}
				if m.Type != "trade" {
					continue
				}
				for _, d := range m.Data {
					q := &models.Quote{
						Symbol:     d.S,
						Price:      d.P,
						Volume:     int64(d.V),
						ObservedAt: time.UnixMilli(d.T).UTC(),
					}
					select {
					case quotes <- q:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return quotes, errs
}

// ReconnectDelay returns the configured backoff between connection attempts.
func (c *Client) ReconnectDelay() time.Duration { return c.cfg.ReconnectDelay }

// Close closes the WebSocket connection.
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
