// Package bridge provides the WebSocket channel to the in-page posting
// script. Publish commands go out, outcome messages come back correlated by
// reply id.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/xiaot623/replyflow/internal/domain"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
	pongTimeout  = 60 * time.Second
)

// ErrNotConnected is returned when a publish is attempted with no live
// bridge connection.
var ErrNotConnected = errors.New("bridge not connected")

// Client is a WebSocket client for the posting bridge.
type Client struct {
	url string

	mu      sync.Mutex
	conn    *websocket.Conn
	results chan domain.PublishResult
	done    chan struct{}
}

// NewClient creates an unconnected bridge client.
func NewClient(url string) *Client {
	return &Client{
		url:     url,
		results: make(chan domain.PublishResult, 16),
	}
}

// Connect dials the bridge and starts the read loop. Safe to call again
// after a connection drop.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to dial bridge: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(pongTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongTimeout))
		return nil
	})

	c.conn = conn
	c.done = make(chan struct{})
	go c.readLoop(conn, c.done)
	go c.pingLoop(conn, c.done)
	return nil
}

// Reinject tears the connection down and dials again. Used when the hosting
// page appears to have been torn down.
func (c *Client) Reinject(ctx context.Context) error {
	c.Close()
	return c.Connect(ctx)
}

// Close drops the connection. The read loop exits on its own.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	if c.done != nil {
		select {
		case <-c.done:
		default:
			close(c.done)
		}
		c.done = nil
	}
}

// Publish sends one posting command. The outcome arrives later on Results.
func (c *Client) Publish(ctx context.Context, cmd domain.PublishCommand) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return ErrNotConnected
	}
	cmd.Type = domain.BridgeTypePublishReply

	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteJSON(cmd); err != nil {
		return fmt.Errorf("failed to send publish command: %w", err)
	}
	return nil
}

// Results is the stream of outcome messages from the page.
func (c *Client) Results() <-chan domain.PublishResult {
	return c.results
}

func (c *Client) readLoop(conn *websocket.Conn, done chan struct{}) {
	for {
		var result domain.PublishResult
		if err := conn.ReadJSON(&result); err != nil {
			select {
			case <-done:
			default:
				log.Printf("WARN: bridge: read failed: %v", err)
			}
			c.mu.Lock()
			if c.conn == conn {
				c.conn = nil
			}
			c.mu.Unlock()
			return
		}
		if result.Type != domain.BridgeTypePublishResult {
			continue
		}
		select {
		case c.results <- result:
		case <-done:
			return
		}
	}
}

func (c *Client) pingLoop(conn *websocket.Conn, done chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.conn != conn {
				c.mu.Unlock()
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			c.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
