// Package transport wraps the real-time connection to the chat backend.
// Events are JSON frames of the form {"event": ..., "data": ...}; outbound
// emissions are fire-and-forget and inbound events are delivered in arrival
// order on a single reader goroutine.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/coder/websocket"

	"github.com/helix-dev/helix/internal/chat"
)

// Outbound event names.
const (
	eventJoinRoom    = "join_room"
	eventLeaveRoom   = "leave_room"
	eventSendMessage = "send_message"
)

// Inbound event names.
const (
	eventReceiveMessage = "receive_message"
	eventAPIResponse    = "api_response"
)

// frame is the wire shape of every event in both directions.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// sendMessagePayload is the data of an outbound send_message frame.
type sendMessagePayload struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

// Client is a facade over one WebSocket connection. At most one connection
// is active per Client; Connect replaces any prior connection rather than
// stacking a second one. All methods are safe for concurrent use.
//
// Handler registration is last-registration-wins: each On* call replaces the
// previously registered handler. Events arriving before Connect returns are
// not guaranteed to be delivered.
type Client struct {
	socketURL string

	mu            sync.Mutex
	conn          *websocket.Conn
	cancelRead    context.CancelFunc
	onMessage     func(chat.Message)
	onAPIResponse func(json.RawMessage)
	onError       func(error)
}

// NewClient creates a Client for the given socket URL
// (e.g. "ws://127.0.0.1:3000/ws").
func NewClient(socketURL string) *Client {
	return &Client{socketURL: socketURL}
}

// Connect dials the backend, identifying as username via query parameter,
// and starts the read loop. If a connection is already active it is closed
// first; the replacement never leaks the prior connection.
func (c *Client) Connect(ctx context.Context, username string) error {
	dialURL, err := url.Parse(c.socketURL)
	if err != nil {
		return fmt.Errorf("transport: parsing socket URL: %w", err)
	}
	q := dialURL.Query()
	q.Set("username", username)
	dialURL.RawQuery = q.Encode()

	conn, _, err := websocket.Dial(ctx, dialURL.String(), nil)
	if err != nil {
		return fmt.Errorf("transport: connecting: %w", err)
	}

	c.mu.Lock()
	if c.conn != nil {
		c.closeLocked()
	}
	readCtx, cancel := context.WithCancel(context.Background())
	c.conn = conn
	c.cancelRead = cancel
	c.mu.Unlock()

	go c.readLoop(readCtx, conn)
	return nil
}

// Disconnect closes the active connection. Idempotent; safe to call when
// not connected.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

// closeLocked tears down the current connection. Caller holds c.mu.
func (c *Client) closeLocked() {
	if c.conn == nil {
		return
	}
	if c.cancelRead != nil {
		c.cancelRead()
	}
	_ = c.conn.Close(websocket.StatusNormalClosure, "client disconnect")
	c.conn = nil
	c.cancelRead = nil
}

// Connected reports whether a connection is currently active.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// JoinRoom subscribes to a room's events. No-op when not connected.
func (c *Client) JoinRoom(roomID string) {
	c.emit(eventJoinRoom, roomID)
}

// LeaveRoom unsubscribes from a room's events. No-op when not connected.
func (c *Client) LeaveRoom(roomID string) {
	c.emit(eventLeaveRoom, roomID)
}

// SendMessage emits a chat message to a room. Fire-and-forget; no-op when
// not connected.
func (c *Client) SendMessage(roomID, text string) {
	c.emit(eventSendMessage, sendMessagePayload{RoomID: roomID, Message: text})
}

// OnMessageReceived registers the handler for inbound receive_message
// events. Last registration wins.
func (c *Client) OnMessageReceived(handler func(chat.Message)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onMessage = handler
}

// OnAPIResponseReceived registers the handler for inbound api_response
// events, delivering the raw reply payload. Last registration wins.
func (c *Client) OnAPIResponseReceived(handler func(json.RawMessage)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAPIResponse = handler
}

// OnError registers the handler invoked for read-loop and emit failures.
// Transport errors are never fatal; last registration wins.
func (c *Client) OnError(handler func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = handler
}

// emit writes one event frame to the active connection.
func (c *Client) emit(event string, data any) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return
	}

	payload, err := json.Marshal(data)
	if err != nil {
		c.reportError(fmt.Errorf("transport: marshal %s: %w", event, err))
		return
	}
	msg, err := json.Marshal(frame{Event: event, Data: payload})
	if err != nil {
		c.reportError(fmt.Errorf("transport: marshal %s frame: %w", event, err))
		return
	}

	if err := conn.Write(context.Background(), websocket.MessageText, msg); err != nil {
		c.reportError(fmt.Errorf("transport: write %s: %w", event, err))
	}
}

// readLoop reads frames until the connection closes and dispatches them in
// arrival order. Malformed frames are reported, not fatal.
func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			// Normal closure and context cancellation end the loop quietly.
			if ctx.Err() == nil && websocket.CloseStatus(err) == -1 {
				c.reportError(fmt.Errorf("transport: read: %w", err))
			}
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			c.reportError(fmt.Errorf("transport: malformed frame: %w", err))
			continue
		}

		switch f.Event {
		case eventReceiveMessage:
			var msg chat.Message
			if err := json.Unmarshal(f.Data, &msg); err != nil {
				c.reportError(fmt.Errorf("transport: malformed receive_message: %w", err))
				continue
			}
			if handler := c.messageHandler(); handler != nil {
				handler(msg)
			}
		case eventAPIResponse:
			if handler := c.apiResponseHandler(); handler != nil {
				handler(f.Data)
			}
		}
	}
}

func (c *Client) messageHandler() func(chat.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.onMessage
}

func (c *Client) apiResponseHandler() func(json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.onAPIResponse
}

func (c *Client) reportError(err error) {
	c.mu.Lock()
	handler := c.onError
	c.mu.Unlock()
	if handler != nil {
		handler(err)
	}
}
