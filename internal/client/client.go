// Package client implements the WebSocket client side of the table
// protocol: request/response correlation by request ID plus a stream
// of pushed game event frames.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/server" // Reuse message types
)

// DefaultCallTimeout bounds a request/response exchange when the
// caller's context carries no deadline.
const DefaultCallTimeout = 10 * time.Second

// ServerError is an error frame returned by the server.
type ServerError struct {
	Code    string
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Client represents a WebSocket client for the blackjack server
type Client struct {
	serverURL string
	conn      *websocket.Conn
	send      chan *server.Message
	events    chan Event
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	connected bool
	closeOnce sync.Once
	pending   map[string]chan *server.Message
	welcome   *server.WelcomeData
	lastState *game.Snapshot
}

// NewClient creates a new WebSocket client
func NewClient(serverURL string, logger *log.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		serverURL: serverURL,
		send:      make(chan *server.Message, 256),
		events:    make(chan Event, 256),
		logger:    logger.WithPrefix("client"),
		ctx:       ctx,
		cancel:    cancel,
		pending:   make(map[string]chan *server.Message),
	}
}

// Connect establishes a WebSocket connection to the server
func (c *Client) Connect() error {
	c.logger.Info("Connecting to server", "url", c.serverURL)

	u, err := url.Parse(c.serverURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	// Convert http/https to ws/wss
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}

	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readPump()
	go c.writePump()

	c.logger.Info("Connected to server")
	return nil
}

// Disconnect closes the WebSocket connection
func (c *Client) Disconnect() error {
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		defer c.mu.Unlock()

		if c.conn != nil {
			_ = c.conn.Close()
			c.connected = false
		}

		close(c.send)
		c.logger.Info("Disconnected from server")
	})
	return nil
}

// IsConnected returns whether the client is connected
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Events returns the stream of game event frames pushed by the server.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Welcome returns the welcome data received by Hello, if any.
func (c *Client) Welcome() *server.WelcomeData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.welcome
}

// LastState returns the most recent snapshot seen on any frame.
func (c *Client) LastState() *game.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastState
}

// Hello joins the table. A non-empty sessionID asks the server to
// resume that session's bankroll.
func (c *Client) Hello(ctx context.Context, playerName, token, sessionID string) (server.WelcomeData, error) {
	resp, err := c.call(ctx, server.MessageTypeHello, server.HelloData{
		PlayerName: playerName,
		Token:      token,
		SessionID:  sessionID,
	})
	if err != nil {
		return server.WelcomeData{}, err
	}

	var welcome server.WelcomeData
	if err := json.Unmarshal(resp.Data, &welcome); err != nil {
		return server.WelcomeData{}, fmt.Errorf("decode welcome: %w", err)
	}

	c.mu.Lock()
	c.welcome = &welcome
	c.mu.Unlock()
	return welcome, nil
}

// Do applies a table action and returns the resulting state.
func (c *Client) Do(ctx context.Context, action string, hand, amount int) (game.Snapshot, error) {
	resp, err := c.call(ctx, server.MessageTypeAction, server.ActionData{
		Action: action,
		Hand:   hand,
		Amount: amount,
	})
	if err != nil {
		return game.Snapshot{}, err
	}
	return c.decodeState(resp)
}

// State fetches the current snapshot.
func (c *Client) State(ctx context.Context) (game.Snapshot, error) {
	resp, err := c.call(ctx, server.MessageTypeGetState, struct{}{})
	if err != nil {
		return game.Snapshot{}, err
	}
	return c.decodeState(resp)
}

func (c *Client) decodeState(msg *server.Message) (game.Snapshot, error) {
	var data server.StateData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return game.Snapshot{}, fmt.Errorf("decode state: %w", err)
	}
	c.setState(data.State)
	return data.State, nil
}

func (c *Client) setState(snap game.Snapshot) {
	c.mu.Lock()
	c.lastState = &snap
	c.mu.Unlock()
}

// call sends a request frame and waits for the frame that echoes its
// request ID. Error frames come back as *ServerError.
func (c *Client) call(ctx context.Context, msgType server.MessageType, data any) (*server.Message, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultCallTimeout)
		defer cancel()
	}

	msg, err := server.NewMessage(msgType, data)
	if err != nil {
		return nil, err
	}
	requestID := uuid.NewString()
	msg.RequestID = requestID

	respChan := make(chan *server.Message, 1)
	c.mu.Lock()
	c.pending[requestID] = respChan
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, requestID)
		c.mu.Unlock()
	}()

	if err := c.sendMessage(msg); err != nil {
		return nil, err
	}

	select {
	case resp := <-respChan:
		if resp.Type == server.MessageTypeError {
			var errData server.ErrorData
			if err := json.Unmarshal(resp.Data, &errData); err != nil {
				return nil, fmt.Errorf("decode error frame: %w", err)
			}
			return nil, &ServerError{Code: errData.Code, Message: errData.Message}
		}
		return resp, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for %s response: %w", msgType, ctx.Err())
	case <-c.ctx.Done():
		return nil, fmt.Errorf("connection closed: %w", c.ctx.Err())
	}
}

// sendMessage enqueues a frame for the write pump. The connected check
// and Disconnect's close of the send channel are serialized on c.mu.
func (c *Client) sendMessage(msg *server.Message) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected {
		return fmt.Errorf("not connected")
	}

	select {
	case c.send <- msg:
		return nil
	default:
		return fmt.Errorf("send buffer full")
	}
}

// readPump handles incoming messages from the server
func (c *Client) readPump() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg server.Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the server
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second) // Ping interval
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage routes a frame to the waiting call or the event stream
func (c *Client) handleMessage(msg *server.Message) {
	c.logger.Debug("Received message", "type", msg.Type, "requestId", msg.RequestID)

	if msg.RequestID != "" {
		c.mu.Lock()
		respChan, ok := c.pending[msg.RequestID]
		if ok {
			delete(c.pending, msg.RequestID)
		}
		c.mu.Unlock()
		if ok {
			respChan <- msg
			return
		}
	}

	switch msg.Type {
	case server.MessageTypeState:
		var data server.StateData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.logger.Warn("Bad state frame", "error", err)
			return
		}
		c.setState(data.State)

	case server.MessageTypeWelcome, server.MessageTypeError:
		// Responses without a waiting call; nothing to route.
		c.logger.Debug("Unsolicited frame", "type", msg.Type)

	default:
		event, ok := decodeEvent(msg)
		if !ok {
			c.logger.Debug("No handler for message type", "type", msg.Type)
			return
		}
		select {
		case c.events <- event:
		default:
			c.logger.Warn("Event buffer full, dropping", "type", msg.Type)
		}
	}
}
