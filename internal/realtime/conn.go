// Package realtime owns the duplex socket to the server: one connection per
// authenticated session, with an identify handshake, in-order frame delivery
// and a fixed-delay reconnection loop.
package realtime

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"chat-client/internal/models"
	"chat-client/internal/session"
	"chat-client/pkg/logger"

	"github.com/gorilla/websocket"
)

// DefaultReconnectDelay is the fixed delay between a close and the next
// connection attempt. There is no backoff growth and no attempt ceiling: the
// channel is best-effort and a human is watching the connectivity indicator.
const DefaultReconnectDelay = 3 * time.Second

// ErrNotConnected is returned by SendFrame while the connection is not open.
var ErrNotConnected = errors.New("connection is not open")

// State is the connection lifecycle state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateOpen         State = "open"
	StateClosing      State = "closing"
)

// Conn manages the single websocket connection for a session. No other
// component constructs or closes the socket; everyone else checks IsOpen and
// enqueues sends.
type Conn struct {
	url            string
	token          string
	identity       session.Identity
	reconnectDelay time.Duration
	dialer         *websocket.Dialer

	mu        sync.Mutex
	ws        *websocket.Conn
	state     State
	gen       int // bumped per dial; stale pump callbacks are ignored
	reconnect *time.Timer
	tornDown  bool
	onFrame   func([]byte)
	onState   func(State)

	writeMu sync.Mutex
}

func NewConn(url, token string, identity session.Identity) *Conn {
	return &Conn{
		url:            url,
		token:          token,
		identity:       identity,
		reconnectDelay: DefaultReconnectDelay,
		dialer:         websocket.DefaultDialer,
		state:          StateDisconnected,
	}
}

// SetReconnectDelay overrides the reconnection delay. Call before Connect.
func (c *Conn) SetReconnectDelay(d time.Duration) {
	c.reconnectDelay = d
}

// OnFrame sets the callback invoked for every inbound frame, in arrival
// order on a single goroutine. Call before Connect.
func (c *Conn) OnFrame(fn func([]byte)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onFrame = fn
}

// OnStateChange sets a callback observing connection state transitions.
func (c *Conn) OnStateChange(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onState = fn
}

// State returns the current connection state.
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsOpen reports whether frames can be sent right now.
func (c *Conn) IsOpen() bool {
	return c.State() == StateOpen
}

// Connect opens the connection. Idempotent: a call while already open or
// connecting is a no-op, as is a call after Disconnect.
func (c *Conn) Connect() {
	c.mu.Lock()
	if c.tornDown || c.state == StateOpen || c.state == StateConnecting {
		c.mu.Unlock()
		return
	}
	c.setStateLocked(StateConnecting)
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	go c.dial(gen)
}

// Disconnect tears the connection down for good: the frame callback is
// detached first so no late event touches state after teardown, any pending
// reconnect is cancelled, then the socket is closed. Idempotent.
func (c *Conn) Disconnect() {
	c.mu.Lock()
	if c.tornDown {
		c.mu.Unlock()
		return
	}
	c.tornDown = true
	c.onFrame = nil
	if c.reconnect != nil {
		c.reconnect.Stop()
		c.reconnect = nil
	}
	ws := c.ws
	c.ws = nil
	if c.state == StateOpen || c.state == StateConnecting {
		c.setStateLocked(StateClosing)
	}
	c.setStateLocked(StateDisconnected)
	c.mu.Unlock()

	if ws != nil {
		ws.Close()
	}
}

// SendFrame writes one frame. Fails with ErrNotConnected unless the
// connection is open.
func (c *Conn) SendFrame(frame models.Frame) error {
	c.mu.Lock()
	ws := c.ws
	open := c.state == StateOpen
	c.mu.Unlock()

	if !open || ws == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return ws.WriteJSON(frame)
}

func (c *Conn) dial(gen int) {
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	ws, resp, err := c.dialer.Dial(c.url, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	c.mu.Lock()
	if c.tornDown || gen != c.gen {
		c.mu.Unlock()
		if ws != nil {
			ws.Close()
		}
		return
	}
	if err != nil {
		logger.Error("WebSocket dial failed: %v", err)
		c.setStateLocked(StateDisconnected)
		c.scheduleReconnectLocked()
		c.mu.Unlock()
		return
	}
	c.ws = ws
	c.setStateLocked(StateOpen)
	c.mu.Unlock()

	// Identify frame binds the transport to the session identity; the
	// server starts delivering events for this user afterwards.
	identify := models.Frame{Type: models.EventConnect, UserID: c.identity.UserID}
	if err := c.SendFrame(identify); err != nil {
		logger.Error("Failed to send identify frame: %v", err)
		c.handleClose(gen)
		return
	}

	go c.readPump(ws, gen)
}

func (c *Conn) readPump(ws *websocket.Conn, gen int) {
	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Error("WebSocket error: %v", err)
			}
			c.handleClose(gen)
			return
		}

		c.mu.Lock()
		stale := gen != c.gen || c.tornDown
		fn := c.onFrame
		c.mu.Unlock()
		if stale {
			return
		}
		if fn != nil {
			fn(raw)
		}
	}
}

// handleClose runs for every close, error or not: mark disconnected and
// schedule a reconnect unless torn down.
func (c *Conn) handleClose(gen int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tornDown || gen != c.gen {
		return
	}
	if c.ws != nil {
		c.ws.Close()
		c.ws = nil
	}
	c.setStateLocked(StateDisconnected)
	c.scheduleReconnectLocked()
}

func (c *Conn) scheduleReconnectLocked() {
	if c.reconnect != nil {
		return
	}
	logger.Warn("Connection closed, retrying in %s", c.reconnectDelay)
	c.reconnect = time.AfterFunc(c.reconnectDelay, func() {
		c.mu.Lock()
		c.reconnect = nil
		down := c.tornDown
		c.mu.Unlock()
		if !down {
			c.Connect()
		}
	})
}

func (c *Conn) setStateLocked(s State) {
	if c.state == s {
		return
	}
	c.state = s
	if c.onState != nil {
		fn := c.onState
		go fn(s)
	}
}
