package controlplane

import (
	"context"
	"fmt"
	"sync"
	"time"

	"stagelink/core"
	"stagelink/protocol"

	"github.com/gorilla/websocket"
)

const (
	// DefaultConnectURL targets the local stage server.
	DefaultConnectURL = "ws://127.0.0.1:12393/client-ws"
	// DefaultReconnectDelay is the fixed pause before a reconnection
	// attempt. It is not externally configurable.
	DefaultReconnectDelay = 5 * time.Second

	writeTimeout = 10 * time.Second
)

// ConnState is the connection lifecycle state. StateDestroyed is terminal.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
	StateReconnectScheduled
	StateDestroyed
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnectScheduled:
		return "reconnect-scheduled"
	case StateDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("ConnState(%d)", int(s))
	}
}

// Conn is the slice of a websocket connection the client actually uses.
type Conn interface {
	ReadMessage() (messageType int, data []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Dialer opens one duplex connection to the control endpoint.
type Dialer func(ctx context.Context, url string) (Conn, error)

func wsDial(ctx context.Context, url string) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// ClientConfig configures the command channel client.
type ClientConfig struct {
	ConnectURL     string
	Role           string
	ReconnectDelay time.Duration
	Logger         *core.Logger
	// Dialer overrides the websocket dialer; nil uses the real one.
	Dialer Dialer
}

// Client owns one duplex connection to the stage server's control
// endpoint. On connect it announces its role; inbound frames are decoded
// into typed commands and fanned out to registered handlers; on loss of
// the transport it schedules a single fixed-delay reconnection attempt.
// Disconnect() is permanent.
type Client struct {
	config ClientConfig
	logger *core.Logger
	dial   Dialer

	mu             sync.Mutex
	state          ConnState
	conn           Conn
	gen            uint64
	reconnectTimer *time.Timer
	ctx            context.Context

	wmu sync.Mutex

	cmdHandlers  []func(protocol.Command)
	connHandlers []func(connected bool)
}

// NewClient creates a command channel client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.ConnectURL == "" {
		cfg.ConnectURL = DefaultConnectURL
	}
	if cfg.Role == "" {
		cfg.Role = "renderer"
	}
	if cfg.ReconnectDelay == 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = core.GetLogger()
	}
	dial := cfg.Dialer
	if dial == nil {
		dial = wsDial
	}
	return &Client{
		config: cfg,
		logger: cfg.Logger.With(map[string]interface{}{"component": "controlplane"}),
		dial:   dial,
		state:  StateDisconnected,
	}
}

// OnCommand registers a handler for decoded inbound commands. Handlers
// are isolated from each other: one failing never stops the rest.
func (c *Client) OnCommand(fn func(protocol.Command)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cmdHandlers = append(c.cmdHandlers, fn)
}

// OnConnectionChange registers a handler notified with true on connect
// and false on loss of the transport.
func (c *Client) OnConnectionChange(fn func(connected bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connHandlers = append(c.connHandlers, fn)
}

// State reports the current lifecycle state.
func (c *Client) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsConnected reports whether the transport is currently open.
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// Connect dials the control endpoint, sends the identification frame, and
// starts the read loop. Calling Connect on a destroyed client is a no-op;
// calling it while already connecting or connected does nothing.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateDestroyed:
		c.mu.Unlock()
		c.logger.Warn("connect called after disconnect, ignoring")
		return nil
	case StateConnecting, StateConnected:
		c.mu.Unlock()
		return nil
	}
	c.clearReconnectLocked()
	c.state = StateConnecting
	c.ctx = ctx
	c.mu.Unlock()

	c.logger.Info("connecting", "url", c.config.ConnectURL)
	conn, err := c.dial(ctx, c.config.ConnectURL)
	if err != nil {
		c.mu.Lock()
		if c.state == StateConnecting {
			c.state = StateDisconnected
			c.scheduleReconnectLocked()
		}
		c.mu.Unlock()
		return fmt.Errorf("controlplane: dial %q: %w", c.config.ConnectURL, err)
	}

	c.mu.Lock()
	if c.state != StateConnecting {
		// Destroyed while the dial was in flight.
		c.mu.Unlock()
		conn.Close()
		return nil
	}
	c.conn = conn
	c.gen++
	gen := c.gen
	c.state = StateConnected
	c.mu.Unlock()

	// The identification frame goes out before any other traffic.
	frame, err := protocol.EncodeIdentify(c.config.Role)
	if err == nil {
		err = c.write(conn, frame)
	}
	if err != nil {
		c.logger.Warn("identify failed", "error", err)
		c.transportLost(gen, conn)
		return fmt.Errorf("controlplane: identify: %w", err)
	}

	c.logger.Info("connected", "role", c.config.Role)
	c.notifyConnection(true)
	go c.readLoop(conn, gen)
	return nil
}

// Disconnect permanently destroys the client: the pending reconnect timer
// is cleared and the read loop is detached before the socket closes, so no
// further state transitions can fire from the dying transport. A later
// Connect call is a no-op.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if c.state == StateDestroyed {
		c.mu.Unlock()
		return
	}
	wasConnected := c.state == StateConnected
	c.state = StateDestroyed
	c.clearReconnectLocked()
	c.gen++
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	if wasConnected {
		c.notifyConnection(false)
	}
	c.logger.Info("control channel destroyed")
}

// Send writes one pre-encoded frame. When not connected the frame is
// dropped with a warning: delivery is at-most-once, never queued.
func (c *Client) Send(frame []byte) {
	c.mu.Lock()
	conn := c.conn
	connected := c.state == StateConnected
	c.mu.Unlock()

	if !connected || conn == nil {
		c.logger.Warn("dropping outbound frame, not connected")
		return
	}
	if err := c.write(conn, frame); err != nil {
		c.logger.Warn("outbound write failed", "error", err)
	}
}

func (c *Client) write(conn Conn, data []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) readLoop(conn Conn, gen uint64) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			stale := gen != c.gen
			c.mu.Unlock()
			if !stale {
				c.logger.Warn("control connection lost", "error", err)
				c.transportLost(gen, conn)
			}
			return
		}

		cmd, err := protocol.DecodeCommand(data)
		if err != nil {
			// Frame-decode failure discards the frame; the connection
			// stays up and handlers are not notified.
			c.logger.Warn("discarding malformed frame", "error", err)
			continue
		}
		c.dispatch(cmd)
	}
}

// transportLost handles close and error uniformly: back to disconnected,
// one reconnect scheduled. The generation guard makes a read loop from a
// connection that Disconnect already detached a no-op.
func (c *Client) transportLost(gen uint64, conn Conn) {
	conn.Close()

	c.mu.Lock()
	if gen != c.gen || c.state == StateDestroyed {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.state = StateDisconnected
	c.scheduleReconnectLocked()
	c.mu.Unlock()

	c.notifyConnection(false)
}

// scheduleReconnectLocked arms the single reconnect timer. A schedule
// request while one is already pending is a no-op; timers never stack.
func (c *Client) scheduleReconnectLocked() {
	if c.state == StateDestroyed || c.reconnectTimer != nil {
		return
	}
	c.state = StateReconnectScheduled
	c.logger.Info("scheduling reconnect", "delay", c.config.ReconnectDelay)
	c.reconnectTimer = time.AfterFunc(c.config.ReconnectDelay, func() {
		c.mu.Lock()
		c.reconnectTimer = nil
		if c.state != StateReconnectScheduled {
			c.mu.Unlock()
			return
		}
		c.state = StateDisconnected
		ctx := c.ctx
		c.mu.Unlock()

		if ctx == nil {
			ctx = context.Background()
		}
		if err := c.Connect(ctx); err != nil {
			c.logger.Warn("reconnect attempt failed", "error", err)
		}
	})
}

func (c *Client) clearReconnectLocked() {
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
}

// dispatch fans one command out to every registered handler. Each call is
// individually recovered so a faulty handler cannot take down its
// siblings or the read loop.
func (c *Client) dispatch(cmd protocol.Command) {
	c.mu.Lock()
	handlers := make([]func(protocol.Command), len(c.cmdHandlers))
	copy(handlers, c.cmdHandlers)
	c.mu.Unlock()

	for _, fn := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error("command handler panicked", "command", string(cmd.Type), "panic", r)
				}
			}()
			fn(cmd)
		}()
	}
}

func (c *Client) notifyConnection(connected bool) {
	c.mu.Lock()
	handlers := make([]func(bool), len(c.connHandlers))
	copy(handlers, c.connHandlers)
	c.mu.Unlock()

	for _, fn := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error("connection handler panicked", "panic", r)
				}
			}()
			fn(connected)
		}()
	}
}
