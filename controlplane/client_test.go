package controlplane

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"stagelink/protocol"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu      sync.Mutex
	writes  [][]byte
	inbound chan []byte
	done    chan struct{}
	once    sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		inbound: make(chan []byte, 8),
		done:    make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case data := <-c.inbound:
		return websocket.TextMessage, data, nil
	case <-c.done:
		return 0, nil, errors.New("connection closed")
	}
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	select {
	case <-c.done:
		return errors.New("connection closed")
	default:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	c.writes = append(c.writes, cp)
	return nil
}

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

func (c *fakeConn) written() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.writes...)
}

type fakeDialer struct {
	mu       sync.Mutex
	conns    []*fakeConn
	attempts int
	failures int // fail this many dials before succeeding
}

func (d *fakeDialer) dial(ctx context.Context, url string) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attempts++
	if d.failures > 0 {
		d.failures--
		return nil, errors.New("connection refused")
	}
	c := newFakeConn()
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.attempts
}

func (d *fakeDialer) conn(i int) *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conns[i]
}

func newTestClient(d *fakeDialer) *Client {
	return NewClient(ClientConfig{
		ConnectURL:     "ws://stage.test/client-ws",
		Role:           "renderer",
		ReconnectDelay: 20 * time.Millisecond,
		Dialer:         d.dial,
	})
}

func TestConnectSendsIdentifyFirst(t *testing.T) {
	d := &fakeDialer{}
	c := newTestClient(d)
	defer c.Disconnect()

	require.NoError(t, c.Connect(context.Background()))
	assert.Equal(t, StateConnected, c.State())
	assert.True(t, c.IsConnected())

	writes := d.conn(0).written()
	require.NotEmpty(t, writes)
	var identify protocol.Identify
	require.NoError(t, sonic.Unmarshal(writes[0], &identify))
	assert.Equal(t, protocol.MsgIdentify, identify.Type)
	assert.Equal(t, "renderer", identify.Role)
}

func TestConnectWhileConnectedIsNoOp(t *testing.T) {
	d := &fakeDialer{}
	c := newTestClient(d)
	defer c.Disconnect()

	require.NoError(t, c.Connect(context.Background()))
	require.NoError(t, c.Connect(context.Background()))
	assert.Equal(t, 1, d.dialCount())
}

func TestCommandDispatchIsolatesPanics(t *testing.T) {
	d := &fakeDialer{}
	c := newTestClient(d)
	defer c.Disconnect()

	var mu sync.Mutex
	var got []protocol.Command
	c.OnCommand(func(protocol.Command) { panic("handler bug") })
	c.OnCommand(func(cmd protocol.Command) {
		mu.Lock()
		got = append(got, cmd)
		mu.Unlock()
	})

	require.NoError(t, c.Connect(context.Background()))
	d.conn(0).inbound <- []byte(`{"type":"setIdle","mode":"breathing"}`)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	cmd := got[0]
	mu.Unlock()
	assert.Equal(t, protocol.CmdSetIdle, cmd.Type)
	assert.Equal(t, "breathing", cmd.SetIdle.Mode)
	assert.True(t, c.IsConnected())
}

func TestMalformedFrameDoesNotDropConnection(t *testing.T) {
	d := &fakeDialer{}
	c := newTestClient(d)
	defer c.Disconnect()

	var mu sync.Mutex
	var got []protocol.Command
	c.OnCommand(func(cmd protocol.Command) {
		mu.Lock()
		got = append(got, cmd)
		mu.Unlock()
	})

	require.NoError(t, c.Connect(context.Background()))
	d.conn(0).inbound <- []byte(`{broken`)
	d.conn(0).inbound <- []byte(`{"type":"getStatus"}`)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, protocol.CmdGetStatus, got[0].Type)
	mu.Unlock()
	assert.True(t, c.IsConnected())
}

func TestTransportLossSchedulesSingleReconnect(t *testing.T) {
	d := &fakeDialer{}
	c := newTestClient(d)
	defer c.Disconnect()

	var mu sync.Mutex
	var transitions []bool
	c.OnConnectionChange(func(connected bool) {
		mu.Lock()
		transitions = append(transitions, connected)
		mu.Unlock()
	})

	require.NoError(t, c.Connect(context.Background()))

	// Simulated server-side drop.
	d.conn(0).Close()

	require.Eventually(t, func() bool {
		return d.dialCount() == 2 && c.IsConnected()
	}, time.Second, 5*time.Millisecond)

	// The replacement connection is healthy; no further attempts pile up.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 2, d.dialCount())

	mu.Lock()
	assert.Equal(t, []bool{true, false, true}, transitions)
	mu.Unlock()
}

func TestDialFailureRetriesOnce(t *testing.T) {
	d := &fakeDialer{failures: 1}
	c := newTestClient(d)
	defer c.Disconnect()

	require.Error(t, c.Connect(context.Background()))
	assert.Equal(t, StateReconnectScheduled, c.State())

	require.Eventually(t, func() bool {
		return c.IsConnected()
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, d.dialCount())
}

func TestDisconnectIsTerminal(t *testing.T) {
	d := &fakeDialer{}
	c := newTestClient(d)

	require.NoError(t, c.Connect(context.Background()))
	c.Disconnect()
	assert.Equal(t, StateDestroyed, c.State())

	// Reconnection is permanently off.
	require.NoError(t, c.Connect(context.Background()))
	assert.Equal(t, StateDestroyed, c.State())
	assert.Equal(t, 1, d.dialCount())
}

func TestDisconnectCancelsPendingReconnect(t *testing.T) {
	d := &fakeDialer{failures: 100}
	c := newTestClient(d)

	require.Error(t, c.Connect(context.Background()))
	require.Equal(t, StateReconnectScheduled, c.State())

	c.Disconnect()
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 1, d.dialCount())
	assert.Equal(t, StateDestroyed, c.State())
}

func TestSendDropsWhenNotConnected(t *testing.T) {
	d := &fakeDialer{}
	c := newTestClient(d)
	defer c.Disconnect()

	// Never queued, never panics.
	c.Send([]byte(`{"type":"status"}`))
	assert.Equal(t, 0, d.dialCount())
}

func TestSendWritesWhenConnected(t *testing.T) {
	d := &fakeDialer{}
	c := newTestClient(d)
	defer c.Disconnect()

	require.NoError(t, c.Connect(context.Background()))
	frame := []byte(`{"type":"status","connected":true}`)
	c.Send(frame)

	writes := d.conn(0).written()
	require.Len(t, writes, 2) // identify, then the status frame
	assert.Equal(t, frame, writes[1])
}
