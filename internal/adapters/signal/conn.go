package signal

import (
	"errors"
	"sync"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/gorilla/websocket"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

var _ core.SignalConnection = (*WsSignalConn)(nil)

// WsSignalConn buffers outbound frames for the write pump. TrySend never blocks.
type WsSignalConn struct {
	id   domain.ConnID
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(id domain.ConnID, ws *websocket.Conn, buffer int) *WsSignalConn {
	return &WsSignalConn{
		id:   id,
		conn: ws,
		send: make(chan core.Frame, buffer),
	}
}

func (c *WsSignalConn) ID() domain.ConnID { return c.id }

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}
