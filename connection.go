package mwire

import (
	"bufio"
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/pior/mwire/wire"
)

// ConnState is the state of a Connection.
type ConnState int32

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// DialFunc opens the network connection to the gateway.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// Connection is a single, lazily established connection to one gateway.
//
// Round trips are serialized: the protocol has no pipelining and no request
// identifiers, so one request is in flight at a time.
type Connection struct {
	addr      string
	timeout   time.Duration
	chunkSize int
	dial      DialFunc
	logger    *zap.Logger
	stats     *clientStatsCollector

	state atomic.Int32 // ConnState, readable without waiting on a round trip

	mu     sync.Mutex
	conn   net.Conn
	reader *wire.Reader
	writer *bufio.Writer
}

func newConnection(addr string, timeout time.Duration, chunkSize int, dial DialFunc, logger *zap.Logger, stats *clientStatsCollector) *Connection {
	return &Connection{
		addr:      addr,
		timeout:   timeout,
		chunkSize: chunkSize,
		dial:      dial,
		logger:    logger.With(zap.String("addr", addr)),
		stats:     stats,
	}
}

// Addr returns the gateway address.
func (c *Connection) Addr() string {
	return c.addr
}

// State returns the current connection state.
func (c *Connection) State() ConnState {
	return ConnState(c.state.Load())
}

// Connect establishes the connection. It is a no-op when already connected.
func (c *Connection) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked(ctx)
}

func (c *Connection) connectLocked(ctx context.Context) error {
	if c.State() == StateConnected {
		return nil
	}

	c.state.Store(int32(StateConnecting))

	dialCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, err := c.dial(dialCtx, "tcp", c.addr)
	if err != nil {
		c.state.Store(int32(StateDisconnected))
		c.logger.Debug("connect failed", zap.Error(err))
		return &wire.ConnectionError{Op: "connect", Addr: c.addr, Err: err}
	}

	c.conn = conn
	c.reader = wire.NewReader(conn, c.chunkSize)
	c.writer = bufio.NewWriter(conn)
	c.state.Store(int32(StateConnected))
	c.stats.recordConnect()
	c.logger.Debug("connected")
	return nil
}

// Close releases the connection. It is safe to call in any state.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
	return nil
}

// closeLocked drops the buffered reader and writer before the socket, so no
// reader state outlives it. Close errors are logged and swallowed: this also
// runs while unwinding from an I/O failure.
func (c *Connection) closeLocked() {
	if c.State() != StateConnected {
		return
	}

	c.reader = nil
	c.writer = nil

	if err := c.conn.Close(); err != nil {
		c.logger.Debug("close failed", zap.Error(err))
	}
	c.conn = nil
	c.state.Store(int32(StateDisconnected))
	c.stats.recordDisconnect()
	c.logger.Debug("disconnected")
}

// Do sends req, connecting first if needed, and hands the response stream to
// decode. A nil decode sends without reading.
//
// Any ConnectionError closes the connection before it is returned, so the
// next call reconnects. ProtocolError and ResponseError leave it open.
func (c *Connection) Do(ctx context.Context, req *wire.Request, decode func(r *wire.Reader) error) error {
	if err := req.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// The caller may have given up while waiting for the lock.
	if err := ctx.Err(); err != nil {
		return c.fail(&wire.ConnectionError{Op: "context", Err: err})
	}

	if err := c.connectLocked(ctx); err != nil {
		return err
	}

	if err := c.conn.SetDeadline(c.deadline(ctx)); err != nil {
		return c.fail(&wire.ConnectionError{Op: "deadline", Err: err})
	}

	if err := wire.WriteRequest(c.writer, req); err != nil {
		return c.fail(err)
	}

	if decode == nil {
		return nil
	}

	if err := decode(c.reader); err != nil {
		return c.fail(err)
	}
	return nil
}

// fail closes the connection for connection errors and returns err.
// Must be called with the lock held.
func (c *Connection) fail(err error) error {
	var connErr *wire.ConnectionError
	if errors.As(err, &connErr) {
		if connErr.Addr == "" {
			connErr.Addr = c.addr
		}
		c.logger.Warn("connection lost", zap.String("op", connErr.Op), zap.Error(connErr.Err))
		c.closeLocked()
	}
	return err
}

// deadline is now+timeout, or the context deadline when it comes first.
func (c *Connection) deadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		return d
	}
	return deadline
}
