// Package mwire is a client for gateways speaking the M/Wire protocol, which
// exposes the hierarchical globals of an M database over TCP.
//
// Addresses and the wire codec live in the wire subpackage.
package mwire

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/pior/mwire/wire"
)

// Defaults applied by NewClient to zero Config fields.
const (
	DefaultHost    = "localhost"
	DefaultPort    = 6330
	DefaultTimeout = 5 * time.Second
)

// Config holds configuration for an M/Wire client.
type Config struct {
	// Host is the gateway host name or IP. Defaults to DefaultHost.
	Host string

	// Port is the gateway TCP port. Defaults to DefaultPort.
	Port int

	// Timeout bounds connecting and each request/response round trip.
	// A timeout surfaces as a wire.ConnectionError. Defaults to DefaultTimeout.
	Timeout time.Duration

	// ChunkSize bounds a single read when receiving a bulk value.
	// Defaults to wire.DefaultChunkSize.
	ChunkSize int

	// Dial opens the network connection.
	// If nil, a net.Dialer is used.
	Dial DialFunc

	// Logger receives connection lifecycle and failure logs.
	// If nil, nothing is logged.
	Logger *zap.Logger

	// CircuitBreaker wraps every round trip when set. See NewCircuitBreaker.
	CircuitBreaker CircuitBreaker
}

// Client is an M/Wire client owning one connection to one gateway.
//
// The connection is opened lazily by the first operation and reopened by the
// first operation after a connection failure. Failed operations are never
// retried. Operations are serialized on the connection.
type Client struct {
	conn           *Connection
	circuitBreaker CircuitBreaker
	logger         *zap.Logger
	stats          *clientStatsCollector
}

// NewClient creates a client. No connection is made until the first
// operation or an explicit Connect.
func NewClient(config Config) (*Client, error) {
	host := config.Host
	if host == "" {
		host = DefaultHost
	}

	port := config.Port
	if port == 0 {
		port = DefaultPort
	}
	if port < 0 || port > 65535 {
		return nil, fmt.Errorf("mwire: invalid port %d", port)
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if timeout < 0 {
		return nil, fmt.Errorf("mwire: invalid timeout %s", timeout)
	}

	chunkSize := config.ChunkSize
	if chunkSize <= 0 {
		chunkSize = wire.DefaultChunkSize
	}

	dial := config.Dial
	if dial == nil {
		dial = (&net.Dialer{}).DialContext
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	stats := newClientStatsCollector()
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	return &Client{
		conn:           newConnection(addr, timeout, chunkSize, dial, logger, stats),
		circuitBreaker: config.CircuitBreaker,
		logger:         logger,
		stats:          stats,
	}, nil
}

// Addr returns the gateway address as host:port.
func (c *Client) Addr() string {
	return c.conn.Addr()
}

// State returns the state of the underlying connection.
func (c *Client) State() ConnState {
	return c.conn.State()
}

// Connect opens the connection if it is not open yet.
// Operations connect on their own; calling Connect is optional.
func (c *Client) Connect(ctx context.Context) error {
	return c.conn.Connect(ctx)
}

// Disconnect closes the connection. It is safe to call when not connected.
func (c *Client) Disconnect() error {
	return c.conn.Close()
}

// Close is an alias for Disconnect.
func (c *Client) Close() error {
	return c.Disconnect()
}

// Stats returns a snapshot of client statistics.
func (c *Client) Stats() ClientStats {
	return c.stats.snapshot()
}

// exec runs one round trip, through the circuit breaker if configured.
func (c *Client) exec(ctx context.Context, req *wire.Request, decode func(r *wire.Reader) error) error {
	var err error
	if c.circuitBreaker != nil {
		_, err = c.circuitBreaker.Execute(func() (bool, error) {
			err := c.conn.Do(ctx, req, decode)
			return err == nil, err
		})
	} else {
		err = c.conn.Do(ctx, req, decode)
	}

	if err != nil {
		c.stats.recordError()
		c.logger.Debug("operation failed", zap.String("op", string(req.Command)), zap.Error(err))
	}
	return err
}
