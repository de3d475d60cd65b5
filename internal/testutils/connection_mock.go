package testutils

import (
	"bytes"
	"context"
	"net"
	"strings"
	"sync"
	"time"
)

// ConnectionMock is a net.Conn replaying scripted gateway responses and
// capturing what the client writes.
type ConnectionMock struct {
	mu       sync.Mutex
	readBuf  *bytes.Buffer
	writeBuf *bytes.Buffer
	readErr     error
	writeErr    error
	deadlineErr error
	closed      bool
}

// NewConnectionMock creates a mock connection that returns responseData,
// concatenated, to reads. Once drained, reads return io.EOF.
func NewConnectionMock(responseData ...string) *ConnectionMock {
	return &ConnectionMock{
		readBuf:  bytes.NewBufferString(strings.Join(responseData, "")),
		writeBuf: &bytes.Buffer{},
	}
}

// FailReads makes reads return err once the scripted data is drained.
func (m *ConnectionMock) FailReads(err error) *ConnectionMock {
	m.readErr = err
	return m
}

// FailWrites makes every write return err.
func (m *ConnectionMock) FailWrites(err error) *ConnectionMock {
	m.writeErr = err
	return m
}

// FailDeadlines makes SetDeadline return err.
func (m *ConnectionMock) FailDeadlines(err error) *ConnectionMock {
	m.deadlineErr = err
	return m
}

func (m *ConnectionMock) Read(b []byte) (n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readBuf.Len() == 0 && m.readErr != nil {
		return 0, m.readErr
	}
	return m.readBuf.Read(b)
}

func (m *ConnectionMock) Write(b []byte) (n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	return m.writeBuf.Write(b)
}

func (m *ConnectionMock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (m *ConnectionMock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *ConnectionMock) LocalAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0}
}

func (m *ConnectionMock) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 6330}
}

func (m *ConnectionMock) SetDeadline(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deadlineErr
}

func (m *ConnectionMock) SetReadDeadline(t time.Time) error  { return nil }
func (m *ConnectionMock) SetWriteDeadline(t time.Time) error { return nil }

// GetWrittenRequest returns the raw request bytes written to the mock connection.
func (m *ConnectionMock) GetWrittenRequest() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeBuf.String()
}

// Dialer returns a dial function handing out conns in order, one per dial.
// Dials beyond the last conn fail with ErrNoMoreConns.
func Dialer(conns ...net.Conn) func(ctx context.Context, network, addr string) (net.Conn, error) {
	var mu sync.Mutex
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(conns) == 0 {
			return nil, ErrNoMoreConns
		}
		conn := conns[0]
		conns = conns[1:]
		return conn, nil
	}
}

// ErrNoMoreConns is returned by a Dialer that ran out of connections.
var ErrNoMoreConns = &net.OpError{Op: "dial", Net: "tcp", Err: errNoMoreConns{}}

type errNoMoreConns struct{}

func (errNoMoreConns) Error() string { return "no more mock connections" }
