package wire

import (
	"errors"
	"fmt"
)

// Error types for M/Wire operations.
// Each error tells the caller whether the byte stream on the connection can
// still be trusted (see ShouldCloseConnection).

// ErrNotImplemented is matched (errors.Is) by every NotImplementedError.
var ErrNotImplemented = errors.New("mwire: not implemented")

// ErrInvalidAmount is wrapped in a ProtocolError when an increment or
// decrement amount of zero is requested.
var ErrInvalidAmount = errors.New("mwire: amount must not be zero")

// ConnectionError wraps a socket failure: dial, read, write or timeout.
//
// Connection handling: the connection is already broken and has been closed.
// The next operation reconnects.
type ConnectionError struct {
	Op   string // connect, context, deadline, read, write
	Addr string // host:port, when known
	Err  error
}

func (e *ConnectionError) Error() string {
	if e.Addr != "" {
		return fmt.Sprintf("mwire: connection error during %s to %s: %v", e.Op, e.Addr, e.Err)
	}
	return fmt.Sprintf("mwire: connection error during %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ShouldCloseConnection returns true - the socket is unusable.
func (e *ConnectionError) ShouldCloseConnection() bool {
	return true
}

// ProtocolError means a received frame did not match what the issued command
// expects: unknown tag, unparsable integer or length, missing terminator.
//
// Connection handling: the connection is left open, but byte accounting for
// every later read is likely off. Callers should reconnect to resynchronise.
type ProtocolError struct {
	Message string
	Line    string // offending line, if any
	Err     error
}

func (e *ProtocolError) Error() string {
	msg := "mwire: protocol error: " + e.Message
	if e.Line != "" {
		msg += fmt.Sprintf(" (line %q)", e.Line)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// ShouldCloseConnection returns true - the stream is probably desynchronised.
func (e *ProtocolError) ShouldCloseConnection() bool {
	return true
}

// ResponseError carries the text of an error frame ("-...") sent by the
// gateway in place of a result.
//
// Connection handling: the frame was fully consumed, the connection can be reused.
// An error frame met inside an array reply is reported as a ProtocolError
// wrapping the ResponseError instead, as the remaining elements are unread.
type ResponseError struct {
	Message string
}

func (e *ResponseError) Error() string {
	return "mwire: server error: " + e.Message
}

// ShouldCloseConnection returns false - the stream is still in sync.
func (e *ResponseError) ShouldCloseConnection() bool {
	return false
}

// NotImplementedError is returned, before any I/O, by operations the
// protocol names but does not define on the wire.
type NotImplementedError struct {
	Op string
}

func (e *NotImplementedError) Error() string {
	return "mwire: " + e.Op + " is not implemented"
}

func (e *NotImplementedError) Is(target error) bool {
	return target == ErrNotImplemented
}

// ShouldCloseConnection returns false - nothing was sent.
func (e *NotImplementedError) ShouldCloseConnection() bool {
	return false
}

// InvalidAddressError is returned when an address cannot be put on the wire
// or cannot be parsed from text.
type InvalidAddressError struct {
	Message string
}

func (e *InvalidAddressError) Error() string {
	return "mwire: invalid address: " + e.Message
}

// ShouldCloseConnection returns false - the request was rejected client-side.
func (e *InvalidAddressError) ShouldCloseConnection() bool {
	return false
}

// ErrorWithConnectionState is implemented by all error types of this package.
type ErrorWithConnectionState interface {
	error
	ShouldCloseConnection() bool
}

// ShouldCloseConnection reports whether err leaves the connection in a state
// where it must be closed before it is used again.
//
// Returns true for ConnectionError, ProtocolError and unknown errors.
// Returns false for ResponseError, NotImplementedError, InvalidAddressError and nil.
func ShouldCloseConnection(err error) bool {
	if err == nil {
		return false
	}

	var e ErrorWithConnectionState
	if errors.As(err, &e) {
		return e.ShouldCloseConnection()
	}

	return true
}
