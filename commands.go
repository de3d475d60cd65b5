package mwire

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strconv"

	"github.com/pior/mwire/wire"
)

// Existence is the EXISTS result. It is a bitmask: bit 0 means the node
// holds a value, bit 1 that it has descendants. The gateway only returns
// ExistsNone, ExistsValue, ExistsDescendants and ExistsBoth.
type Existence int64

const (
	ExistsNone        Existence = 0
	ExistsValue       Existence = 1
	ExistsDescendants Existence = 10
	ExistsBoth        Existence = 11
)

// Exists reports whether the node exists in any form.
func (e Existence) Exists() bool { return e != 0 }

// HasValue reports whether the node holds a value.
func (e Existence) HasValue() bool { return e&1 != 0 }

// HasDescendants reports whether the node has descendants.
func (e Existence) HasDescendants() bool { return e&2 != 0 }

// SubValue is one entry of GETALLSUBS or GETSUBTREE.
type SubValue struct {
	// Subscript is the gateway's rendering of the subscript: bare text for
	// GETALLSUBS ("x", "1"), a quoted relative path for GETSUBTREE
	// (`"ab",2,3`). nil for the subtree's own node.
	Subscript []byte

	// Value is nil when absent. GETSUBTREE reports absent values as empty.
	Value []byte
}

// QueryResult is the QUERYGET result.
type QueryResult struct {
	// Address is the next node holding a value, as formatted by the gateway.
	Address string
	Value   []byte
	// Found is false when there is no next node; Address and Value are then empty.
	Found bool
}

// Get returns the value of a node. The result is nil when the node holds no
// value and empty (not nil) when it holds an empty value.
//
// Wire: GET <addr> -> $-1 | $0 CRLF CRLF | $<n> CRLF <bytes> CRLF
func (c *Client) Get(ctx context.Context, addr wire.Address) ([]byte, error) {
	var value []byte
	err := c.exec(ctx, wire.NewRequest(wire.CmdGet, &addr), func(r *wire.Reader) error {
		var err error
		value, err = r.ReadBulk()
		return err
	})
	if err != nil {
		return nil, err
	}

	c.stats.recordGet(value != nil)
	return value, nil
}

// Set stores value at a node. It returns true when the gateway acknowledges
// with the {"ok":true} payload and false for any other bulk, status or
// integer reply. An array header or unknown tag is a wire.ProtocolError.
//
// Wire: SET <addr> <len> CRLF <value> CRLF -> $<n> CRLF {"ok":true} CRLF
func (c *Client) Set(ctx context.Context, addr wire.Address, value []byte) (bool, error) {
	var ok bool
	err := c.exec(ctx, wire.NewSetRequest(addr, value), func(r *wire.Reader) error {
		line, err := r.ReadStatus()
		if err != nil {
			return err
		}
		if line == "" {
			return &wire.ProtocolError{Message: "empty response line"}
		}
		switch wire.Tag(line[0]) {
		case wire.TagBulk:
			if line == wire.NilBulk {
				return nil
			}
		case wire.TagStatus, wire.TagInteger:
			return nil
		default:
			return &wire.ProtocolError{Message: "unexpected reply to SET", Line: line}
		}
		// The acknowledgement is compared as a line: the announced length
		// is not used to read it.
		line, err = r.ReadLine()
		if err != nil {
			return err
		}
		ok = line == wire.SetOK
		return nil
	})
	if err != nil {
		return false, err
	}

	c.stats.recordSet()
	return ok, nil
}

// Exists returns the existence bitmask of a node.
//
// Wire: EXISTS <addr> -> :0 | :1 | :10 | :11
func (c *Client) Exists(ctx context.Context, addr wire.Address) (Existence, error) {
	var n int64
	err := c.exec(ctx, wire.NewRequest(wire.CmdExists, &addr), func(r *wire.Reader) error {
		var err error
		n, err = r.ReadInteger()
		return err
	})
	if err != nil {
		return 0, err
	}

	c.stats.recordExists()
	return Existence(n), nil
}

// Increment adds 1 to a node and returns the new value.
func (c *Client) Increment(ctx context.Context, addr wire.Address) (int64, error) {
	return c.IncrementBy(ctx, addr, 1)
}

// Decrement subtracts 1 from a node and returns the new value.
func (c *Client) Decrement(ctx context.Context, addr wire.Address) (int64, error) {
	return c.IncrementBy(ctx, addr, -1)
}

// DecrementBy subtracts amount from a node and returns the new value.
// math.MinInt64 has no positive counterpart and is rejected like zero.
func (c *Client) DecrementBy(ctx context.Context, addr wire.Address, amount int64) (int64, error) {
	if amount == math.MinInt64 {
		c.stats.recordError()
		return 0, &wire.ProtocolError{Message: "invalid decrement amount", Err: wire.ErrInvalidAmount}
	}
	return c.IncrementBy(ctx, addr, -amount)
}

// IncrementBy adds amount to a node and returns the new value. The gateway
// treats a node without a value as 0. An amount of zero fails with a
// wire.ProtocolError wrapping wire.ErrInvalidAmount before anything is sent.
//
// Wire: INCR | DECR | INCRBY <addr> <n> | DECRBY <addr> <n> -> :<value>
func (c *Client) IncrementBy(ctx context.Context, addr wire.Address, amount int64) (int64, error) {
	req, err := wire.NewAmountRequest(addr, amount)
	if err != nil {
		c.stats.recordError()
		return 0, err
	}

	var n int64
	err = c.exec(ctx, req, func(r *wire.Reader) error {
		var err error
		n, err = r.ReadInteger()
		return err
	})
	if err != nil {
		return 0, err
	}

	c.stats.recordIncrement()
	return n, nil
}

// Kill deletes a node and all its descendants. It returns true when the
// gateway acknowledges with "+ok" (lowercase).
//
// Wire: KILL <addr> -> +ok
func (c *Client) Kill(ctx context.Context, addr wire.Address) (bool, error) {
	ok, err := c.status(ctx, wire.NewRequest(wire.CmdKill, &addr), wire.KillOK)
	if err != nil {
		return false, err
	}

	c.stats.recordKill()
	return ok, nil
}

// Ping returns true when the gateway answers "+PONG".
func (c *Client) Ping(ctx context.Context) (bool, error) {
	ok, err := c.status(ctx, wire.NewRequest(wire.CmdPing, nil), wire.PingOK)
	if err != nil {
		return false, err
	}

	c.stats.recordPing()
	return ok, nil
}

// Halt asks the gateway to stop. No reply is awaited. The connection is
// closed afterwards; later operations reconnect, and fail while the gateway
// is down.
func (c *Client) Halt(ctx context.Context) (bool, error) {
	if err := c.exec(ctx, wire.NewRequest(wire.CmdHalt, nil), nil); err != nil {
		return false, err
	}
	c.conn.Close()
	return true, nil
}

func (c *Client) status(ctx context.Context, req *wire.Request, marker string) (bool, error) {
	var ok bool
	err := c.exec(ctx, req, func(r *wire.Reader) error {
		line, err := r.ReadStatus()
		if err != nil {
			return err
		}
		if line == "" || wire.Tag(line[0]) != wire.TagStatus {
			return &wire.ProtocolError{Message: "expected + frame", Line: line}
		}
		ok = line == marker
		return nil
	})
	return ok, err
}

// inArray flags an error frame found among the elements of an array reply:
// the rest of the array is still on the wire, so the stream is out of sync.
func inArray(err error) error {
	var respErr *wire.ResponseError
	if errors.As(err, &respErr) {
		return &wire.ProtocolError{Message: "error frame inside array", Err: err}
	}
	return err
}

// Next returns the subscript following the last subscript of addr among its
// siblings, as rendered by the gateway. Use an empty text subscript to get
// the first one. ok is false when there is none.
//
// Wire: NEXT <addr> -> $-1 | $<n> CRLF <subscript> CRLF
func (c *Client) Next(ctx context.Context, addr wire.Address) (string, bool, error) {
	return c.traverse(ctx, wire.NewRequest(wire.CmdNext, &addr))
}

// Previous returns the subscript preceding the last subscript of addr among
// its siblings. Use an empty text subscript to get the last one.
//
// Wire: PREVIOUS <addr> -> $-1 | $<n> CRLF <subscript> CRLF
func (c *Client) Previous(ctx context.Context, addr wire.Address) (string, bool, error) {
	return c.traverse(ctx, wire.NewRequest(wire.CmdPrevious, &addr))
}

// Query returns the address of the next node holding a value, in collation
// order, as formatted by the gateway (e.g. test1[1,"x"]).
//
// Wire: QUERY <addr> -> $-1 | $<n> CRLF <address> CRLF
func (c *Client) Query(ctx context.Context, addr wire.Address) (string, bool, error) {
	return c.traverse(ctx, wire.NewRequest(wire.CmdQuery, &addr))
}

// QueryAddress is Query with the result parsed into an Address.
func (c *Client) QueryAddress(ctx context.Context, addr wire.Address) (wire.Address, bool, error) {
	text, ok, err := c.Query(ctx, addr)
	if err != nil || !ok {
		return wire.Address{}, false, err
	}
	next, err := wire.ParseAddress(text)
	if err != nil {
		return wire.Address{}, false, err
	}
	return next, true, nil
}

func (c *Client) traverse(ctx context.Context, req *wire.Request) (string, bool, error) {
	var value []byte
	err := c.exec(ctx, req, func(r *wire.Reader) error {
		var err error
		value, err = r.ReadBulk()
		return err
	})
	if err != nil {
		return "", false, err
	}

	c.stats.recordTraversal()
	return string(value), value != nil, nil
}

// QueryGet returns the next node holding a value, with its value.
//
// Wire: QUERYGET <addr> -> $-1 | *2 CRLF <address bulk> <value bulk>
func (c *Client) QueryGet(ctx context.Context, addr wire.Address) (QueryResult, error) {
	var result QueryResult
	err := c.exec(ctx, wire.NewRequest(wire.CmdQueryGet, &addr), func(r *wire.Reader) error {
		line, err := r.ReadStatus()
		if err != nil {
			return err
		}
		switch line {
		case wire.NilBulk:
			return nil
		case "*2":
		default:
			return &wire.ProtocolError{Message: "expected *2 or $-1", Line: line}
		}

		next, err := r.ReadBulk()
		if err != nil {
			return inArray(err)
		}
		value, err := r.ReadBulk()
		if err != nil {
			return inArray(err)
		}
		result = QueryResult{Address: string(next), Value: value, Found: true}
		return nil
	})
	if err != nil {
		return QueryResult{}, err
	}

	c.stats.recordTraversal()
	return result, nil
}

// GetAllSubs returns the immediate children of a node with their values.
// An absent value is nil. When the gateway sends an absent subscript, the
// value slot of that pair is not on the wire and the value is nil.
//
// Wire: GETALLSUBS <addr> -> *<2n> then n (subscript, value) bulk pairs
func (c *Client) GetAllSubs(ctx context.Context, addr wire.Address) ([]SubValue, error) {
	return c.enumerate(ctx, wire.NewRequest(wire.CmdGetAllSubs, &addr), func(r *wire.Reader) (SubValue, error) {
		var item SubValue

		sub, err := r.ReadBulk()
		if err != nil || sub == nil {
			return item, err
		}
		item.Subscript = sub

		item.Value, err = r.ReadBulk()
		return item, err
	})
}

// GetSubtree returns a node and all its descendants holding a value. The
// node itself has a nil Subscript; descendants carry their path relative to
// addr. Absent values are reported as empty, never nil.
//
// Wire: GETSUBTREE <addr> -> *<2n> then n (subscript, value) bulk pairs
func (c *Client) GetSubtree(ctx context.Context, addr wire.Address) ([]SubValue, error) {
	return c.enumerate(ctx, wire.NewRequest(wire.CmdGetSubtree, &addr), func(r *wire.Reader) (SubValue, error) {
		var item SubValue

		sub, err := r.ReadBulk()
		if err != nil {
			return item, err
		}
		item.Subscript = sub

		value, err := r.ReadBulk()
		if err != nil {
			return item, err
		}
		if value == nil {
			value = []byte{}
		}
		item.Value = value
		return item, nil
	})
}

func (c *Client) enumerate(ctx context.Context, req *wire.Request, readPair func(r *wire.Reader) (SubValue, error)) ([]SubValue, error) {
	var items []SubValue
	err := c.exec(ctx, req, func(r *wire.Reader) error {
		count, err := r.ReadArrayHeader()
		if err != nil {
			return err
		}
		if count%2 != 0 {
			return &wire.ProtocolError{Message: "odd element count " + strconv.Itoa(count) + " for pairs"}
		}

		items = make([]SubValue, 0, min(count/2, 64))
		for range count / 2 {
			item, err := readPair(r)
			if err != nil {
				return inArray(err)
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.stats.recordEnumeration()
	return items, nil
}

// Subscripts parses a GETSUBTREE relative subscript path such as `"ab",2,3`.
// It returns nil for the subtree's own node.
func (s SubValue) Subscripts() ([]wire.Subscript, error) {
	if s.Subscript == nil {
		return nil, nil
	}
	return wire.ParseSubscripts(string(bytes.TrimSpace(s.Subscript)))
}
