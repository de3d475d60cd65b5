package wire

import "strconv"

// Request represents an M/Wire request.
// This is a low-level container without serialization logic.
type Request struct {
	// Command is the verb: GET, SET, EXISTS, ...
	Command CmdType

	// Address is the target node. nil for PING and HALT.
	Address *Address

	// Args are extra tokens written after the address, such as the amount of
	// INCRBY. The SET length is derived from Payload and never stored here.
	Args []string

	// Payload is the raw value line sent after a SET command line.
	Payload []byte
}

// NewRequest creates a request for an addressed command. Pass a nil address
// for PING and HALT.
func NewRequest(cmd CmdType, addr *Address, args ...string) *Request {
	return &Request{Command: cmd, Address: addr, Args: args}
}

// NewSetRequest creates a SET request. value may be empty.
func NewSetRequest(addr Address, value []byte) *Request {
	return &Request{Command: CmdSet, Address: &addr, Payload: value}
}

// NewAmountRequest creates the INCR/DECR family request for amount:
// INCR or DECR for +1/-1, INCRBY n or DECRBY n for larger magnitudes.
// Zero is rejected with a ProtocolError wrapping ErrInvalidAmount.
func NewAmountRequest(addr Address, amount int64) (*Request, error) {
	switch {
	case amount == 1:
		return NewRequest(CmdIncr, &addr), nil
	case amount == -1:
		return NewRequest(CmdDecr, &addr), nil
	case amount >= 2:
		return NewRequest(CmdIncrBy, &addr, strconv.FormatInt(amount, 10)), nil
	case amount <= -2:
		// -amount overflows for MinInt64, format the magnitude from the string
		return NewRequest(CmdDecrBy, &addr, strconv.FormatInt(amount, 10)[1:]), nil
	default:
		return nil, &ProtocolError{Message: "invalid increment amount", Err: ErrInvalidAmount}
	}
}

// Validate checks that the request can be written. Requests are validated
// by WriteRequest before anything is sent.
func (r *Request) Validate() error {
	if !r.Command.Addressed() {
		return nil
	}
	if r.Address == nil {
		return &InvalidAddressError{Message: string(r.Command) + " requires an address"}
	}
	return r.Address.Validate()
}

// Addressed reports whether cmd takes a node address.
func (c CmdType) Addressed() bool {
	return c != CmdPing && c != CmdHalt
}
