// Package wire provides a low-level implementation of the M/Wire protocol:
// request serialization, frame decoding and node address rendering.
//
// This package is the foundation of the mwire client. It deals with bytes on
// the wire only and makes no decision about connection management.
//
// # Addresses
//
// A node is addressed by a root name and an ordered list of subscripts. Each
// subscript is either numeric or text, and the kind is part of the address:
//
//	addr := wire.Addr("test1", wire.Num(1), wire.Text("x"))
//	addr.String() // test1[1,"x"]
//
// Text subscripts are quoted without escaping. A text subscript containing a
// double quote or a comma cannot be represented on the wire.
//
// # Requests
//
// WriteRequest serializes a Request:
//
//	err := wire.WriteRequest(conn, wire.NewSetRequest(addr, []byte("hello")))
//	// SET test1[1,"x"] 5\r\nhello\r\n
//
// # Frames
//
// Every response line starts with a tag:
//
//	+  status       +PONG
//	-  error        -ERR unknown command
//	:  integer      :11
//	$  bulk length  $5 followed by the payload and CRLF, $-1 for absent
//	*  array count  *4 followed by that many bulk frames
//
// Reader decodes them, either generically with ReadFrame or through typed
// helpers (ReadInteger, ReadBulk, ReadArrayHeader, ReadStatus) that turn an
// error frame into a ResponseError and any other unexpected tag into a
// ProtocolError.
//
// Bulk payloads larger than the reader's chunk size are received through
// several bounded reads, so a single huge value never needs one oversized read.
//
// # Error Handling
//
// Errors implement ErrorWithConnectionState. ShouldCloseConnection tells
// whether the connection must be dropped:
//
//	ConnectionError      socket failure                 close
//	ProtocolError        unexpected or malformed frame  close (stream out of sync)
//	ResponseError        server error frame             keep
//	NotImplementedError  no wire behaviour defined      keep
//	InvalidAddressError  rejected before sending        keep
package wire
