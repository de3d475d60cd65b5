package wire

import (
	"bufio"
	"io"
	"strconv"

	"github.com/pior/mwire/internal"
)

// Command lines are typically well under 256 bytes.
var bufferPool = internal.NewByteBufferPool(256, 64<<10)

// lineWriter is implemented by both *bufio.Writer and *bytes.Buffer.
type lineWriter interface {
	io.Writer
	io.StringWriter
	io.ByteWriter
	AvailableBuffer() []byte
}

// WriteRequest serializes req and writes it to w.
//
// Format: <CMD>[ <root>[<subscripts>]][ <args>...]\r\n
// For SET:  SET <root>[<subscripts>] <len>\r\n<payload>\r\n
//
// The address is validated before anything is written. Write failures are
// returned as ConnectionError.
func WriteRequest(w io.Writer, req *Request) error {
	if err := req.Validate(); err != nil {
		return err
	}

	// Optimize for bufio.Writer (used by Connection)
	if bw, ok := w.(*bufio.Writer); ok {
		return writeRequestBuffered(bw, req)
	}

	return writeRequestUnbuffered(w, req)
}

func writeRequestBuffered(bw *bufio.Writer, req *Request) error {
	writeCommandLine(bw, req)

	if req.Command == CmdSet {
		bw.Write(req.Payload)
		bw.WriteString(CRLF)
	}

	// bufio.Writer errors are sticky, Flush reports the first one
	if err := bw.Flush(); err != nil {
		return &ConnectionError{Op: "write", Err: err}
	}
	return nil
}

// writeRequestUnbuffered writes using a pooled buffer (for tests and non-buffered writers).
func writeRequestUnbuffered(w io.Writer, req *Request) error {
	buf := bufferPool.Get()
	defer bufferPool.Put(buf)

	writeCommandLine(buf, req)

	if _, err := w.Write(buf.Bytes()); err != nil {
		return &ConnectionError{Op: "write", Err: err}
	}

	if req.Command == CmdSet {
		if len(req.Payload) > 0 {
			if _, err := w.Write(req.Payload); err != nil {
				return &ConnectionError{Op: "write", Err: err}
			}
		}
		if _, err := io.WriteString(w, CRLF); err != nil {
			return &ConnectionError{Op: "write", Err: err}
		}
	}

	return nil
}

func writeCommandLine(w lineWriter, req *Request) {
	w.WriteString(string(req.Command))

	if req.Address != nil {
		w.WriteByte(' ')
		w.WriteString(req.Address.Root)
		w.Write(AppendSubscripts(w.AvailableBuffer(), req.Address.Subscripts))
	}

	if req.Command == CmdSet {
		w.WriteByte(' ')
		w.Write(strconv.AppendInt(w.AvailableBuffer(), int64(len(req.Payload)), 10))
	}

	for _, arg := range req.Args {
		w.WriteByte(' ')
		w.WriteString(arg)
	}

	w.WriteString(CRLF)
}
