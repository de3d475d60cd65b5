package wire

import (
	"bufio"
	"bytes"
	"io"
	"math"
	"strconv"
)

// Reader reads lines and frames from a connection.
//
// Reader is not safe for concurrent use; it carries the read cursor of the
// connection it was created for.
type Reader struct {
	br        *bufio.Reader
	chunkSize int
}

// NewReader returns a Reader on r. Bulk payloads longer than chunkSize are
// received through several bounded reads. chunkSize <= 0 selects
// DefaultChunkSize.
func NewReader(r io.Reader, chunkSize int) *Reader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{br: br, chunkSize: chunkSize}
}

// ChunkSize returns the largest payload read in a single operation.
func (r *Reader) ChunkSize() int {
	return r.chunkSize
}

// ReadLine reads one line and strips its terminator (CRLF, or a bare LF).
func (r *Reader) ReadLine() (string, error) {
	line, err := r.br.ReadSlice('\n')
	if err == bufio.ErrBufferFull {
		// ReadSlice's buffer is reused by the next read, copy it first
		head := append([]byte(nil), line...)
		var rest []byte
		rest, err = r.br.ReadBytes('\n')
		line = append(head, rest...)
	}
	if err != nil {
		return "", &ConnectionError{Op: "read", Err: err}
	}

	line = bytes.TrimSuffix(line, []byte{'\n'})
	line = bytes.TrimSuffix(line, []byte{'\r'})
	return string(line), nil
}

// ReadExact reads an n byte payload followed by CRLF and returns the payload.
// For n == 0 the result is empty but not nil.
func (r *Reader) ReadExact(n int) ([]byte, error) {
	if n < 0 {
		return nil, &ProtocolError{Message: "negative payload length " + strconv.Itoa(n)}
	}

	if n <= r.chunkSize {
		data := make([]byte, n+2)
		if _, err := io.ReadFull(r.br, data); err != nil {
			return nil, &ConnectionError{Op: "read", Err: err}
		}
		return checkTerminator(data, n)
	}

	var buf bytes.Buffer
	remaining := n + 2
	for remaining > 0 {
		step := min(remaining, r.chunkSize)
		if _, err := io.CopyN(&buf, r.br, int64(step)); err != nil {
			return nil, &ConnectionError{Op: "read", Err: err}
		}
		remaining -= step
	}
	return checkTerminator(buf.Bytes(), n)
}

func checkTerminator(data []byte, n int) ([]byte, error) {
	if data[n] != '\r' || data[n+1] != '\n' {
		return nil, &ProtocolError{Message: "invalid payload terminator"}
	}
	return data[:n:n], nil
}

// ReadFrame reads one line and decodes it, with any payload or elements it
// announces.
func (r *Reader) ReadFrame() (Frame, error) {
	line, err := r.ReadLine()
	if err != nil {
		return Frame{}, err
	}
	return r.DecodeLine(line)
}

// DecodeLine decodes a frame whose first line has already been read.
// Bulk payloads and array elements are read from r. An array element that is
// itself an array is a ProtocolError.
func (r *Reader) DecodeLine(line string) (Frame, error) {
	if line == "" {
		return Frame{}, &ProtocolError{Message: "empty response line"}
	}

	switch Tag(line[0]) {
	case TagStatus:
		return Frame{Kind: FrameStatus, Text: line[1:]}, nil

	case TagError:
		return Frame{Kind: FrameError, Text: line[1:]}, nil

	case TagInteger:
		n, err := parseNumber(line)
		if err != nil {
			return Frame{}, err
		}
		return Frame{Kind: FrameInteger, Int: n}, nil

	case TagBulk:
		n, err := parseNumber(line)
		if err != nil {
			return Frame{}, err
		}
		data, err := r.ReadBulkBody(n)
		if err != nil {
			return Frame{}, err
		}
		return Frame{Kind: FrameBulk, Bulk: data}, nil

	case TagArray:
		n, err := parseCount(line)
		if err != nil {
			return Frame{}, err
		}
		// the count comes from the peer, don't trust it for preallocation
		frames := make([]Frame, 0, min(n, 64))
		for range n {
			elem, err := r.ReadLine()
			if err != nil {
				return Frame{}, err
			}
			// arrays are flat
			if elem != "" && Tag(elem[0]) == TagArray {
				return Frame{}, &ProtocolError{Message: "nested array", Line: elem}
			}
			f, err := r.DecodeLine(elem)
			if err != nil {
				return Frame{}, err
			}
			frames = append(frames, f)
		}
		return Frame{Kind: FrameArray, Array: frames}, nil

	default:
		return Frame{}, &ProtocolError{Message: "unknown frame tag", Line: line}
	}
}

// ReadInteger reads an integer frame.
func (r *Reader) ReadInteger() (int64, error) {
	line, err := r.expect(TagInteger)
	if err != nil {
		return 0, err
	}
	return parseNumber(line)
}

// ReadBulkHeader reads a bulk length line. A negative length announces an
// absent value and no payload follows.
func (r *Reader) ReadBulkHeader() (int64, error) {
	line, err := r.expect(TagBulk)
	if err != nil {
		return 0, err
	}
	return parseNumber(line)
}

// ReadBulkBody reads the payload announced by a bulk header.
// Negative lengths return nil without reading.
func (r *Reader) ReadBulkBody(n int64) ([]byte, error) {
	if n < 0 {
		return nil, nil
	}
	if n > math.MaxInt-2 {
		return nil, &ProtocolError{Message: "bulk length out of range: " + strconv.FormatInt(n, 10)}
	}
	return r.ReadExact(int(n))
}

// ReadBulk reads a bulk frame. nil means absent, empty non-nil means empty.
func (r *Reader) ReadBulk() ([]byte, error) {
	n, err := r.ReadBulkHeader()
	if err != nil {
		return nil, err
	}
	return r.ReadBulkBody(n)
}

// ReadArrayHeader reads an array count line.
func (r *Reader) ReadArrayHeader() (int, error) {
	line, err := r.expect(TagArray)
	if err != nil {
		return 0, err
	}
	return parseCount(line)
}

// ReadStatus reads a line and returns it verbatim, tag included, so callers
// can compare it against their command's success marker. An error frame is
// returned as a ResponseError.
func (r *Reader) ReadStatus() (string, error) {
	line, err := r.ReadLine()
	if err != nil {
		return "", err
	}
	if line != "" && Tag(line[0]) == TagError {
		return "", &ResponseError{Message: line[1:]}
	}
	return line, nil
}

// expect reads a line that must start with tag. Error frames become
// ResponseError, other tags ProtocolError.
func (r *Reader) expect(tag Tag) (string, error) {
	line, err := r.ReadLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return "", &ProtocolError{Message: "empty response line"}
	}
	switch Tag(line[0]) {
	case tag:
		return line, nil
	case TagError:
		return "", &ResponseError{Message: line[1:]}
	default:
		return "", &ProtocolError{Message: "expected " + string(tag) + " frame", Line: line}
	}
}

func parseNumber(line string) (int64, error) {
	n, err := strconv.ParseInt(line[1:], 10, 64)
	if err != nil {
		return 0, &ProtocolError{Message: "invalid number", Line: line, Err: err}
	}
	return n, nil
}

func parseCount(line string) (int, error) {
	n, err := strconv.Atoi(line[1:])
	if err != nil {
		return 0, &ProtocolError{Message: "invalid count", Line: line, Err: err}
	}
	if n < 0 {
		return 0, &ProtocolError{Message: "negative count", Line: line}
	}
	return n, nil
}
