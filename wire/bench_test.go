package wire

import (
	"bufio"
	"bytes"
	"io"
	"testing"
)

var benchAddr = Addr("test1", Num(1), Text("y"), Text("hello world"))

func BenchmarkWriteRequest_Get(b *testing.B) {
	req := NewRequest(CmdGet, &benchAddr)

	for b.Loop() {
		if err := WriteRequest(io.Discard, req); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkWriteRequest_GetBuffered(b *testing.B) {
	req := NewRequest(CmdGet, &benchAddr)
	bw := bufio.NewWriter(io.Discard)

	for b.Loop() {
		if err := WriteRequest(bw, req); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkWriteRequest_SmallSet(b *testing.B) {
	req := NewSetRequest(benchAddr, bytes.Repeat([]byte("x"), 100))

	for b.Loop() {
		if err := WriteRequest(io.Discard, req); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkWriteRequest_LargeSet(b *testing.B) {
	req := NewSetRequest(benchAddr, bytes.Repeat([]byte("x"), 10*1024))

	for b.Loop() {
		if err := WriteRequest(io.Discard, req); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkRead(b *testing.B, response []byte, chunkSize int, read func(r *Reader) error) {
	src := bytes.NewReader(response)
	b.SetBytes(int64(len(response)))

	for b.Loop() {
		src.Reset(response)
		if err := read(NewReader(src, chunkSize)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkReadBulk_Small(b *testing.B) {
	benchmarkRead(b, []byte("$5\r\nhello\r\n"), DefaultChunkSize, func(r *Reader) error {
		_, err := r.ReadBulk()
		return err
	})
}

func BenchmarkReadBulk_Chunked(b *testing.B) {
	payload := bytes.Repeat([]byte("x"), 1<<20)
	response := append([]byte("$1048576\r\n"), payload...)
	response = append(response, CRLF...)

	benchmarkRead(b, response, DefaultChunkSize, func(r *Reader) error {
		_, err := r.ReadBulk()
		return err
	})
}

func BenchmarkReadFrame_Array(b *testing.B) {
	response := []byte("*6\r\n$1\r\nx\r\n$5\r\nhello\r\n$1\r\ny\r\n$5\r\nworld\r\n$1\r\nz\r\n$-1\r\n")

	benchmarkRead(b, response, DefaultChunkSize, func(r *Reader) error {
		_, err := r.ReadFrame()
		return err
	})
}

func BenchmarkFormatSubscripts(b *testing.B) {
	subs := benchAddr.Subscripts
	buf := make([]byte, 0, 64)

	for b.Loop() {
		buf = AppendSubscripts(buf[:0], subs)
	}
}
