package wire_test

import (
	"bytes"
	"fmt"
	"log"
	"strings"

	"github.com/pior/mwire/wire"
)

// ExampleWriteRequest demonstrates request serialization.
func ExampleWriteRequest() {
	addr := wire.Addr("test1", wire.Num(1), wire.Text("x"))

	var buf bytes.Buffer
	if err := wire.WriteRequest(&buf, wire.NewSetRequest(addr, []byte("hello"))); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%q", buf.String())
	// Output: "SET test1[1,\"x\"] 5\r\nhello\r\n"
}

// ExampleReader_ReadFrame demonstrates frame decoding.
func ExampleReader_ReadFrame() {
	r := wire.NewReader(strings.NewReader("*2\r\n$12\r\ntest1[1,\"x\"]\r\n$5\r\nhello\r\n"), 0)

	frame, err := r.ReadFrame()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(frame.Kind, len(frame.Array))
	fmt.Printf("%s = %s\n", frame.Array[0].Bulk, frame.Array[1].Bulk)
	// Output:
	// array 2
	// test1[1,"x"] = hello
}

// ExampleParseAddress demonstrates reading an address typed by a user.
func ExampleParseAddress() {
	addr, err := wire.ParseAddress(`test1[1,"y","hello world"]`)
	if err != nil {
		log.Fatal(err)
	}

	for _, s := range addr.Subscripts {
		fmt.Println(s.Kind(), s)
	}
	// Output:
	// numeric 1
	// text "y"
	// text "hello world"
}
