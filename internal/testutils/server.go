package testutils

import (
	"bufio"
	"io"
	"net"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/pior/mwire/wire"
)

// Gateway is an in-process M/Wire gateway backed by an in-memory sparse tree.
// It implements the commands the client speaks, following the reply shapes of
// a real gateway, including its irregularities:
//
//   - NEXT, PREVIOUS and GETALLSUBS return subscripts as bare text.
//   - GETSUBTREE returns quoted paths relative to the requested node and
//     "$-1" for the node itself.
//   - Enumerations report empty values as "$-1".
//   - HALT closes the client connection without a reply.
//
// Unknown verbs get "-ERR unknown command".
type Gateway struct {
	listener net.Listener

	mu       sync.Mutex
	globals  map[string]*node
	accepted int
	received []string
	open     map[net.Conn]struct{}

	conns sync.WaitGroup
}

type node struct {
	sub      wire.Subscript
	value    []byte
	hasValue bool
	children []*node // sorted by collation
}

// StartGateway starts a gateway on a random local port and stops it when the
// test ends.
func StartGateway(t testing.TB) *Gateway {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to start test gateway: %v", err)
	}

	g := &Gateway{
		listener: listener,
		globals:  map[string]*node{},
		open:     map[net.Conn]struct{}{},
	}
	go g.serve()

	t.Cleanup(g.Close)
	return g
}

// Addr returns the gateway address as host:port.
func (g *Gateway) Addr() string {
	return g.listener.Addr().String()
}

// Host returns the gateway host.
func (g *Gateway) Host() string {
	return g.listener.Addr().(*net.TCPAddr).IP.String()
}

// Port returns the gateway port.
func (g *Gateway) Port() int {
	return g.listener.Addr().(*net.TCPAddr).Port
}

// Accepted returns the number of connections accepted so far.
func (g *Gateway) Accepted() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.accepted
}

// Received returns the command lines received so far, SET payloads excluded.
func (g *Gateway) Received() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.received)
}

// Close stops the gateway and closes every open connection.
func (g *Gateway) Close() {
	g.listener.Close()

	g.mu.Lock()
	for conn := range g.open {
		conn.Close()
	}
	g.mu.Unlock()

	g.conns.Wait()
}

func (g *Gateway) serve() {
	for {
		conn, err := g.listener.Accept()
		if err != nil {
			return
		}

		g.mu.Lock()
		g.accepted++
		g.open[conn] = struct{}{}
		g.mu.Unlock()

		g.conns.Add(1)
		go func() {
			defer g.conns.Done()
			defer func() {
				g.mu.Lock()
				delete(g.open, conn)
				g.mu.Unlock()
				conn.Close()
			}()
			g.handle(conn)
		}()
	}
}

func (g *Gateway) handle(conn net.Conn) {
	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")

		g.mu.Lock()
		g.received = append(g.received, line)
		g.mu.Unlock()

		verb, rest, _ := strings.Cut(line, " ")
		if wire.CmdType(verb) == wire.CmdHalt {
			return
		}

		var payload []byte
		if wire.CmdType(verb) == wire.CmdSet {
			payload, err = readPayload(r, rest)
			if err != nil {
				return
			}
		}

		g.mu.Lock()
		reply := g.execute(wire.CmdType(verb), rest, payload)
		g.mu.Unlock()

		if _, err := w.Write(reply); err != nil {
			return
		}
		if err := w.Flush(); err != nil {
			return
		}
	}
}

// readPayload reads the SET value whose length ends the command line.
func readPayload(r *bufio.Reader, rest string) ([]byte, error) {
	i := strings.LastIndexByte(rest, ' ')
	n, err := strconv.Atoi(rest[i+1:])
	if i < 0 || err != nil || n < 0 {
		return nil, io.ErrUnexpectedEOF
	}
	buf := make([]byte, n+2)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// splitAddress splits the address from the trailing arguments. Spaces inside
// quoted subscripts belong to the address.
func splitAddress(rest string) (string, []string) {
	quoted := false
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case '"':
			quoted = !quoted
		case ' ':
			if !quoted {
				return rest[:i], strings.Fields(rest[i+1:])
			}
		}
	}
	return rest, nil
}

func (g *Gateway) execute(verb wire.CmdType, rest string, payload []byte) []byte {
	if verb == wire.CmdPing {
		return []byte(wire.PingOK + wire.CRLF)
	}

	addrText, args := splitAddress(rest)
	addr, err := wire.ParseAddress(addrText)
	if err != nil {
		return errorReply("invalid address")
	}

	switch verb {
	case wire.CmdGet:
		n := g.lookup(addr)
		if n == nil || !n.hasValue {
			return nilReply()
		}
		return bulk(nil, n.value)

	case wire.CmdSet:
		n := g.create(addr)
		n.value = payload
		n.hasValue = true
		return bulk(nil, []byte(wire.SetOK))

	case wire.CmdExists:
		var e int
		if n := g.lookup(addr); n != nil {
			if n.hasValue {
				e += 1
			}
			if len(n.children) > 0 {
				e += 10
			}
		}
		return []byte(":" + strconv.Itoa(e) + wire.CRLF)

	case wire.CmdIncr, wire.CmdDecr, wire.CmdIncrBy, wire.CmdDecrBy:
		return g.increment(verb, addr, args)

	case wire.CmdKill:
		g.kill(addr)
		return []byte(wire.KillOK + wire.CRLF)

	case wire.CmdNext, wire.CmdPrevious:
		sub, ok := g.sibling(addr, verb == wire.CmdNext)
		if !ok {
			return nilReply()
		}
		return bulk(nil, []byte(bareSubscript(sub)))

	case wire.CmdQuery:
		next, _, ok := g.query(addr)
		if !ok {
			return nilReply()
		}
		return bulk(nil, []byte(next.String()))

	case wire.CmdQueryGet:
		next, n, ok := g.query(addr)
		if !ok {
			return nilReply()
		}
		reply := []byte("*2" + wire.CRLF)
		reply = bulk(reply, []byte(next.String()))
		return bulk(reply, n.value)

	case wire.CmdGetAllSubs:
		return g.allSubs(addr)

	case wire.CmdGetSubtree:
		return g.subtree(addr)
	}

	return errorReply("unknown command")
}

func (g *Gateway) increment(verb wire.CmdType, addr wire.Address, args []string) []byte {
	amount := int64(1)
	if verb == wire.CmdIncrBy || verb == wire.CmdDecrBy {
		if len(args) != 1 {
			return errorReply("missing amount")
		}
		n, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return errorReply("invalid amount")
		}
		amount = n
	}
	if verb == wire.CmdDecr || verb == wire.CmdDecrBy {
		amount = -amount
	}

	var current int64
	if n := g.lookup(addr); n != nil && n.hasValue && len(n.value) > 0 {
		v, err := strconv.ParseInt(string(n.value), 10, 64)
		if err != nil {
			return errorReply("value is not an integer")
		}
		current = v
	}

	current += amount
	n := g.create(addr)
	n.value = strconv.AppendInt(nil, current, 10)
	n.hasValue = true
	return []byte(":" + strconv.FormatInt(current, 10) + wire.CRLF)
}

func (g *Gateway) lookup(addr wire.Address) *node {
	n := g.globals[addr.Root]
	for _, sub := range addr.Subscripts {
		if n == nil {
			return nil
		}
		i, found := n.find(sub)
		if !found {
			return nil
		}
		n = n.children[i]
	}
	return n
}

func (g *Gateway) create(addr wire.Address) *node {
	n := g.globals[addr.Root]
	if n == nil {
		n = &node{}
		g.globals[addr.Root] = n
	}
	for _, sub := range addr.Subscripts {
		i, found := n.find(sub)
		if !found {
			n.children = slices.Insert(n.children, i, &node{sub: sub})
		}
		n = n.children[i]
	}
	return n
}

// kill removes the node and its descendants, then the ancestors left empty.
func (g *Gateway) kill(addr wire.Address) {
	if len(addr.Subscripts) == 0 {
		delete(g.globals, addr.Root)
		return
	}

	path := []*node{g.globals[addr.Root]}
	for _, sub := range addr.Subscripts {
		parent := path[len(path)-1]
		if parent == nil {
			return
		}
		i, found := parent.find(sub)
		if !found {
			return
		}
		path = append(path, parent.children[i])
	}

	for depth := len(path) - 1; depth > 0; depth-- {
		child, parent := path[depth], path[depth-1]
		if depth < len(path)-1 && (child.hasValue || len(child.children) > 0) {
			break
		}
		i, _ := parent.find(child.sub)
		parent.children = slices.Delete(parent.children, i, i+1)
	}
	if root := path[0]; !root.hasValue && len(root.children) == 0 {
		delete(g.globals, addr.Root)
	}
}

// sibling implements NEXT and PREVIOUS: the subscript after (or before) the
// last one of addr among its siblings. An empty text subscript starts from
// the first (or last) sibling.
func (g *Gateway) sibling(addr wire.Address, forward bool) (wire.Subscript, bool) {
	if len(addr.Subscripts) == 0 {
		return wire.Subscript{}, false
	}
	last := addr.Subscripts[len(addr.Subscripts)-1]
	parent := g.lookup(wire.Address{Root: addr.Root, Subscripts: addr.Subscripts[:len(addr.Subscripts)-1]})
	if parent == nil || len(parent.children) == 0 {
		return wire.Subscript{}, false
	}

	start := last.Kind() == wire.KindText && last.Text() == ""
	i, found := parent.find(last)

	if forward {
		if start {
			return parent.children[0].sub, true
		}
		if found {
			i++
		}
		if i >= len(parent.children) {
			return wire.Subscript{}, false
		}
		return parent.children[i].sub, true
	}

	if start {
		return parent.children[len(parent.children)-1].sub, true
	}
	if i == 0 {
		return wire.Subscript{}, false
	}
	return parent.children[i-1].sub, true
}

// query returns the first node holding a value strictly after addr in
// depth-first collation order.
func (g *Gateway) query(addr wire.Address) (wire.Address, *node, bool) {
	root := g.globals[addr.Root]
	if root == nil {
		return wire.Address{}, nil, false
	}

	var (
		result wire.Address
		match  *node
	)
	var walk func(n *node, path []wire.Subscript) bool
	walk = func(n *node, path []wire.Subscript) bool {
		if n.hasValue && comparePaths(path, addr.Subscripts) > 0 {
			result = wire.Address{Root: addr.Root, Subscripts: slices.Clone(path)}
			match = n
			return true
		}
		for _, child := range n.children {
			if walk(child, append(path, child.sub)) {
				return true
			}
		}
		return false
	}

	if !walk(root, nil) {
		return wire.Address{}, nil, false
	}
	return result, match, true
}

func (g *Gateway) allSubs(addr wire.Address) []byte {
	n := g.lookup(addr)
	if n == nil {
		return []byte("*0" + wire.CRLF)
	}

	reply := []byte("*" + strconv.Itoa(2*len(n.children)) + wire.CRLF)
	for _, child := range n.children {
		reply = bulk(reply, []byte(bareSubscript(child.sub)))
		reply = enumeratedValue(reply, child)
	}
	return reply
}

func (g *Gateway) subtree(addr wire.Address) []byte {
	n := g.lookup(addr)
	if n == nil {
		return []byte("*0" + wire.CRLF)
	}

	var body []byte
	count := 0
	if n.hasValue {
		body = append(body, wire.NilBulk+wire.CRLF...)
		body = enumeratedValue(body, n)
		count += 2
	}

	var walk func(n *node, path []wire.Subscript)
	walk = func(n *node, path []wire.Subscript) {
		for _, child := range n.children {
			childPath := append(path, child.sub)
			if child.hasValue {
				rel := wire.FormatSubscripts(childPath)
				body = bulk(body, []byte(rel[1:len(rel)-1]))
				body = enumeratedValue(body, child)
				count += 2
			}
			walk(child, childPath)
		}
	}
	walk(n, nil)

	return append([]byte("*"+strconv.Itoa(count)+wire.CRLF), body...)
}

// find returns the index of sub among the children, or where it would be
// inserted.
func (n *node) find(sub wire.Subscript) (int, bool) {
	return slices.BinarySearchFunc(n.children, sub, func(child *node, target wire.Subscript) int {
		return compareSubscripts(child.sub, target)
	})
}

// compareSubscripts orders numeric subscripts before text ones, numerics by
// value and text byte-wise.
func compareSubscripts(a, b wire.Subscript) int {
	if a.Kind() != b.Kind() {
		if a.Kind() == wire.KindNumeric {
			return -1
		}
		return 1
	}
	if a.Kind() == wire.KindNumeric {
		switch {
		case a.Int() < b.Int():
			return -1
		case a.Int() > b.Int():
			return 1
		}
		return 0
	}
	return strings.Compare(a.Text(), b.Text())
}

// comparePaths orders subscript paths depth-first: a path sorts before its
// descendants.
func comparePaths(a, b []wire.Subscript) int {
	for i := range min(len(a), len(b)) {
		if c := compareSubscripts(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

func bareSubscript(sub wire.Subscript) string {
	if sub.Kind() == wire.KindNumeric {
		return strconv.FormatInt(sub.Int(), 10)
	}
	return sub.Text()
}

func enumeratedValue(dst []byte, n *node) []byte {
	if !n.hasValue || len(n.value) == 0 {
		return append(dst, wire.NilBulk+wire.CRLF...)
	}
	return bulk(dst, n.value)
}

func bulk(dst, value []byte) []byte {
	dst = append(dst, '$')
	dst = strconv.AppendInt(dst, int64(len(value)), 10)
	dst = append(dst, wire.CRLF...)
	dst = append(dst, value...)
	return append(dst, wire.CRLF...)
}

func nilReply() []byte {
	return []byte(wire.NilBulk + wire.CRLF)
}

func errorReply(msg string) []byte {
	return []byte("-ERR " + msg + wire.CRLF)
}
