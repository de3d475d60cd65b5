package wire

import (
	"strconv"
	"strings"
)

// SubscriptKind tells how a subscript is rendered on the wire. The gateway
// treats quoted and bare subscripts as different address spaces.
type SubscriptKind uint8

const (
	// KindText subscripts are rendered double-quoted. The zero Subscript is
	// the empty text subscript "".
	KindText SubscriptKind = iota
	// KindNumeric subscripts are rendered as bare decimal integers.
	KindNumeric
)

func (k SubscriptKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumeric:
		return "numeric"
	default:
		return "unknown"
	}
}

// Subscript is one component of a node address: either a number or a string.
type Subscript struct {
	kind SubscriptKind
	num  int64
	text string
}

// Num returns a numeric subscript.
func Num(n int64) Subscript {
	return Subscript{kind: KindNumeric, num: n}
}

// Text returns a string subscript. Embedded double quotes and commas are not
// escaped and will corrupt the request line.
func Text(s string) Subscript {
	return Subscript{kind: KindText, text: s}
}

func (s Subscript) Kind() SubscriptKind { return s.kind }

// Int returns the numeric value. Zero for text subscripts.
func (s Subscript) Int() int64 { return s.num }

// Text returns the string value. Empty for numeric subscripts.
func (s Subscript) Text() string { return s.text }

// String returns the wire rendering: 12 or "abc".
func (s Subscript) String() string {
	return string(s.AppendTo(nil))
}

// AppendTo appends the wire rendering of s to dst.
func (s Subscript) AppendTo(dst []byte) []byte {
	if s.kind == KindNumeric {
		return strconv.AppendInt(dst, s.num, 10)
	}
	dst = append(dst, '"')
	dst = append(dst, s.text...)
	return append(dst, '"')
}

// FormatSubscripts renders the bracketed subscript suffix of an address.
// An empty sequence renders as the empty string.
func FormatSubscripts(subs []Subscript) string {
	return string(AppendSubscripts(nil, subs))
}

// AppendSubscripts appends the bracketed subscript suffix to dst.
func AppendSubscripts(dst []byte, subs []Subscript) []byte {
	if len(subs) == 0 {
		return dst
	}
	dst = append(dst, '[')
	for i, s := range subs {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = s.AppendTo(dst)
	}
	return append(dst, ']')
}

// Address identifies a node: a global's root name plus an ordered list of
// subscripts.
type Address struct {
	Root       string
	Subscripts []Subscript
}

// Addr builds an Address.
func Addr(root string, subs ...Subscript) Address {
	return Address{Root: root, Subscripts: subs}
}

// Child returns a copy of a with subs appended. a is not modified.
func (a Address) Child(subs ...Subscript) Address {
	out := make([]Subscript, 0, len(a.Subscripts)+len(subs))
	out = append(out, a.Subscripts...)
	out = append(out, subs...)
	return Address{Root: a.Root, Subscripts: out}
}

// Equal reports whether both addresses have the same root and the same
// subscripts, kinds included.
func (a Address) Equal(b Address) bool {
	if a.Root != b.Root || len(a.Subscripts) != len(b.Subscripts) {
		return false
	}
	for i := range a.Subscripts {
		if a.Subscripts[i] != b.Subscripts[i] {
			return false
		}
	}
	return true
}

// String returns the wire form: root or root[s1,s2,...].
func (a Address) String() string {
	return string(AppendAddress(nil, a))
}

// AppendAddress appends the wire form of a to dst.
func AppendAddress(dst []byte, a Address) []byte {
	dst = append(dst, a.Root...)
	return AppendSubscripts(dst, a.Subscripts)
}

// Validate checks that the root name can be put on a request line.
func (a Address) Validate() error {
	if a.Root == "" {
		return &InvalidAddressError{Message: "root name is empty"}
	}
	if strings.ContainsAny(a.Root, " \t\r\n[]\",") {
		return &InvalidAddressError{Message: "root name contains a reserved character: " + strconv.Quote(a.Root)}
	}
	return nil
}

// ParseAddress parses the wire form of an address, as typed by a user or as
// returned by QUERY. Quoted subscripts become text, bare ones numeric.
func ParseAddress(text string) (Address, error) {
	open := strings.IndexByte(text, '[')
	if open < 0 {
		a := Address{Root: text}
		return a, a.Validate()
	}

	a := Address{Root: text[:open]}
	if err := a.Validate(); err != nil {
		return Address{}, err
	}
	if !strings.HasSuffix(text, "]") || len(text) < open+2 {
		return Address{}, &InvalidAddressError{Message: "unterminated subscript list: " + strconv.Quote(text)}
	}

	subs, err := ParseSubscripts(text[open+1 : len(text)-1])
	if err != nil {
		return Address{}, err
	}
	a.Subscripts = subs
	return a, nil
}

// ParseSubscripts parses a comma separated subscript list without brackets,
// such as `"ab",2,3` as returned by GETSUBTREE.
func ParseSubscripts(text string) ([]Subscript, error) {
	if text == "" {
		return nil, &InvalidAddressError{Message: "empty subscript list"}
	}

	var subs []Subscript
	pos := 0
	for {
		if pos < len(text) && text[pos] == '"' {
			end := strings.IndexByte(text[pos+1:], '"')
			if end < 0 {
				return nil, &InvalidAddressError{Message: "unterminated string subscript: " + strconv.Quote(text)}
			}
			subs = append(subs, Text(text[pos+1:pos+1+end]))
			pos += end + 2
		} else {
			end := strings.IndexByte(text[pos:], ',')
			if end < 0 {
				end = len(text) - pos
			}
			n, err := strconv.ParseInt(text[pos:pos+end], 10, 64)
			if err != nil {
				return nil, &InvalidAddressError{Message: "invalid numeric subscript: " + strconv.Quote(text[pos:pos+end])}
			}
			subs = append(subs, Num(n))
			pos += end
		}

		if pos == len(text) {
			return subs, nil
		}
		if text[pos] != ',' {
			return nil, &InvalidAddressError{Message: "expected ',' in subscript list: " + strconv.Quote(text)}
		}
		pos++
		if pos == len(text) {
			return nil, &InvalidAddressError{Message: "trailing ',' in subscript list: " + strconv.Quote(text)}
		}
	}
}
