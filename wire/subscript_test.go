package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSubscripts(t *testing.T) {
	tests := []struct {
		name     string
		subs     []Subscript
		expected string
	}{
		{name: "none", subs: nil, expected: ""},
		{name: "empty slice", subs: []Subscript{}, expected: ""},
		{name: "single number", subs: []Subscript{Num(1)}, expected: "[1]"},
		{name: "negative number", subs: []Subscript{Num(-42)}, expected: "[-42]"},
		{name: "single text", subs: []Subscript{Text("x")}, expected: `["x"]`},
		{name: "empty text", subs: []Subscript{Text("")}, expected: `[""]`},
		{name: "zero value is empty text", subs: []Subscript{{}}, expected: `[""]`},
		{name: "mixed", subs: []Subscript{Num(1), Text("y"), Text("hello world")}, expected: `[1,"y","hello world"]`},
		{name: "numeric looking text stays quoted", subs: []Subscript{Text("12")}, expected: `["12"]`},
		{name: "quotes are not escaped", subs: []Subscript{Text(`a"b`)}, expected: `["a"b"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatSubscripts(tt.subs))
		})
	}
}

func TestFormatSubscripts_TypeDecidesQuoting(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 7, 1 << 40} {
		s := Num(n)
		assert.NotContains(t, s.String(), `"`, "numeric subscript %d must be bare", n)
	}
	for _, text := range []string{"", "0", "1", "abc", "a b", "-3"} {
		s := Text(text)
		out := s.String()
		assert.Equal(t, byte('"'), out[0])
		assert.Equal(t, byte('"'), out[len(out)-1])
	}
}

func TestAddressString(t *testing.T) {
	assert.Equal(t, "test1", Addr("test1").String())
	assert.Equal(t, `test1[1,"x"]`, Addr("test1", Num(1), Text("x")).String())
	assert.Equal(t, `^g["a","b"]`, Addr("^g", Text("a"), Text("b")).String())
}

func TestAddressEqual(t *testing.T) {
	a := Addr("test1", Num(1), Text("x"))

	assert.True(t, a.Equal(Addr("test1", Num(1), Text("x"))))
	assert.False(t, a.Equal(Addr("test2", Num(1), Text("x"))))
	assert.False(t, a.Equal(Addr("test1", Text("1"), Text("x"))), "kind is part of the address")
	assert.False(t, a.Equal(Addr("test1", Num(1))))
}

func TestAddressChild(t *testing.T) {
	parent := Addr("test1", Num(1))
	child := parent.Child(Text("x"))

	assert.Equal(t, `test1[1,"x"]`, child.String())
	assert.Equal(t, "test1[1]", parent.String(), "parent must not be modified")
}

func TestAddressValidate(t *testing.T) {
	require.NoError(t, Addr("test1").Validate())
	require.NoError(t, Addr("^global", Text("a b")).Validate())

	for _, root := range []string{"", "a b", "a[", "a\r\n", `a"`, "a,b"} {
		err := Addr(root).Validate()
		var invalid *InvalidAddressError
		require.ErrorAs(t, err, &invalid, "root %q", root)
	}
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		text     string
		expected Address
	}{
		{text: "test1", expected: Addr("test1")},
		{text: "test1[1]", expected: Addr("test1", Num(1))},
		{text: `test1[1,"x"]`, expected: Addr("test1", Num(1), Text("x"))},
		{text: `test1[1,"y","hello world"]`, expected: Addr("test1", Num(1), Text("y"), Text("hello world"))},
		{text: `test1[""]`, expected: Addr("test1", Text(""))},
		{text: `test1["a,b",-2]`, expected: Addr("test1", Text("a,b"), Num(-2))},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ParseAddress(tt.text)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "got %s", got)
			assert.Equal(t, tt.text, got.String())
		})
	}
}

func TestParseAddress_Invalid(t *testing.T) {
	for _, text := range []string{
		"",
		"[1]",
		"test1[",
		"test1[]",
		"test1[1",
		`test1["x]`,
		"test1[x]",
		"test1[1,]",
		"test1[1.5]",
		`test1["a"b]`,
	} {
		t.Run(text, func(t *testing.T) {
			_, err := ParseAddress(text)
			var invalid *InvalidAddressError
			require.ErrorAs(t, err, &invalid)
		})
	}
}

func TestParseSubscripts(t *testing.T) {
	subs, err := ParseSubscripts(`"ab",2,3`)
	require.NoError(t, err)
	assert.Equal(t, []Subscript{Text("ab"), Num(2), Num(3)}, subs)
}
