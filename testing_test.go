package mwire

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pior/mwire/internal/testutils"
	"github.com/pior/mwire/wire"
)

func newGatewayClient(t testing.TB, gw *testutils.Gateway) *Client {
	t.Helper()

	client, err := NewClient(Config{
		Host:    gw.Host(),
		Port:    gw.Port(),
		Timeout: 2 * time.Second,
		Logger:  zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

// newMockClient returns a client whose successive dials hand out conns.
func newMockClient(t testing.TB, conns ...net.Conn) *Client {
	t.Helper()

	client, err := NewClient(Config{
		Timeout: time.Second,
		Dial:    testutils.Dialer(conns...),
		Logger:  zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

// seedTest1 stores:
//
//	test1="aaa"
//	test1[1,"x"]="hello"
//	test1[1,"y"]="world"
//	test1[1,"y","hello world"]="ok"
//	test1[1,"z"]=""
//	test1[1,"z","hello world"]="not ok"
func seedTest1(t testing.TB, client *Client) {
	t.Helper()
	ctx := context.Background()

	_, err := client.Kill(ctx, wire.Addr("test1"))
	require.NoError(t, err)

	seed := []struct {
		addr  wire.Address
		value string
	}{
		{wire.Addr("test1"), "aaa"},
		{wire.Addr("test1", wire.Num(1), wire.Text("x")), "hello"},
		{wire.Addr("test1", wire.Num(1), wire.Text("y")), "world"},
		{wire.Addr("test1", wire.Num(1), wire.Text("y"), wire.Text("hello world")), "ok"},
		{wire.Addr("test1", wire.Num(1), wire.Text("z")), ""},
		{wire.Addr("test1", wire.Num(1), wire.Text("z"), wire.Text("hello world")), "not ok"},
	}
	for _, s := range seed {
		ok, err := client.Set(ctx, s.addr, []byte(s.value))
		require.NoError(t, err)
		require.True(t, ok, "SET %s", s.addr)
	}
}

func subValue(sub, value string) SubValue {
	return SubValue{Subscript: []byte(sub), Value: []byte(value)}
}
