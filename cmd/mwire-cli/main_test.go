package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pior/mwire"
	"github.com/pior/mwire/internal/testutils"
)

func TestExecute(t *testing.T) {
	gw := testutils.StartGateway(t)
	client, err := mwire.NewClient(mwire.Config{Host: gw.Host(), Port: gw.Port()})
	require.NoError(t, err)
	defer client.Close()

	tests := []struct {
		line string
		want string
	}{
		{`set test1[1,"x"] hello world`, "true\n"},
		{`get test1[1,"x"]`, "\"hello world\"\n"},
		{`get test1[1,"nope"]`, "(nil)\n"},
		{`set test1[1,"hello world"] `, "true\n"},
		{`get test1[1,"hello world"]`, "\"\"\n"},
		{`exists test1[1]`, "10 (value=false descendants=true)\n"},
		{`incr counter`, "1\n"},
		{`incr counter 5`, "6\n"},
		{`decr counter 2`, "4\n"},
		{`next test1[1,""]`, "hello world\n"},
		{`next test1[1,"x"]`, "(nil)\n"},
		{`query test1`, "test1[1,\"hello world\"]\n"},
		{`queryget test1[1,"hello world"]`, "test1[1,\"x\"] = \"hello world\"\n"},
		{`subs test1[1]`, "hello world = (nil)\nx = \"hello world\"\n"},
		{`subtree test1[1]`, "\"hello world\" = \"\"\n\"x\" = \"hello world\"\n"},
		{`kill test1`, "true\n"},
		{`subs test1`, "(empty)\n"},
		{`ping`, "true\n"},
		{`bogus`, "Unknown command: bogus. Type 'help' for available commands.\n"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			var out bytes.Buffer
			quit := execute(context.Background(), client, &out, tt.line)
			assert.False(t, quit)
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestExecute_Errors(t *testing.T) {
	client, err := mwire.NewClient(mwire.Config{})
	require.NoError(t, err)

	var out bytes.Buffer
	execute(context.Background(), client, &out, `get bad[`)
	assert.Contains(t, out.String(), "Error:")

	out.Reset()
	execute(context.Background(), client, &out, `incr counter zero`)
	assert.Contains(t, out.String(), `invalid amount "zero"`)

	out.Reset()
	execute(context.Background(), client, &out, `get`)
	assert.Contains(t, out.String(), "usage: get <address>")
}

func TestExecute_Quit(t *testing.T) {
	var out bytes.Buffer
	assert.True(t, execute(context.Background(), nil, &out, "quit"))
	assert.True(t, execute(context.Background(), nil, &out, "EXIT"))
	assert.False(t, execute(context.Background(), nil, &out, "   "))
}

func TestSplitAddress(t *testing.T) {
	tests := []struct {
		input    string
		wantAddr string
		wantRest string
	}{
		{`test1`, `test1`, ``},
		{`test1 value`, `test1`, `value`},
		{`test1[1,"a b"] some value`, `test1[1,"a b"]`, `some value`},
		{`test1["a b"]`, `test1["a b"]`, ``},
	}

	for _, tt := range tests {
		addr, rest := splitAddress(tt.input)
		assert.Equal(t, tt.wantAddr, addr)
		assert.Equal(t, tt.wantRest, rest)
	}
}

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("host: gateway.internal\ntimeout: 2s\nchunk_size: 4096\n"), 0o600))

	p, err := loadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, profile{
		Host:      "gateway.internal",
		Port:      mwire.DefaultPort,
		Timeout:   2 * time.Second,
		ChunkSize: 4096,
	}, p)

	config := p.clientConfig(zap.NewNop())
	assert.Equal(t, "gateway.internal", config.Host)
	assert.Equal(t, 4096, config.ChunkSize)
}

func TestLoadProfile_Errors(t *testing.T) {
	_, err := loadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [not a number\n"), 0o600))
	_, err = loadProfile(path)
	require.Error(t, err)
}
