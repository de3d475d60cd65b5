package mwire

import (
	"context"

	"github.com/pior/mwire/wire"
)

// The operations below are part of the client surface but have no wire
// protocol yet. They fail with a *wire.NotImplementedError (matching
// wire.ErrNotImplemented) without touching the connection.

func notImplemented(op wire.CmdType) error {
	return &wire.NotImplementedError{Op: string(op)}
}

// Function invokes a server-side routine.
func (c *Client) Function(ctx context.Context, name string, args ...string) ([]byte, error) {
	return nil, notImplemented(wire.CmdFunction)
}

// Lock acquires a lock on a node.
func (c *Client) Lock(ctx context.Context, addr wire.Address) (bool, error) {
	return false, notImplemented(wire.CmdLock)
}

// Unlock releases a lock on a node.
func (c *Client) Unlock(ctx context.Context, addr wire.Address) (bool, error) {
	return false, notImplemented(wire.CmdUnlock)
}

// MDate returns the gateway date.
func (c *Client) MDate(ctx context.Context) (string, error) {
	return "", notImplemented(wire.CmdMDate)
}

// Monitor streams the commands processed by the gateway.
func (c *Client) Monitor(ctx context.Context) error {
	return notImplemented(wire.CmdMonitor)
}

// MVersion returns the version of the M system behind the gateway.
func (c *Client) MVersion(ctx context.Context) (string, error) {
	return "", notImplemented(wire.CmdMVersion)
}

// Version returns the gateway version.
func (c *Client) Version(ctx context.Context) (string, error) {
	return "", notImplemented(wire.CmdVersion)
}

// TransactionStart opens a transaction.
func (c *Client) TransactionStart(ctx context.Context) error {
	return notImplemented(wire.CmdTStart)
}

// TransactionCommit commits the open transaction.
func (c *Client) TransactionCommit(ctx context.Context) error {
	return notImplemented(wire.CmdTCommit)
}

// TransactionRollback discards the open transaction.
func (c *Client) TransactionRollback(ctx context.Context) error {
	return notImplemented(wire.CmdTRollback)
}

// SetSubtree stores several descendants of addr at once.
func (c *Client) SetSubtree(ctx context.Context, addr wire.Address, items []SubValue) (bool, error) {
	return false, notImplemented(wire.CmdSetSubtree)
}
