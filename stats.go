package mwire

import (
	"sync/atomic"
)

// ClientStats contains statistics about client operations.
// All fields are safe for concurrent access.
//
// For Prometheus integration, see NewStatsCollector.
type ClientStats struct {
	Gets         uint64 // GET operations
	GetHits      uint64 // GET operations that returned a value (empty included)
	Sets         uint64 // SET operations
	Kills        uint64 // KILL operations
	Exists       uint64 // EXISTS operations
	Increments   uint64 // INCR/DECR family operations
	Traversals   uint64 // NEXT, PREVIOUS, QUERY and QUERYGET operations
	Enumerations uint64 // GETALLSUBS and GETSUBTREE operations
	Pings        uint64 // PING operations
	Connects     uint64 // connections established
	Disconnects  uint64 // connections closed, explicitly or after an I/O failure
	Errors       uint64 // operations that returned an error
}

// clientStatsCollector provides internal methods for updating client stats.
// Not exported - client updates its own stats.
type clientStatsCollector struct {
	stats ClientStats
}

func newClientStatsCollector() *clientStatsCollector {
	return &clientStatsCollector{}
}

func (c *clientStatsCollector) recordGet(found bool) {
	atomic.AddUint64(&c.stats.Gets, 1)
	if found {
		atomic.AddUint64(&c.stats.GetHits, 1)
	}
}

func (c *clientStatsCollector) recordSet() {
	atomic.AddUint64(&c.stats.Sets, 1)
}

func (c *clientStatsCollector) recordKill() {
	atomic.AddUint64(&c.stats.Kills, 1)
}

func (c *clientStatsCollector) recordExists() {
	atomic.AddUint64(&c.stats.Exists, 1)
}

func (c *clientStatsCollector) recordIncrement() {
	atomic.AddUint64(&c.stats.Increments, 1)
}

func (c *clientStatsCollector) recordTraversal() {
	atomic.AddUint64(&c.stats.Traversals, 1)
}

func (c *clientStatsCollector) recordEnumeration() {
	atomic.AddUint64(&c.stats.Enumerations, 1)
}

func (c *clientStatsCollector) recordPing() {
	atomic.AddUint64(&c.stats.Pings, 1)
}

func (c *clientStatsCollector) recordConnect() {
	atomic.AddUint64(&c.stats.Connects, 1)
}

func (c *clientStatsCollector) recordDisconnect() {
	atomic.AddUint64(&c.stats.Disconnects, 1)
}

func (c *clientStatsCollector) recordError() {
	atomic.AddUint64(&c.stats.Errors, 1)
}

func (c *clientStatsCollector) snapshot() ClientStats {
	return ClientStats{
		Gets:         atomic.LoadUint64(&c.stats.Gets),
		GetHits:      atomic.LoadUint64(&c.stats.GetHits),
		Sets:         atomic.LoadUint64(&c.stats.Sets),
		Kills:        atomic.LoadUint64(&c.stats.Kills),
		Exists:       atomic.LoadUint64(&c.stats.Exists),
		Increments:   atomic.LoadUint64(&c.stats.Increments),
		Traversals:   atomic.LoadUint64(&c.stats.Traversals),
		Enumerations: atomic.LoadUint64(&c.stats.Enumerations),
		Pings:        atomic.LoadUint64(&c.stats.Pings),
		Connects:     atomic.LoadUint64(&c.stats.Connects),
		Disconnects:  atomic.LoadUint64(&c.stats.Disconnects),
		Errors:       atomic.LoadUint64(&c.stats.Errors),
	}
}
