package mwire

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientStatsCollector(t *testing.T) {
	c := newClientStatsCollector()

	c.recordGet(true)
	c.recordGet(false)
	c.recordSet()
	c.recordKill()
	c.recordExists()
	c.recordIncrement()
	c.recordTraversal()
	c.recordEnumeration()
	c.recordPing()
	c.recordConnect()
	c.recordDisconnect()
	c.recordError()

	assert.Equal(t, ClientStats{
		Gets:         2,
		GetHits:      1,
		Sets:         1,
		Kills:        1,
		Exists:       1,
		Increments:   1,
		Traversals:   1,
		Enumerations: 1,
		Pings:        1,
		Connects:     1,
		Disconnects:  1,
		Errors:       1,
	}, c.snapshot())
}

func TestClientStatsCollector_Concurrent(t *testing.T) {
	c := newClientStatsCollector()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				c.recordGet(true)
				c.recordError()
				_ = c.snapshot()
			}
		}()
	}
	wg.Wait()

	stats := c.snapshot()
	assert.Equal(t, uint64(1000), stats.Gets)
	assert.Equal(t, uint64(1000), stats.GetHits)
	assert.Equal(t, uint64(1000), stats.Errors)
}
