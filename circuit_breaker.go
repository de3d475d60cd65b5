package mwire

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/pior/mwire/wire"
)

// CircuitBreaker guards round trips to the gateway.
// *gobreaker.CircuitBreaker[bool] implements it.
type CircuitBreaker interface {
	Execute(req func() (bool, error)) (bool, error)
	State() gobreaker.State
}

var _ CircuitBreaker = (*gobreaker.CircuitBreaker[bool])(nil)

// NewCircuitBreaker returns a circuit breaker suitable for Config.CircuitBreaker.
//
// Only errors that break the connection (see wire.ShouldCloseConnection)
// count as failures: an error frame from the gateway means it is alive.
// Requests canceled by the caller are not counted against the gateway.
// While open, operations fail with gobreaker.ErrOpenState without any I/O.
func NewCircuitBreaker(name string, maxRequests uint32, interval, timeout time.Duration) *gobreaker.CircuitBreaker[bool] {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: maxRequests,
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			if errors.Is(err, context.Canceled) {
				return true
			}
			return !wire.ShouldCloseConnection(err)
		},
	}
	return gobreaker.NewCircuitBreaker[bool](settings)
}
