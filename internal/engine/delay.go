package engine

import (
	"context"
	"math/rand/v2"
	"time"
)

// DelayPolicy decides how long a non-cached read blocks before returning,
// modeling the latency gap between a cache hit and a cold-storage fetch.
type DelayPolicy interface {
	// Wait blocks for the policy's chosen duration or until ctx is done.
	// It returns the duration actually waited.
	Wait(ctx context.Context) (time.Duration, error)
}

// UniformDelay blocks for a uniformly random duration in [Min, Max).
type UniformDelay struct {
	Min time.Duration
	Max time.Duration
}

// Wait implements DelayPolicy.
func (d UniformDelay) Wait(ctx context.Context) (time.Duration, error) {
	delay := d.Min
	if span := d.Max - d.Min; span > 0 {
		delay += time.Duration(rand.Int64N(int64(span)))
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-timer.C:
		return delay, nil
	}
}

// NoDelay never blocks. Intended for tests and tooling that should not
// pay the simulated cold-read penalty.
type NoDelay struct{}

// Wait implements DelayPolicy.
func (NoDelay) Wait(ctx context.Context) (time.Duration, error) {
	return 0, ctx.Err()
}
