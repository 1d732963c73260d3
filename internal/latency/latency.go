// Package latency provides injectable artificial delays for the product
// repository. Production wiring uses None; demos and tests choose Fixed or
// Random to exercise loading states.
//
// Package latency 为产品仓库提供可注入的人工延迟。
package latency

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Delayer pauses before a repository call completes.
// Delay returns ctx.Err() if the context ends first.
type Delayer interface {
	Delay(ctx context.Context) error
}

// DelayerFunc adapts a function to Delayer.
type DelayerFunc func(ctx context.Context) error

// Delay implements Delayer.
func (f DelayerFunc) Delay(ctx context.Context) error {
	return f(ctx)
}

// None returns a Delayer that never waits.
func None() Delayer {
	return DelayerFunc(func(ctx context.Context) error {
		return ctx.Err()
	})
}

// Fixed returns a Delayer that always waits d.
func Fixed(d time.Duration) Delayer {
	return DelayerFunc(func(ctx context.Context) error {
		return sleep(ctx, d)
	})
}

// Random waits a uniformly distributed duration in [min, max].
type Random struct {
	min, max time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandom creates a Random delayer. A nil source seeds from the clock.
// If max is smaller than min the bounds are swapped.
func NewRandom(min, max time.Duration, src rand.Source) *Random {
	if max < min {
		min, max = max, min
	}
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Random{min: min, max: max, rnd: rand.New(src)}
}

// Next returns the next delay without waiting.
func (r *Random) Next() time.Duration {
	span := int64(r.max - r.min)
	if span <= 0 {
		return r.min
	}
	r.mu.Lock()
	n := r.rnd.Int63n(span + 1)
	r.mu.Unlock()
	return r.min + time.Duration(n)
}

// Delay implements Delayer.
func (r *Random) Delay(ctx context.Context) error {
	return sleep(ctx, r.Next())
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
