// Package chain provides the monotonic height that governs phase
// admissibility. Heights come from an external counter, not wall clock; the
// engine never waits on time, it only compares against the current height.
package chain

import (
	"context"
	"sync/atomic"

	"dropforge/pkg/requestcontext"
)

// HeightSource reports the current external height.
type HeightSource interface {
	Current(ctx context.Context) uint64
}

// Counter is an in-process height source advanced by an operator endpoint or
// a follower process. It only moves forward.
type Counter struct {
	height atomic.Uint64
}

func NewCounter(start uint64) *Counter {
	c := &Counter{}
	c.height.Store(start)
	return c
}

func (c *Counter) Current(_ context.Context) uint64 {
	return c.height.Load()
}

// Advance moves the counter to target if target is ahead; returns the
// resulting height. Regressions are ignored so a lagging follower can never
// reopen an ended phase.
func (c *Counter) Advance(target uint64) uint64 {
	for {
		cur := c.height.Load()
		if target <= cur {
			return cur
		}
		if c.height.CompareAndSwap(cur, target) {
			return target
		}
	}
}

// At resolves the effective height for a request: a context override wins
// (tests, replays), otherwise the live source.
func At(ctx context.Context, src HeightSource) uint64 {
	if h, ok := requestcontext.Height(ctx); ok {
		return h
	}
	return src.Current(ctx)
}
