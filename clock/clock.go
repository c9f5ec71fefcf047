// Package clock isolates the monotonic time source used by the lease
// manager so that its scheduling decisions can be driven deterministically
// in tests.
package clock

import (
	"context"
	"time"

	clocks "github.com/vimeo/go-clocks"
)

// Clock is the time source the lease controller and scheduler consult. It
// mirrors github.com/vimeo/go-clocks's Clock so a real clock, an offset
// clock (for clock-skew simulation) or a fake clock can be substituted.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// NowMs returns the current time in milliseconds, the unit the lease
	// data model is expressed in (lease windows cross process boundaries
	// via CS payloads and must be comparable that way).
	NowMs() int64
	// Until returns the duration remaining until t.
	Until(t time.Time) time.Duration
	// SleepFor blocks for d or until ctx is done, whichever comes first.
	// Returns false if it returned early because of ctx.
	SleepFor(ctx context.Context, d time.Duration) bool
	// SleepUntil blocks until t or until ctx is done, whichever comes
	// first. Returns false if it returned early because of ctx.
	SleepUntil(ctx context.Context, t time.Time) bool
}

// realClock adapts github.com/vimeo/go-clocks's Clock to the millisecond
// arithmetic the lease data model requires.
type realClock struct {
	inner clocks.Clock
}

// Default returns a Clock backed by the wall clock.
func Default() Clock {
	return &realClock{inner: clocks.DefaultClock()}
}

// Wrap adapts an existing github.com/vimeo/go-clocks.Clock (e.g. an
// offset.Clock used to simulate clock-skew between replicas in tests).
func Wrap(c clocks.Clock) Clock {
	return &realClock{inner: c}
}

func (r *realClock) Now() time.Time                     { return r.inner.Now() }
func (r *realClock) NowMs() int64                        { return r.inner.Now().UnixMilli() }
func (r *realClock) Until(t time.Time) time.Duration     { return r.inner.Until(t) }
func (r *realClock) SleepFor(ctx context.Context, d time.Duration) bool {
	return r.inner.SleepFor(ctx, d)
}
func (r *realClock) SleepUntil(ctx context.Context, t time.Time) bool {
	return r.inner.SleepUntil(ctx, t)
}

// MsToTime converts a millisecond timestamp (as stored in LocalLeaseState)
// back into a time.Time, for scheduling calls that need one.
func MsToTime(ms int64) time.Time {
	return time.UnixMilli(ms)
}
