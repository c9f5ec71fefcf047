package clock

import (
	"context"
	"sync"
	"time"
)

// FakeClock implements Clock with primitives for skipping through
// timestamps in tests without actually sleeping.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	// sleepers maps a channel a sleeper is waiting on to its wakeup time.
	// When time advances past a sleeper's wakeup point its channel is
	// closed and it's removed from the map.
	sleepers map[chan<- struct{}]time.Time
	cond     sync.Cond
	wakeups  int
}

// NewFakeClock returns an initialized FakeClock.
func NewFakeClock(initial time.Time) *FakeClock {
	fc := &FakeClock{
		current:  initial,
		sleepers: map[chan<- struct{}]time.Time{},
	}
	fc.cond.L = &fc.mu
	return fc
}

func (f *FakeClock) setClockLocked(t time.Time) int {
	awoken := 0
	for ch, target := range f.sleepers {
		if target.Sub(t) <= 0 {
			close(ch)
			delete(f.sleepers, ch)
			awoken++
		}
	}
	f.wakeups += awoken
	f.current = t
	f.cond.Broadcast()
	return awoken
}

// SetClock skips the clock to t (forward or backward).
func (f *FakeClock) SetClock(t time.Time) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setClockLocked(t)
}

// Advance skips the clock forward by d (backward if negative).
func (f *FakeClock) Advance(d time.Duration) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setClockLocked(f.current.Add(d))
}

// NumSleepers returns the number of goroutines currently blocked in
// SleepFor/SleepUntil.
func (f *FakeClock) NumSleepers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sleepers)
}

// AwaitSleepers blocks until at least n goroutines are sleeping.
func (f *FakeClock) AwaitSleepers(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for len(f.sleepers) < n {
		f.cond.Wait()
	}
}

// Wakeups returns the number of sleepers woken so far.
func (f *FakeClock) Wakeups() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.wakeups
}

// Now implements Clock.
func (f *FakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// NowMs implements Clock.
func (f *FakeClock) NowMs() int64 {
	return f.Now().UnixMilli()
}

// Until implements Clock.
func (f *FakeClock) Until(t time.Time) time.Duration {
	return t.Sub(f.Now())
}

func (f *FakeClock) setAbsoluteWaiter(until time.Time) <-chan struct{} {
	ch := make(chan struct{})
	f.mu.Lock()
	defer f.mu.Unlock()
	if until.Sub(f.current) <= 0 {
		close(ch)
		return ch
	}
	f.sleepers[ch] = until
	f.cond.Broadcast()
	return ch
}

// SleepUntil implements Clock.
func (f *FakeClock) SleepUntil(ctx context.Context, until time.Time) bool {
	ch := f.setAbsoluteWaiter(until)
	select {
	case <-ch:
		return true
	case <-ctx.Done():
		return false
	}
}

func (f *FakeClock) setRelativeWaiter(d time.Duration) <-chan struct{} {
	ch := make(chan struct{})
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sleepers[ch] = f.current.Add(d)
	f.cond.Broadcast()
	return ch
}

// SleepFor implements Clock.
func (f *FakeClock) SleepFor(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	ch := f.setRelativeWaiter(d)
	select {
	case <-ch:
		return true
	case <-ctx.Done():
		return false
	}
}

var _ Clock = (*FakeClock)(nil)
