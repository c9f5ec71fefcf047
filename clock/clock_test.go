package clock

import (
	"context"
	"testing"
	"time"
)

func TestFakeClockNowMs(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fc := NewFakeClock(base)
	if got, want := fc.NowMs(), base.UnixMilli(); got != want {
		t.Fatalf("NowMs() = %d, want %d", got, want)
	}
	fc.Advance(1500 * time.Millisecond)
	if got, want := fc.NowMs(), base.Add(1500*time.Millisecond).UnixMilli(); got != want {
		t.Fatalf("after advance NowMs() = %d, want %d", got, want)
	}
}

func TestFakeClockSleepUntilWakesOnAdvance(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fc := NewFakeClock(base)
	ctx := context.Background()

	done := make(chan bool, 1)
	go func() {
		done <- fc.SleepUntil(ctx, base.Add(time.Second))
	}()

	fc.AwaitSleepers(1)
	fc.Advance(2 * time.Second)

	select {
	case woke := <-done:
		if !woke {
			t.Fatalf("SleepUntil returned false, want true (woken by clock advance)")
		}
	case <-time.After(time.Second):
		t.Fatal("SleepUntil never returned")
	}
	if fc.Wakeups() != 1 {
		t.Fatalf("Wakeups() = %d, want 1", fc.Wakeups())
	}
}

func TestFakeClockSleepForCancelledByContext(t *testing.T) {
	fc := NewFakeClock(time.Now())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan bool, 1)
	go func() {
		done <- fc.SleepFor(ctx, time.Hour)
	}()
	fc.AwaitSleepers(1)
	cancel()

	select {
	case woke := <-done:
		if woke {
			t.Fatalf("SleepFor returned true, want false (cancelled)")
		}
	case <-time.After(time.Second):
		t.Fatal("SleepFor never returned")
	}
}
