package leasemanager

import (
	"context"
	"testing"
	"time"

	"github.com/omid-ha/leasemanager/clock"
	"github.com/omid-ha/leasemanager/cs/memkv"
	"github.com/omid-ha/leasemanager/record"
)

func TestLocatorWatchReportsEachNewEpochOnce(t *testing.T) {
	gw := memkv.New()
	ctx := context.Background()
	if err := gw.EnsurePath(ctx, "/current"); err != nil {
		t.Fatalf("EnsurePath: %v", err)
	}
	first := record.CurrentTSORecord{HostAndPort: "host-a:1", Epoch: 0}
	if _, err := gw.CASWrite(ctx, "/current", first.Format(), 0); err != nil {
		t.Fatalf("seed CASWrite: %v", err)
	}

	fc := clock.NewFakeClock(epoch)
	loc := LocatorConfig{Gateway: gw, CurrentTSOPath: "/current", Clock: fc}

	seen := make(chan record.CurrentTSORecord, 8)
	watchCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- loc.Watch(watchCtx, func(_ context.Context, rec record.CurrentTSORecord) {
			seen <- rec
		})
	}()

	select {
	case rec := <-seen:
		if rec != first {
			t.Fatalf("first observed record = %+v, want %+v", rec, first)
		}
	case <-time.After(time.Second):
		t.Fatal("did not observe the initial record")
	}

	fc.AwaitSleepers(1)

	second := record.CurrentTSORecord{HostAndPort: "host-b:2", Epoch: 1}
	if _, err := gw.CASWrite(ctx, "/current", second.Format(), 1); err != nil {
		t.Fatalf("second CASWrite: %v", err)
	}
	fc.Advance(2 * time.Second)

	select {
	case rec := <-seen:
		if rec != second {
			t.Fatalf("second observed record = %+v, want %+v", rec, second)
		}
	case <-time.After(time.Second):
		t.Fatal("did not observe the second record")
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancellation")
	}
}
