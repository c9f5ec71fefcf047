package leasemanager

import (
	"context"
	"testing"
	"time"

	"github.com/omid-ha/leasemanager/cs"
	"github.com/omid-ha/leasemanager/state"
)

// pollUntil polls fn (in real wall-clock time, independent of any fake
// clock under test) until it returns true or timeout elapses.
func pollUntil(t *testing.T, timeout time.Duration, fn func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		if fn() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %s", timeout)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func readRecord(t *testing.T, gw cs.Gateway, path string) cs.Record {
	t.Helper()
	rec, err := gw.Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read(%q): %v", path, err)
	}
	return rec
}

// fixedEpochStateManager always resets to the same epoch, used to
// simulate a broken (non-monotonic) state collaborator.
type fixedEpochStateManager struct {
	epoch int64
}

func (f fixedEpochStateManager) Reset(ctx context.Context) (state.State, error) {
	return state.State{Epoch: f.epoch}, nil
}

var _ state.Manager = fixedEpochStateManager{}
