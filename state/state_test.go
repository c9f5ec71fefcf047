package state

import (
	"context"
	"testing"
)

func TestInMemoryManagerEpochsAreMonotonic(t *testing.T) {
	m := NewInMemoryManager()
	ctx := context.Background()
	var prev int64 = -1
	for i := 0; i < 5; i++ {
		s, err := m.Reset(ctx)
		if err != nil {
			t.Fatalf("Reset: %v", err)
		}
		if s.Epoch <= prev {
			t.Fatalf("epoch %d did not increase past previous %d", s.Epoch, prev)
		}
		prev = s.Epoch
	}
}
