// Package state defines the TSO state-engine contract the lease manager
// depends on but does not implement: resetting it mints a fresh epoch
// that uniquely names the new mastership term.
package state

import "context"

// State is the result of a Reset: a fresh epoch, uniquely naming a
// mastership term.
type State struct {
	Epoch int64
}

// Manager resets TSO in-memory state on promotion. Reset may block (it
// runs off the scheduler's goroutine, in the async initialiser) and may
// fail, in which case the promotion job fails.
type Manager interface {
	Reset(ctx context.Context) (State, error)
}

// InMemoryManager is a reference Manager that hands out a strictly
// increasing epoch on each Reset. It's sufficient for the CLI's
// single-process demo mode and for tests; a real deployment would back
// this with whatever durably persists the TSO's transaction log position.
type InMemoryManager struct {
	next int64
}

// NewInMemoryManager returns a Manager whose first Reset mints epoch 0.
func NewInMemoryManager() *InMemoryManager {
	return &InMemoryManager{}
}

// Reset implements Manager.
func (m *InMemoryManager) Reset(ctx context.Context) (State, error) {
	epoch := m.next
	m.next++
	return State{Epoch: epoch}, nil
}

var _ Manager = (*InMemoryManager)(nil)
