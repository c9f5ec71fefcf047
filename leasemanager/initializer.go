package leasemanager

import (
	"fmt"
	"sync"
	"time"

	"github.com/omid-ha/leasemanager/panicker"
)

// asyncInitializer is a single-threaded work queue that runs the
// promotion job (state reset + coordinate publication) off the
// scheduler's goroutine, so a slow state reset never blocks a renewal.
// Capacity 1 is sufficient: correct operation submits at most one
// promotion per acquisition, and this replica's own lifetime sees at
// most one outstanding promotion at a time.
type asyncInitializer struct {
	jobs     chan func()
	wg       sync.WaitGroup
	panicker panicker.Panicker
}

func newAsyncInitializer(p panicker.Panicker) *asyncInitializer {
	ai := &asyncInitializer{
		jobs:     make(chan func(), 1),
		panicker: p,
	}
	ai.wg.Add(1)
	go ai.loop()
	return ai
}

func (ai *asyncInitializer) loop() {
	defer ai.wg.Done()
	for job := range ai.jobs {
		ai.runJob(job)
	}
}

func (ai *asyncInitializer) runJob(job func()) {
	defer func() {
		if r := recover(); r != nil {
			ai.panicker.Panic("uncaught panic in async initializer", fmt.Errorf("%v", r))
		}
	}()
	job()
}

// submit enqueues job for execution on the worker goroutine. It never
// blocks: under correct operation the queue never has more than one
// pending job, but a submission made while another job is already
// waiting in the queue (not merely running) is dropped rather than
// allowed to stall the scheduler, since a second promotion within
// one lease period would itself indicate a lease-management bug rather
// than useful work.
func (ai *asyncInitializer) submit(job func()) {
	select {
	case ai.jobs <- job:
	default:
	}
}

// stop closes the queue and waits up to timeout for the worker to drain.
// Returns false if the drain didn't complete in time.
func (ai *asyncInitializer) stop(timeout time.Duration) bool {
	close(ai.jobs)
	done := make(chan struct{})
	go func() {
		ai.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
