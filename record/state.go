package record

import "sync/atomic"

// LocalLeaseState is the process-local view of the replica's mastership.
// endLeaseMs is written only by the scheduler's goroutine and read by
// serving goroutines, so it's kept behind an atomic int64; every other
// field is single-writer and needs no synchronization.
type LocalLeaseState struct {
	// HostAndPort identifies this replica in LEASE and CURRENT payloads.
	HostAndPort string
	// LeasePeriodMs is the configured lease duration.
	LeasePeriodMs int64
	// KnownLeaseVersion is the CAS pre-condition for the next LEASE write:
	// the version returned by the most recent successful write, or
	// observed by the most recent existence check, whichever is later.
	KnownLeaseVersion int64
	// BaseTimeMs is the wall time at the start of the most recent
	// acquire/renew attempt.
	BaseTimeMs int64

	endLeaseMs atomic.Int64
}

// NewLocalLeaseState constructs a LocalLeaseState for a fresh, not-Master
// replica.
func NewLocalLeaseState(hostAndPort string, leasePeriodMs int64) *LocalLeaseState {
	return &LocalLeaseState{
		HostAndPort:   hostAndPort,
		LeasePeriodMs: leasePeriodMs,
	}
}

// GuardMs is the safety margin subtracted from renewal deadlines:
// leasePeriodMs / 4, tolerating three back-to-back failed renewal
// attempts within one lease period.
func (s *LocalLeaseState) GuardMs() int64 {
	return s.LeasePeriodMs / 4
}

// EndLeaseMs returns the current end-of-lease timestamp. Zero means the
// replica is not-Master from its own point of view.
func (s *LocalLeaseState) EndLeaseMs() int64 {
	return s.endLeaseMs.Load()
}

// SetEndLeaseMs raises or clears the end-of-lease timestamp. The only
// legitimate way to raise it is after a successful CAS write on LEASE;
// callers are responsible for that ordering (the write happens-before
// this call).
func (s *LocalLeaseState) SetEndLeaseMs(v int64) {
	s.endLeaseMs.Store(v)
}

// IsMaster reports whether now is within the current lease window.
func (s *LocalLeaseState) IsMaster(nowMs int64) bool {
	return nowMs <= s.EndLeaseMs()
}

// Demote zeroes the end-of-lease timestamp, the sole not-Master marker.
func (s *LocalLeaseState) Demote() {
	s.endLeaseMs.Store(0)
}
