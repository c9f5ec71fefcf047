package record

import "testing"

func TestLocalLeaseStateInvariants(t *testing.T) {
	s := NewLocalLeaseState("a:1", 10000)
	if s.EndLeaseMs() != 0 {
		t.Fatalf("fresh state EndLeaseMs() = %d, want 0", s.EndLeaseMs())
	}
	if s.IsMaster(1) {
		t.Fatalf("fresh state should not be Master")
	}
	if got, want := s.GuardMs(), int64(2500); got != want {
		t.Fatalf("GuardMs() = %d, want %d", got, want)
	}

	s.BaseTimeMs = 1000
	s.SetEndLeaseMs(s.BaseTimeMs + s.LeasePeriodMs)
	if !s.IsMaster(1000) || !s.IsMaster(11000) {
		t.Fatalf("expected Master at boundary and before")
	}
	if s.IsMaster(11001) {
		t.Fatalf("should not be Master just past endLeaseMs")
	}

	s.Demote()
	if s.EndLeaseMs() != 0 || s.IsMaster(1000) {
		t.Fatalf("Demote() did not zero endLeaseMs")
	}
}
