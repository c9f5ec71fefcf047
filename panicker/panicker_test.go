package panicker

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultPanicCallsExit(t *testing.T) {
	d := New(zerolog.Nop())
	var exitCode int
	exited := false
	d.exit = func(code int) {
		exited = true
		exitCode = code
	}

	d.Panic("boom", errors.New("cause"))

	if !exited {
		t.Fatal("Panic did not call exit")
	}
	if exitCode != 1 {
		t.Fatalf("exitCode = %d, want 1", exitCode)
	}
}

func TestRecordingCapturesCalls(t *testing.T) {
	r := &Recording{}
	if r.Called() {
		t.Fatal("Called() = true before any Panic call")
	}
	cause := errors.New("split brain")
	r.Panic("split brain detected", cause)

	if !r.Called() {
		t.Fatal("Called() = false after Panic call")
	}
	calls := r.Calls()
	if len(calls) != 1 || calls[0].Message != "split brain detected" || calls[0].Cause != cause {
		t.Fatalf("Calls() = %+v, unexpected", calls)
	}
}
