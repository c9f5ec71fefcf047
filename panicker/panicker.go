// Package panicker provides the terminal sink used for conditions the
// lease manager cannot recover from: it must terminate the process rather
// than continue serving as a silently-unannounced or split-brained
// master.
package panicker

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/omid-ha/leasemanager/metrics"
)

// Panicker is invoked for unrecoverable conditions. Implementations must
// never return.
type Panicker interface {
	Panic(message string, cause error)
}

// Default logs at ERROR via the given logger and terminates the process.
// It's the Go analogue of Omid's FatalExceptionHandler: log first, then
// hand off to the terminal sink.
type Default struct {
	Logger zerolog.Logger
	// exit is overridable in tests so a Default can be exercised without
	// killing the test binary.
	exit func(code int)
}

// New returns a Default panicker that logs through logger and calls
// os.Exit(1).
func New(logger zerolog.Logger) *Default {
	return &Default{Logger: logger, exit: os.Exit}
}

// Panic implements Panicker. It logs at ERROR (not zerolog's Fatal level,
// whose built-in os.Exit hook would make the exit path untestable) and
// then terminates the process itself.
func (d *Default) Panic(message string, cause error) {
	d.Logger.Error().Err(cause).Bool("terminal", true).Msg(message)
	metrics.PanicTotal.WithLabelValues(causeLabel(cause)).Inc()
	exit := d.exit
	if exit == nil {
		exit = os.Exit
	}
	exit(1)
}

// causeLabel reduces cause to a low-cardinality metric label: its
// concrete type name, or "nil" if none was given.
func causeLabel(cause error) string {
	if cause == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", cause)
}

var _ Panicker = (*Default)(nil)
