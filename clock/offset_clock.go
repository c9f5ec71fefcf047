package clock

import (
	"time"

	clocks "github.com/vimeo/go-clocks"
	"github.com/vimeo/go-clocks/offset"
)

// NewOffsetClock returns a Clock that reads inner's time shifted by a
// constant offset, for simulating clock-skew between replicas in tests:
// a scheduler driven by a clock that runs ahead of or behind the wall
// clock the rest of the fleet uses still has to make correct
// acquire/renew decisions, since nothing in the lease protocol assumes
// synchronized clocks beyond the guard interval.
func NewOffsetClock(inner clocks.Clock, timeOffset time.Duration) Clock {
	return Wrap(offset.NewOffsetClock(inner, timeOffset))
}
