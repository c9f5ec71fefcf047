package leasemanager

import (
	"context"
	"fmt"
	"time"

	retry "github.com/vimeo/go-retry"

	"github.com/omid-ha/leasemanager/clock"
	"github.com/omid-ha/leasemanager/cs"
	"github.com/omid-ha/leasemanager/record"
)

// LocatorConfig configures a Locator, a client-side helper that watches
// the CURRENT record so a consumer (a proxy, a client library) can
// discover which replica currently holds the lease without racing for it
// itself. It only ever reads; it never contends for the lease.
type LocatorConfig struct {
	Gateway        cs.Gateway
	CurrentTSOPath string
	// Clock defaults to clock.Default() if nil.
	Clock clock.Clock
}

// Watch polls CurrentTSOPath and invokes cb once for every strictly
// increasing epoch it observes, backing off between polls when nothing
// has changed and resetting to a tight poll as soon as it sees new
// activity. It returns when ctx is done, or if a read ever fails or the
// record is malformed (a malformed CURRENT record means the CS namespace
// is corrupt, not that this particular poll should be retried).
func (l LocatorConfig) Watch(ctx context.Context, cb func(ctx context.Context, rec record.CurrentTSORecord)) error {
	b := retry.DefaultBackoff()
	// Mastership terms last on the order of a lease period, not
	// milliseconds; don't hammer the CS while nothing is changing.
	b.MinBackoff = time.Second

	c := l.Clock
	if c == nil {
		c = clock.Default()
	}

	highestEpoch := int64(-1)
	for {
		raw, err := l.Gateway.Read(ctx, l.CurrentTSOPath)
		if err != nil {
			return fmt.Errorf("locator: failed to read %q: %w", l.CurrentTSOPath, err)
		}
		parsed, ok, err := record.ParseCurrentTSORecord(raw.Value)
		if err != nil {
			return fmt.Errorf("locator: %w", err)
		}
		if ok && parsed.Epoch > highestEpoch {
			highestEpoch = parsed.Epoch
			cb(ctx, parsed)
			b.Reset()
		}
		if !c.SleepFor(ctx, b.Next()) {
			return ctx.Err()
		}
	}
}
