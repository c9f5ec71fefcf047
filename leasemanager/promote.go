package leasemanager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/omid-ha/leasemanager/cs"
	"github.com/omid-ha/leasemanager/metrics"
	"github.com/omid-ha/leasemanager/record"
)

// promote runs on the async initialiser's goroutine, never on the
// scheduler's: it resets TSO state and publishes this replica's
// coordinates, and it must never block a renewal. It uses its own
// deadline (one lease period) rather than the scheduler's context, so
// that a Stop() racing an in-flight promotion doesn't turn a legitimate
// in-progress job into a spurious Panicker escalation; the initialiser's
// own drain timeout in Stop is what bounds how long that's tolerated.
// Each CS call inside the job is further bounded by csDeadline.
func (c *Controller) promote() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(c.cfg.LeasePeriodMs)*time.Millisecond)
	defer cancel()
	timer := prometheus.NewTimer(metrics.PromoteDuration)
	defer timer.ObserveDuration()

	newState, err := c.cfg.StateManager.Reset(ctx)
	if err != nil {
		c.cfg.Panicker.Panic("failed to reset TSO state during promotion", err)
		return
	}

	readCtx, readCancel := context.WithTimeout(ctx, c.csDeadline())
	rec, err := c.cfg.Gateway.Read(readCtx, c.cfg.CurrentTSOPath)
	readCancel()
	if err != nil {
		c.cfg.Panicker.Panic("failed to read current-tso record during promotion", err)
		return
	}

	prev, hadPrev, parseErr := record.ParseCurrentTSORecord(rec.Value)
	if parseErr != nil {
		c.cfg.Panicker.Panic("current-tso record is corrupt", parseErr)
		return
	}
	if hadPrev && prev.Epoch > newState.Epoch {
		c.cfg.Panicker.Panic("epoch regression detected during promotion", &EpochRegressionError{
			PreviousEpoch: prev.Epoch,
			NewEpoch:      newState.Epoch,
		})
		return
	}

	newRecord := record.CurrentTSORecord{HostAndPort: c.cfg.HostAndPort, Epoch: newState.Epoch}
	writeCtx, writeCancel := context.WithTimeout(ctx, c.csDeadline())
	_, err = c.cfg.Gateway.CASWrite(writeCtx, c.cfg.CurrentTSOPath, newRecord.Format(), rec.Version)
	writeCancel()
	switch {
	case err == nil:
		c.cfg.Logger.Info().
			Str("host_and_port", c.cfg.HostAndPort).
			Int64("epoch", newState.Epoch).
			Msg("published current-tso record")
		metrics.Epoch.Set(float64(newState.Epoch))
	case errors.Is(err, cs.ErrVersionMismatch):
		c.cfg.Panicker.Panic("split brain: current-tso record changed underneath us during promotion",
			&SplitBrainError{Reason: fmt.Sprintf("CAS on %q failed at version %d", c.cfg.CurrentTSOPath, rec.Version)})
	default:
		c.cfg.Panicker.Panic("failed to publish current-tso record", err)
	}
}
