// Package leasemanager implements the lease-based master-election core:
// a periodic control loop that acquires and renews a lease held in a
// coordination service, initializes TSO state and publishes server
// coordinates on promotion, detects lease loss, and exposes a
// lock-free predicate the serving path consults before emitting any
// Master-authoritative response.
package leasemanager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/omid-ha/leasemanager/clock"
	"github.com/omid-ha/leasemanager/cs"
	"github.com/omid-ha/leasemanager/metrics"
	"github.com/omid-ha/leasemanager/panicker"
	"github.com/omid-ha/leasemanager/record"
	"github.com/omid-ha/leasemanager/state"
)

// Config configures a Controller.
type Config struct {
	// HostAndPort identifies this replica in LEASE and CURRENT payloads.
	HostAndPort string
	// LeasePeriodMs is the configured lease duration; must be positive.
	LeasePeriodMs int64
	// LeasePath and CurrentTSOPath are the CS paths for the LEASE and
	// CURRENT records.
	LeasePath      string
	CurrentTSOPath string

	Gateway      cs.Gateway
	StateManager state.Manager
	Panicker     panicker.Panicker

	// Clock defaults to clock.Default() if nil.
	Clock clock.Clock
	// Logger defaults to a disabled logger if the zero value.
	Logger zerolog.Logger
}

// Controller is the lease state machine (C6) plus the scheduler that
// drives it (C5) and the read-only view of mastership (C7).
type Controller struct {
	cfg   Config
	clock clock.Clock
	state *record.LocalLeaseState
	init  *asyncInitializer

	ctx    context.Context
	cancel context.CancelFunc
	loopWG chan struct{}
}

// New validates cfg and constructs a Controller in the NotMaster state.
func New(cfg Config) (*Controller, error) {
	if cfg.HostAndPort == "" {
		return nil, fmt.Errorf("leasemanager: missing HostAndPort")
	}
	if cfg.LeasePeriodMs <= 0 {
		return nil, fmt.Errorf("leasemanager: LeasePeriodMs (%d) must be positive", cfg.LeasePeriodMs)
	}
	if cfg.LeasePath == "" || cfg.CurrentTSOPath == "" {
		return nil, fmt.Errorf("leasemanager: LeasePath and CurrentTSOPath must both be set")
	}
	if cfg.Gateway == nil {
		return nil, fmt.Errorf("leasemanager: missing Gateway")
	}
	if cfg.StateManager == nil {
		return nil, fmt.Errorf("leasemanager: missing StateManager")
	}
	if cfg.Panicker == nil {
		return nil, fmt.Errorf("leasemanager: missing Panicker")
	}
	c := cfg.Clock
	if c == nil {
		c = clock.Default()
	}
	return &Controller{
		cfg:   cfg,
		clock: c,
		state: record.NewLocalLeaseState(cfg.HostAndPort, cfg.LeasePeriodMs),
		init:  newAsyncInitializer(cfg.Panicker),
	}, nil
}

// Start ensures the LEASE and CURRENT paths exist, then starts the
// scheduler loop on its own goroutine.
func (c *Controller) Start(ctx context.Context) error {
	setupCtx, setupCancel := context.WithTimeout(ctx, c.csDeadline())
	defer setupCancel()
	if err := c.cfg.Gateway.EnsurePath(setupCtx, c.cfg.LeasePath); err != nil {
		return &LeaseSetupError{Path: c.cfg.LeasePath, Err: err}
	}
	if err := c.cfg.Gateway.EnsurePath(setupCtx, c.cfg.CurrentTSOPath); err != nil {
		return &LeaseSetupError{Path: c.cfg.CurrentTSOPath, Err: err}
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	c.ctx = loopCtx
	c.cancel = cancel
	c.loopWG = make(chan struct{})
	go c.runLoop()
	return nil
}

// Stop requests scheduler termination, waits for the in-flight iteration
// (if any) to complete, and drains the async initialiser with a bounded
// timeout equal to one lease period. If the drain doesn't complete in
// time, it's escalated to the Panicker.
func (c *Controller) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	if c.loopWG != nil {
		<-c.loopWG
	}
	timeout := time.Duration(c.cfg.LeasePeriodMs) * time.Millisecond
	if !c.init.stop(timeout) {
		c.cfg.Panicker.Panic("async initialiser failed to drain on stop", fmt.Errorf("did not drain within %s", timeout))
	}
}

// InLeasePeriod is a lock-free, wait-free predicate the serving path must
// consult before emitting any Master-authoritative response.
func (c *Controller) InLeasePeriod() bool {
	return c.state.IsMaster(c.clock.NowMs())
}

func (c *Controller) runLoop() {
	defer close(c.loopWG)
	for {
		if c.ctx.Err() != nil {
			return
		}
		c.iterate()
		if c.ctx.Err() != nil {
			return
		}
		delay := c.nextFireDelay()
		if !c.clock.SleepFor(c.ctx, delay) {
			return
		}
	}
}

// iterate runs one control-loop tick: the transition predicate is
// InLeasePeriod(), evaluated at the start of the iteration.
func (c *Controller) iterate() {
	if !c.InLeasePeriod() {
		c.tryAcquire()
	} else {
		c.tryRenew()
	}
	if c.InLeasePeriod() {
		metrics.Mastership.Set(1)
	} else {
		metrics.Mastership.Set(0)
	}
}

// csDeadline bounds every CS operation to at most half the lease period,
// so that Stop()'s wait for an in-flight iteration to finish is itself
// bounded well under one lease period, and so a hung call can never by
// itself consume the whole period before demotion becomes possible.
func (c *Controller) csDeadline() time.Duration {
	return time.Duration(c.cfg.LeasePeriodMs/2) * time.Millisecond
}

func (c *Controller) csContext() (context.Context, context.CancelFunc) {
	parent := c.ctx
	if parent == nil {
		// The state-machine branches can be driven directly before Start
		// has created the scheduler's context.
		parent = context.Background()
	}
	return context.WithTimeout(parent, c.csDeadline())
}

// tryAcquire implements the NotMaster branch of the state machine.
func (c *Controller) tryAcquire() {
	c.state.BaseTimeMs = c.clock.NowMs()

	ctx, cancel := c.csContext()
	defer cancel()
	newVersion, err := c.cfg.Gateway.CASWrite(ctx, c.cfg.LeasePath, record.FormatLeaseRecord(c.state.HostAndPort), c.state.KnownLeaseVersion)
	switch {
	case err == nil:
		c.state.KnownLeaseVersion = newVersion
		c.state.SetEndLeaseMs(c.state.BaseTimeMs + c.state.LeasePeriodMs)
		c.cfg.Logger.Info().
			Str("host_and_port", c.state.HostAndPort).
			Int64("lease_version", newVersion).
			Int64("end_lease_ms", c.state.EndLeaseMs()).
			Msg("acquired lease, promoting to master")
		metrics.LeaseAcquireTotal.WithLabelValues("acquired").Inc()
		metrics.Mastership.Set(1)
		c.init.submit(c.promote)
	case errors.Is(err, cs.ErrVersionMismatch):
		// Another replica holds the lease. Not an error; remain
		// NotMaster with endLeaseMs still 0.
		metrics.LeaseAcquireTotal.WithLabelValues("version_mismatch").Inc()
	default:
		c.cfg.Logger.Warn().Err(err).Msg("transport error while trying to acquire lease")
		metrics.LeaseAcquireTotal.WithLabelValues("transport_error").Inc()
	}
}

// tryRenew implements the Master branch of the state machine.
func (c *Controller) tryRenew() {
	c.state.BaseTimeMs = c.clock.NowMs()

	ctx, cancel := c.csContext()
	defer cancel()
	newVersion, err := c.cfg.Gateway.CASWrite(ctx, c.cfg.LeasePath, record.FormatLeaseRecord(c.state.HostAndPort), c.state.KnownLeaseVersion)
	switch {
	case err == nil:
		if c.clock.NowMs() > c.state.EndLeaseMs() {
			// The renewal round-trip took so long that the lease
			// may have already lapsed in real time; don't claim
			// continuous ownership.
			c.state.Demote()
			c.cfg.Logger.Warn().
				Str("host_and_port", c.state.HostAndPort).
				Msg("expired lease during renewal round-trip, releasing to start master re-election")
			metrics.LeaseRenewTotal.WithLabelValues("stale").Inc()
			metrics.Mastership.Set(0)
			return
		}
		c.state.KnownLeaseVersion = newVersion
		c.state.SetEndLeaseMs(c.state.BaseTimeMs + c.state.LeasePeriodMs)
		metrics.LeaseRenewTotal.WithLabelValues("renewed").Inc()
	case errors.Is(err, cs.ErrVersionMismatch):
		c.state.Demote()
		c.cfg.Logger.Warn().
			Str("host_and_port", c.state.HostAndPort).
			Msg("lost the lease, another replica is now master")
		metrics.LeaseRenewTotal.WithLabelValues("version_mismatch").Inc()
		metrics.Mastership.Set(0)
	default:
		// Transport failure: logged here, and the scheduler retries on
		// its next tick. endLeaseMs is left untouched; the
		// replica only demotes when the deadline passes or it
		// proves it has lost the lease.
		c.cfg.Logger.Warn().Err(err).Msg("transport error while trying to renew lease")
		metrics.LeaseRenewTotal.WithLabelValues("transport_error").Inc()
	}
}

// nextFireDelay implements the spec's next-fire computation for C5.
func (c *Controller) nextFireDelay() time.Duration {
	if !c.InLeasePeriod() {
		ctx, cancel := c.csContext()
		defer cancel()
		rec, err := c.cfg.Gateway.Read(ctx, c.cfg.LeasePath)
		if err == nil {
			c.state.KnownLeaseVersion = rec.Version
		}
		// If the read failed, schedule at the full lease period
		// anyway and let the next iteration surface the error.
		return time.Duration(c.state.LeasePeriodMs) * time.Millisecond
	}
	waitMs := c.state.EndLeaseMs() - c.clock.NowMs() - c.state.GuardMs()
	if waitMs <= 0 {
		return 0
	}
	return time.Duration(waitMs) * time.Millisecond
}
