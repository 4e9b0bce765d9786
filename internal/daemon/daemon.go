// Package daemon runs the long-lived reconcile loop: one reconcile when a new
// release becomes retrievable, periodic eviction sweeps in between, and an
// external trigger channel for the watcher and the HTTP API.
package daemon

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/neoatlantis/na-gribtools/internal/resolver"
	"github.com/neoatlantis/na-gribtools/internal/schedule"
)

const defaultSweepInterval = time.Hour

// Daemon drives the resolver on the release calendar.
type Daemon struct {
	resolver      *resolver.Resolver
	sched         *schedule.Clock
	clk           clock.Clock
	sweepInterval time.Duration
	logger        *zap.Logger

	trigger chan struct{}
}

// Option tweaks daemon construction.
type Option func(*Daemon)

// WithClock substitutes the wall clock, for tests.
func WithClock(c clock.Clock) Option {
	return func(d *Daemon) { d.clk = c }
}

// WithSweepInterval overrides how often eviction sweeps run.
func WithSweepInterval(interval time.Duration) Option {
	return func(d *Daemon) { d.sweepInterval = interval }
}

// New creates the daemon.
func New(res *resolver.Resolver, sched *schedule.Clock, logger *zap.Logger, opts ...Option) *Daemon {
	d := &Daemon{
		resolver:      res,
		sched:         sched,
		clk:           clock.New(),
		sweepInterval: defaultSweepInterval,
		logger:        logger,
		trigger:       make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Trigger requests an out-of-schedule reconcile. Non-blocking; coalesces with
// a pending trigger.
func (d *Daemon) Trigger() {
	select {
	case d.trigger <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is cancelled. It reconciles immediately on start, then
// once every time a new release becomes retrievable, and sweeps on a fixed
// interval. Reconcile and sweep failures are logged and the loop carries on;
// only cancellation stops it.
func (d *Daemon) Run(ctx context.Context) error {
	d.reconcile(ctx)
	d.sweep(ctx)

	timer := d.clk.Timer(d.untilNextRelease())
	defer timer.Stop()
	ticker := d.clk.Ticker(d.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Daemon stopping")
			return ctx.Err()
		case <-timer.C:
			d.reconcile(ctx)
			timer.Reset(d.untilNextRelease())
		case <-ticker.C:
			d.sweep(ctx)
		case <-d.trigger:
			d.reconcile(ctx)
		}
	}
}

// untilNextRelease returns how long to sleep before the next release's data
// is expected. A floor of one second guards against a zero or negative wait
// right at the availability boundary.
func (d *Daemon) untilNextRelease() time.Duration {
	now := d.clk.Now()
	wait := d.sched.NextAvailableAfter(now).Sub(now)
	if wait < time.Second {
		wait = time.Second
	}
	return wait
}

func (d *Daemon) reconcile(ctx context.Context) {
	res, err := d.resolver.Reconcile(ctx, d.clk.Now())
	if err != nil {
		d.logger.Error("Reconcile pass failed", zap.Error(err))
		return
	}
	d.logger.Info("Reconcile pass done",
		zap.String("decision", string(res.Decision)),
		zap.Bool("built", res.Built),
		zap.Bool("in_progress", res.InProgress))
}

func (d *Daemon) sweep(ctx context.Context) {
	res, err := d.resolver.Sweep(ctx, d.clk.Now())
	if err != nil {
		d.logger.Error("Eviction sweep failed", zap.Error(err))
		return
	}
	if res.Evicted > 0 || res.Purged > 0 {
		d.logger.Info("Eviction sweep done",
			zap.Int("evicted", res.Evicted), zap.Int("purged", res.Purged))
	}
}
