// Package schedule models the publisher's release calendar: nominal release
// instants on a fixed UTC-aligned cadence, each becoming retrievable only
// after a post-release availability delay.
package schedule

import (
	"fmt"
	"iter"
	"time"

	"github.com/neoatlantis/na-gribtools/internal/models"
)

// Clock computes release instants from the configured cadence and delay.
// Pure and stateless; safe to share across goroutines.
type Clock struct {
	cadence  time.Duration
	delay    time.Duration
	earliest time.Time
}

// NewClock validates the schedule parameters. The cadence must be a positive
// whole number of hours that divides a day evenly, so the release grid stays
// aligned to 00 UTC; the delay must not be negative. earliest, when non-zero,
// is the floor below which no release is considered to exist.
func NewClock(cadence, delay time.Duration, earliest time.Time) (*Clock, error) {
	if cadence <= 0 {
		return nil, fmt.Errorf("%w: release cadence must be positive, got %s", models.ErrConfig, cadence)
	}
	if cadence%time.Hour != 0 {
		return nil, fmt.Errorf("%w: release cadence must be a whole number of hours, got %s", models.ErrConfig, cadence)
	}
	if (24*time.Hour)%cadence != 0 {
		return nil, fmt.Errorf("%w: release cadence %s does not divide 24h evenly", models.ErrConfig, cadence)
	}
	if delay < 0 {
		return nil, fmt.Errorf("%w: availability delay must not be negative, got %s", models.ErrConfig, delay)
	}
	return &Clock{cadence: cadence, delay: delay, earliest: earliest.UTC()}, nil
}

// Cadence returns the interval between nominal releases.
func (c *Clock) Cadence() time.Duration { return c.cadence }

// Delay returns the availability delay after a nominal release.
func (c *Clock) Delay() time.Duration { return c.delay }

// MostRecentAvailable returns the greatest nominal release instant r with
// r+delay <= now. The second return value is false when no release is
// available yet; that is an ordinary result callers must handle, not an
// error.
func (c *Clock) MostRecentAvailable(now time.Time) (models.ReleaseInstant, bool) {
	r := now.UTC().Add(-c.delay).Truncate(c.cadence)
	if !c.earliest.IsZero() && r.Before(c.earliest) {
		return models.ReleaseInstant{}, false
	}
	return models.NewReleaseInstant(r), true
}

// ReleasesSince yields the nominal release instants in ascending order,
// starting at the first grid point at or after start, up to the most recent
// one whose data is available at now. The sequence is finite and restartable.
func (c *Clock) ReleasesSince(start, now time.Time) iter.Seq[models.ReleaseInstant] {
	first := start.UTC().Truncate(c.cadence)
	if first.Before(start.UTC()) {
		first = first.Add(c.cadence)
	}
	if !c.earliest.IsZero() && first.Before(c.earliest) {
		first = c.earliest.Truncate(c.cadence)
		if first.Before(c.earliest) {
			first = first.Add(c.cadence)
		}
	}
	return func(yield func(models.ReleaseInstant) bool) {
		for r := first; !r.Add(c.delay).After(now.UTC()); r = r.Add(c.cadence) {
			if !yield(models.NewReleaseInstant(r)) {
				return
			}
		}
	}
}

// NextAvailableAfter returns the instant at which the next release becomes
// retrievable, i.e. the first r+delay strictly after now. Drives the
// daemon's reconcile timer.
func (c *Clock) NextAvailableAfter(now time.Time) time.Time {
	r := now.UTC().Add(-c.delay).Truncate(c.cadence).Add(c.cadence)
	if !c.earliest.IsZero() && r.Before(c.earliest) {
		r = c.earliest.Truncate(c.cadence)
		if r.Before(c.earliest) {
			r = r.Add(c.cadence)
		}
	}
	return r.Add(c.delay)
}
