// Package retention decides how long a built archive stays usable: an entry
// lives in the half-open window [release, release+archiveLife) measured from
// its nominal release instant, not from when it was fetched.
package retention

import (
	"fmt"
	"time"

	"github.com/neoatlantis/na-gribtools/internal/models"
)

// Policy applies the archive-life window. Pure and stateless.
type Policy struct {
	archiveLife time.Duration
}

// NewPolicy validates the relationship between archive life and the
// schedule. archiveLife must exceed the availability delay, otherwise an
// artifact would already be expired at the moment it first becomes
// retrievable; that is a configuration fault to surface at startup, not to
// clamp.
func NewPolicy(archiveLife, cadence, delay time.Duration) (*Policy, error) {
	if archiveLife <= 0 {
		return nil, fmt.Errorf("%w: archive-life must be positive, got %s", models.ErrConfig, archiveLife)
	}
	if archiveLife <= delay {
		return nil, fmt.Errorf("%w: archive-life %s must exceed the availability delay %s",
			models.ErrConfig, archiveLife, delay)
	}
	if cadence < 0 {
		return nil, fmt.Errorf("%w: release cadence must not be negative, got %s", models.ErrConfig, cadence)
	}
	return &Policy{archiveLife: archiveLife}, nil
}

// ArchiveLife returns the configured retention window length.
func (p *Policy) ArchiveLife() time.Duration { return p.archiveLife }

// IsRetained reports whether an artifact for the given release is still
// inside its retention window at now. The window is half-open: at exactly
// release+archiveLife the artifact is already expired.
func (p *Policy) IsRetained(release models.ReleaseInstant, now time.Time) bool {
	return now.Before(release.Add(p.archiveLife))
}

// EvictionCandidates returns the entries whose retention window has closed.
func (p *Policy) EvictionCandidates(entries []models.ArchiveEntry, now time.Time) []models.ArchiveEntry {
	var out []models.ArchiveEntry
	for _, e := range entries {
		if !p.IsRetained(e.Release, now) {
			out = append(out, e)
		}
	}
	return out
}

// StaleArtifactBefore returns the run-time cutoff for purging orphaned
// staging and raw download files: anything from a run older than this is
// garbage regardless of index state.
func (p *Policy) StaleArtifactBefore(now time.Time) time.Time {
	return now.Add(-p.archiveLife)
}
