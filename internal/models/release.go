package models

import (
	"fmt"
	"time"
)

// releaseIdentifierLayout is the YYYYMMDDHH form used in artifact file
// names and download URLs, e.g. "2017120300" for the 2017-12-03 00:00 UTC run.
const releaseIdentifierLayout = "2006010215"

// ReleaseInstant is a point on the publisher's nominal release grid
// (UTC-day aligned). Immutable once identified.
type ReleaseInstant struct {
	time.Time
}

// NewReleaseInstant wraps a nominal release time, normalized to UTC.
func NewReleaseInstant(t time.Time) ReleaseInstant {
	return ReleaseInstant{t.UTC()}
}

// Identifier returns the YYYYMMDDHH identifier of the release.
func (r ReleaseInstant) Identifier() string {
	return r.UTC().Format(releaseIdentifierLayout)
}

// RunHour returns the zero-padded UTC hour of the model run ("00", "06", ...).
func (r ReleaseInstant) RunHour() string {
	return r.UTC().Format("15")
}

// ParseReleaseIdentifier parses a YYYYMMDDHH identifier back into a
// ReleaseInstant.
func ParseReleaseIdentifier(id string) (ReleaseInstant, error) {
	t, err := time.ParseInLocation(releaseIdentifierLayout, id, time.UTC)
	if err != nil {
		return ReleaseInstant{}, fmt.Errorf("invalid release identifier %q: %w", id, err)
	}
	return ReleaseInstant{t}, nil
}
