package models

import "errors"

// Error taxonomy. Only ErrConfig ever surfaces to the operator; the rest are
// recovered inside the resolver and turned into rebuild decisions.
var (
	// ErrConfig marks an invalid configuration relationship (e.g.
	// archive-life not exceeding the availability delay). Fatal at startup,
	// never silently clamped.
	ErrConfig = errors.New("invalid configuration")

	// ErrFetch marks a failed remote resource download after retries.
	ErrFetch = errors.New("resource fetch failed")

	// ErrStaleBuild marks an IN_PROGRESS entry older than the bounded
	// stale-build threshold, i.e. a crashed build.
	ErrStaleBuild = errors.New("stale in-progress build")

	// ErrCorruptEntry marks unreadable or malformed entry metadata; treated
	// the same as a missing entry.
	ErrCorruptEntry = errors.New("corrupt archive entry")
)
