package models

import "time"

// BuildStatus describes the lifecycle state of a stored archive entry.
type BuildStatus string

const (
	BuildStatusInProgress BuildStatus = "IN_PROGRESS"
	BuildStatusComplete   BuildStatus = "COMPLETE"
	BuildStatusFailed     BuildStatus = "FAILED"
)

// ArchiveEntry is the persisted metadata for one locally built cache
// generation, keyed by its release instant. At most one entry exists per
// release instant; a new build for the same instant replaces it.
type ArchiveEntry struct {
	Release      ReleaseInstant `json:"release"`
	Fingerprint  string         `json:"fingerprint"`
	Status       BuildStatus    `json:"status"`
	BuildID      string         `json:"build_id"`
	ArtifactPath string         `json:"artifact_path,omitempty"`
	SizeBytes    int64          `json:"size_bytes,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
}

// Reusable reports whether the entry may ever be served without a rebuild.
// Only a COMPLETE entry qualifies; fingerprint and retention checks come on
// top of this.
func (e *ArchiveEntry) Reusable() bool {
	return e != nil && e.Status == BuildStatusComplete
}

// ArtifactInfo is what a successful build hands back to the resolver.
type ArtifactInfo struct {
	Path          string
	SizeBytes     int64
	PayloadSHA256 string
}

// ResourceRef identifies one raw dataset file at the publisher: one
// variable of one model run, forecast a given number of hours ahead.
type ResourceRef struct {
	Release    ReleaseInstant
	VariableID string
	Step       int
}
