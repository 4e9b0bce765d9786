package interfaces

import (
	"context"

	"github.com/neoatlantis/na-gribtools/internal/models"
)

//go:generate mockgen -package=mock -source=archive_index.go -destination=mock/archive_index.go

// ArchiveIndex is the gateway to the persisted per-release metadata and the
// artifacts it points at. Implementations must make WriteEntry an atomic
// replace and must report unreadable metadata as models.ErrCorruptEntry.
type ArchiveIndex interface {
	// ReadEntry returns the entry for the given release, or nil when absent.
	ReadEntry(ctx context.Context, release models.ReleaseInstant) (*models.ArchiveEntry, error)

	// WriteEntry atomically creates or replaces the entry for its release.
	WriteEntry(ctx context.Context, entry models.ArchiveEntry) error

	// DeleteEntry removes the entry's metadata and on-disk artifact.
	// Deleting an absent entry is not an error.
	DeleteEntry(ctx context.Context, release models.ReleaseInstant) error

	// ListEntries returns all known entries in release order.
	ListEntries(ctx context.Context) ([]models.ArchiveEntry, error)
}
