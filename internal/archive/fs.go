// Package archive persists the per-release metadata index and the built
// ICONDB artifacts under the working directory. Two index backends exist:
// JSON sidecar files (default) and an embedded sqlite database; artifacts
// live on disk either way.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/neoatlantis/na-gribtools/internal/interfaces"
	"github.com/neoatlantis/na-gribtools/internal/models"
)

const (
	indexDirName    = "icondb"
	downloadDirName = "downloads"
	artifactSuffix  = ".icondb"
	metaSuffix      = ".meta.json"
	tempSuffix      = ".temp"
)

var forecastNameRe = regexp.MustCompile(`forecast-([0-9]{10})`)

// Ensure FSIndex implements interfaces.ArchiveIndex
var _ interfaces.ArchiveIndex = (*FSIndex)(nil)

// FSIndex stores one JSON sidecar per archive entry next to its artifact:
// forecast-<YYYYMMDDHH>.icondb plus forecast-<YYYYMMDDHH>.meta.json under
// <workdir>/icondb/.
type FSIndex struct {
	dir    string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewFSIndex creates the index directory under workdir if needed.
func NewFSIndex(workdir string, logger *zap.Logger) (*FSIndex, error) {
	dir := filepath.Join(workdir, indexDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}
	return &FSIndex{dir: dir, logger: logger}, nil
}

// ArtifactPath returns where the built artifact for a release lives.
func (ix *FSIndex) ArtifactPath(release models.ReleaseInstant) string {
	return filepath.Join(ix.dir, "forecast-"+release.Identifier()+artifactSuffix)
}

func (ix *FSIndex) metaPath(release models.ReleaseInstant) string {
	return filepath.Join(ix.dir, "forecast-"+release.Identifier()+metaSuffix)
}

// ReadEntry returns nil when no entry exists. Unreadable or malformed
// metadata comes back wrapped in models.ErrCorruptEntry; callers treat that
// the same as missing.
func (ix *FSIndex) ReadEntry(_ context.Context, release models.ReleaseInstant) (*models.ArchiveEntry, error) {
	data, err := os.ReadFile(ix.metaPath(release))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", models.ErrCorruptEntry, err)
	}

	var entry models.ArchiveEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrCorruptEntry, err)
	}
	if entry.Status == "" || entry.Release.IsZero() {
		return nil, fmt.Errorf("%w: missing status or release in %s", models.ErrCorruptEntry, ix.metaPath(release))
	}
	return &entry, nil
}

// WriteEntry atomically replaces the sidecar via temp-file+rename.
func (ix *FSIndex) WriteEntry(_ context.Context, entry models.ArchiveEntry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	path := ix.metaPath(entry.Release)
	tmp := path + tempSuffix
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}
	return os.Rename(tmp, path)
}

// DeleteEntry removes the sidecar, the artifact and any leftover staging
// file. Absent files are not an error.
func (ix *FSIndex) DeleteEntry(_ context.Context, release models.ReleaseInstant) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	for _, path := range []string{
		ix.metaPath(release),
		ix.ArtifactPath(release),
		ix.ArtifactPath(release) + tempSuffix,
	} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to delete %s: %w", path, err)
		}
	}
	return nil
}

// ListEntries scans the index directory and returns all readable entries in
// release order. Corrupt sidecars are logged and skipped, not fatal.
func (ix *FSIndex) ListEntries(ctx context.Context) ([]models.ArchiveEntry, error) {
	names, err := os.ReadDir(ix.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan index directory: %w", err)
	}

	var entries []models.ArchiveEntry
	for _, de := range names {
		if de.IsDir() || !strings.HasSuffix(de.Name(), metaSuffix) {
			continue
		}
		m := forecastNameRe.FindStringSubmatch(de.Name())
		if m == nil {
			continue
		}
		release, err := models.ParseReleaseIdentifier(m[1])
		if err != nil {
			continue
		}
		entry, err := ix.ReadEntry(ctx, release)
		if err != nil {
			ix.logger.Warn("Skipping corrupt archive entry",
				zap.String("file", de.Name()), zap.Error(err))
			continue
		}
		if entry != nil {
			entries = append(entries, *entry)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Release.Before(entries[j].Release.Time)
	})
	return entries, nil
}
