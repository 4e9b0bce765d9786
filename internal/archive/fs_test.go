package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/neoatlantis/na-gribtools/internal/models"
)

func testRelease(t *testing.T, id string) models.ReleaseInstant {
	t.Helper()
	r, err := models.ParseReleaseIdentifier(id)
	require.NoError(t, err)
	return r
}

func testEntry(t *testing.T, id string, status models.BuildStatus) models.ArchiveEntry {
	t.Helper()
	return models.ArchiveEntry{
		Release:     testRelease(t, id),
		Fingerprint: "f-" + id,
		Status:      status,
		BuildID:     "build-" + id,
		CreatedAt:   time.Date(2017, time.December, 3, 3, 5, 0, 0, time.UTC),
	}
}

func TestFSIndexReadMissingEntry(t *testing.T) {
	ix, err := NewFSIndex(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	entry, err := ix.ReadEntry(context.Background(), testRelease(t, "2017120300"))
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestFSIndexWriteReadRoundTrip(t *testing.T) {
	ix, err := NewFSIndex(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	want := testEntry(t, "2017120300", models.BuildStatusComplete)
	completed := want.CreatedAt.Add(4 * time.Minute)
	want.CompletedAt = &completed
	want.ArtifactPath = ix.ArtifactPath(want.Release)
	want.SizeBytes = 123

	require.NoError(t, ix.WriteEntry(ctx, want))

	got, err := ix.ReadEntry(ctx, want.Release)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Release.Identifier(), got.Release.Identifier())
	assert.Equal(t, want.Fingerprint, got.Fingerprint)
	assert.Equal(t, models.BuildStatusComplete, got.Status)
	assert.Equal(t, want.BuildID, got.BuildID)
	assert.Equal(t, want.SizeBytes, got.SizeBytes)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, got.CompletedAt.Equal(completed))
}

func TestFSIndexWriteReplaces(t *testing.T) {
	ix, err := NewFSIndex(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	first := testEntry(t, "2017120300", models.BuildStatusInProgress)
	require.NoError(t, ix.WriteEntry(ctx, first))

	second := first
	second.Status = models.BuildStatusComplete
	second.BuildID = "build-2"
	require.NoError(t, ix.WriteEntry(ctx, second))

	entries, err := ix.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.BuildStatusComplete, entries[0].Status)
	assert.Equal(t, "build-2", entries[0].BuildID)
}

func TestFSIndexCorruptMetadata(t *testing.T) {
	workdir := t.TempDir()
	ix, err := NewFSIndex(workdir, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	release := testRelease(t, "2017120300")
	path := filepath.Join(workdir, indexDirName, "forecast-2017120300"+metaSuffix)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err = ix.ReadEntry(ctx, release)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrCorruptEntry)

	// Listing skips the corrupt sidecar instead of failing.
	entries, err := ix.ListEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFSIndexDeleteEntry(t *testing.T) {
	workdir := t.TempDir()
	ix, err := NewFSIndex(workdir, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	entry := testEntry(t, "2017120300", models.BuildStatusComplete)
	require.NoError(t, ix.WriteEntry(ctx, entry))
	require.NoError(t, os.WriteFile(ix.ArtifactPath(entry.Release), []byte("payload"), 0o644))

	require.NoError(t, ix.DeleteEntry(ctx, entry.Release))

	got, err := ix.ReadEntry(ctx, entry.Release)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoFileExists(t, ix.ArtifactPath(entry.Release))

	// Deleting again is fine.
	assert.NoError(t, ix.DeleteEntry(ctx, entry.Release))
}

func TestFSIndexListEntriesSorted(t *testing.T) {
	ix, err := NewFSIndex(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	for _, id := range []string{"2017120312", "2017120300", "2017120306"} {
		require.NoError(t, ix.WriteEntry(ctx, testEntry(t, id, models.BuildStatusComplete)))
	}

	entries, err := ix.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "2017120300", entries[0].Release.Identifier())
	assert.Equal(t, "2017120306", entries[1].Release.Identifier())
	assert.Equal(t, "2017120312", entries[2].Release.Identifier())
}
