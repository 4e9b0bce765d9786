package builder

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/neoatlantis/na-gribtools/internal/archive"
	"github.com/neoatlantis/na-gribtools/internal/dataset"
	"github.com/neoatlantis/na-gribtools/internal/interfaces/mock"
	"github.com/neoatlantis/na-gribtools/internal/models"
)

type dirLocator struct{ dir string }

func (l dirLocator) ArtifactPath(release models.ReleaseInstant) string {
	return filepath.Join(l.dir, "forecast-"+release.Identifier()+".icondb")
}

func testRelease(t *testing.T) models.ReleaseInstant {
	t.Helper()
	r, err := models.ParseReleaseIdentifier("2017120300")
	require.NoError(t, err)
	return r
}

func TestBuildAssemblesArtifact(t *testing.T) {
	ctrl := gomock.NewController(t)
	manifest, err := dataset.NewManifest([]int{6})
	require.NoError(t, err)

	fetcher := mock.NewMockResourceFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, ref models.ResourceRef) ([]byte, error) {
			return []byte("data-" + ref.VariableID), nil
		}).Times(len(manifest.Variables()))

	workdir := t.TempDir()
	b := New(fetcher, manifest, dirLocator{workdir}, workdir, 4, zap.NewNop())

	release := testRelease(t)
	info, err := b.Build(context.Background(), release, "fp-1")
	require.NoError(t, err)
	assert.FileExists(t, info.Path)

	art, err := archive.OpenArtifact(info.Path)
	require.NoError(t, err)
	defer art.Close()

	m := art.Manifest()
	assert.Equal(t, "fp-1", m.Fingerprint)
	assert.Equal(t, "2017120300", m.Release)
	assert.Len(t, m.Sections, len(manifest.Variables()))

	data, err := art.Section("temperature_2m", 6)
	require.NoError(t, err)
	assert.Equal(t, []byte("data-temperature_2m"), data)

	// Raw downloads were spooled for the purge to manage later.
	spooled := filepath.Join(archive.DownloadDir(workdir),
		"ICON_iko_single_level_elements_world_T_2M_2017120300_006.grib2")
	assert.FileExists(t, spooled)
}

func TestBuildFailsWhenAnyFetchFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	manifest, err := dataset.NewManifest([]int{6})
	require.NoError(t, err)

	fetcher := mock.NewMockResourceFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, ref models.ResourceRef) ([]byte, error) {
			if ref.VariableID == "pressure_msl" {
				return nil, models.ErrFetch
			}
			return []byte("x"), nil
		}).AnyTimes()

	workdir := t.TempDir()
	loc := dirLocator{workdir}
	b := New(fetcher, manifest, loc, workdir, 2, zap.NewNop())

	release := testRelease(t)
	_, err = b.Build(context.Background(), release, "fp-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrFetch)
	assert.NoFileExists(t, loc.ArtifactPath(release))
}

func TestBuildHonorsCancellation(t *testing.T) {
	ctrl := gomock.NewController(t)
	manifest, err := dataset.NewManifest([]int{6})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	fetcher := mock.NewMockResourceFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ models.ResourceRef) ([]byte, error) {
			cancel()
			<-ctx.Done()
			return nil, ctx.Err()
		}).AnyTimes()

	workdir := t.TempDir()
	loc := dirLocator{workdir}
	b := New(fetcher, manifest, loc, workdir, 1, zap.NewNop())

	release := testRelease(t)
	_, err = b.Build(ctx, release, "fp-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.NoFileExists(t, loc.ArtifactPath(release))
}
