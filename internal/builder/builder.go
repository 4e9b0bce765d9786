// Package builder runs the fetch-and-compile pipeline: download every
// (variable, step) resource of a release through a bounded worker pool,
// then assemble the ICONDB artifact container in one atomic publish.
package builder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/neoatlantis/na-gribtools/internal/archive"
	"github.com/neoatlantis/na-gribtools/internal/dataset"
	"github.com/neoatlantis/na-gribtools/internal/interfaces"
	"github.com/neoatlantis/na-gribtools/internal/models"
)

// ArtifactLocator maps a release to its artifact path; both archive index
// backends satisfy it.
type ArtifactLocator interface {
	ArtifactPath(release models.ReleaseInstant) string
}

// Ensure Builder implements interfaces.ArtifactBuilder
var _ interfaces.ArtifactBuilder = (*Builder)(nil)

// Builder is the artifact build pipeline.
type Builder struct {
	fetcher     interfaces.ResourceFetcher
	manifest    *dataset.Manifest
	locator     ArtifactLocator
	downloadDir string
	concurrency int
	logger      *zap.Logger
}

// New wires the pipeline. concurrency bounds the parallel fetches.
func New(fetcher interfaces.ResourceFetcher, manifest *dataset.Manifest, locator ArtifactLocator,
	workdir string, concurrency int, logger *zap.Logger) *Builder {
	return &Builder{
		fetcher:     fetcher,
		manifest:    manifest,
		locator:     locator,
		downloadDir: archive.DownloadDir(workdir),
		concurrency: concurrency,
		logger:      logger,
	}
}

// Build fetches all resources of the release and writes the artifact. A
// cancelled context or any failed fetch aborts the whole build with no
// artifact published; previously built artifacts for other releases are
// never touched.
func (b *Builder) Build(ctx context.Context, release models.ReleaseInstant, fingerprint string) (models.ArtifactInfo, error) {
	shape := b.manifest.Current()

	p := pool.NewWithResults[archive.ArtifactSection]().
		WithContext(ctx).
		WithMaxGoroutines(b.concurrency).
		WithCancelOnError()

	for _, v := range b.manifest.Variables() {
		for _, step := range b.manifest.Steps() {
			ref := models.ResourceRef{Release: release, VariableID: v.ID, Step: step}
			variable := v
			p.Go(func(ctx context.Context) (archive.ArtifactSection, error) {
				data, err := b.fetcher.Fetch(ctx, ref)
				if err != nil {
					return archive.ArtifactSection{}, err
				}
				b.spool(variable, ref, data)
				return archive.ArtifactSection{VariableID: ref.VariableID, Step: ref.Step, Data: data}, nil
			})
		}
	}

	sections, err := p.Wait()
	if err != nil {
		return models.ArtifactInfo{}, fmt.Errorf("build for run %s aborted: %w", release.Identifier(), err)
	}

	// The pool yields in completion order; the container wants a stable one.
	sort.Slice(sections, func(i, j int) bool {
		if sections[i].VariableID != sections[j].VariableID {
			return sections[i].VariableID < sections[j].VariableID
		}
		return sections[i].Step < sections[j].Step
	})

	info, err := archive.WriteArtifact(b.locator.ArtifactPath(release), release, fingerprint, shape, sections)
	if err != nil {
		return models.ArtifactInfo{}, err
	}

	b.logger.Info("Artifact built",
		zap.String("release", release.Identifier()),
		zap.String("path", info.Path),
		zap.Int64("size_bytes", info.SizeBytes))
	return info, nil
}

// spool keeps a copy of the raw decompressed download in the workdir, the
// same way the publisher mirror scripts do; the retention purge cleans these
// up by run time. Failures here never fail the build.
func (b *Builder) spool(v dataset.Variable, ref models.ResourceRef, data []byte) {
	if err := os.MkdirAll(b.downloadDir, 0o755); err != nil {
		return
	}
	name := dataset.Filename(v, ref.Release.Identifier(), ref.Step, ".grib2")
	if err := os.WriteFile(filepath.Join(b.downloadDir, name), data, 0o644); err != nil {
		b.logger.Debug("Failed to spool raw download", zap.String("name", name), zap.Error(err))
	}
}
