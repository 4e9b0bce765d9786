package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/neoatlantis/na-gribtools/internal/models"
)

var rawArchiveNameRe = regexp.MustCompile(`([0-9]{10})_[0-9]{3}`)

var rawArchiveSuffixes = []string{".grb2", ".grib2", ".grib2.bz2"}

// PurgeStaleFiles deletes leftovers the index does not track: raw dataset
// downloads whose run time is older than the cutoff, and staging files from
// interrupted builds. A file whose run time cannot be parsed from its name
// is deleted too. Returns the number of files removed.
func PurgeStaleFiles(ctx context.Context, workdir string, cutoff time.Time, logger *zap.Logger) (int, error) {
	removed := 0

	// Raw downloads spooled by the build pipeline.
	downloadDir := filepath.Join(workdir, downloadDirName)
	names, err := os.ReadDir(downloadDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return 0, err
	}
	for _, de := range names {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		if de.IsDir() || !hasRawArchiveSuffix(de.Name()) {
			continue
		}
		if rawArchiveRunTimeBefore(de.Name(), cutoff) {
			path := filepath.Join(downloadDir, de.Name())
			if err := os.Remove(path); err == nil {
				removed++
				logger.Debug("Purged stale raw download", zap.String("path", path))
			}
		}
	}

	// Staging files from builds that never finished.
	indexDir := filepath.Join(workdir, indexDirName)
	names, err = os.ReadDir(indexDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return removed, err
	}
	for _, de := range names {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		if de.IsDir() || !strings.HasSuffix(de.Name(), artifactSuffix+tempSuffix) {
			continue
		}
		if forecastRunTimeBefore(de.Name(), cutoff) {
			path := filepath.Join(indexDir, de.Name())
			if err := os.Remove(path); err == nil {
				removed++
				logger.Debug("Purged stale staging file", zap.String("path", path))
			}
		}
	}

	return removed, nil
}

func hasRawArchiveSuffix(name string) bool {
	for _, s := range rawArchiveSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// rawArchiveRunTimeBefore parses the run time out of a publisher file name.
// Unparsable names count as stale: if even the run time of a seemingly valid
// dataset cannot be read, the file is garbage.
func rawArchiveRunTimeBefore(name string, cutoff time.Time) bool {
	m := rawArchiveNameRe.FindStringSubmatch(name)
	if m == nil {
		return true
	}
	release, err := models.ParseReleaseIdentifier(m[1])
	if err != nil {
		return true
	}
	return release.Before(cutoff)
}

func forecastRunTimeBefore(name string, cutoff time.Time) bool {
	m := forecastNameRe.FindStringSubmatch(name)
	if m == nil {
		return true
	}
	release, err := models.ParseReleaseIdentifier(m[1])
	if err != nil {
		return true
	}
	return release.Before(cutoff)
}
