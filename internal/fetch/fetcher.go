// Package fetch retrieves raw dataset files from the configured resource:
// the publisher's open-data server over HTTP, or a pre-mirrored local
// directory. All failures wrap models.ErrFetch; the resolver turns an
// exhausted fetch into a FAILED build, never a crash.
package fetch

import (
	"bytes"
	"compress/bzip2"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/neoatlantis/na-gribtools/internal/dataset"
	"github.com/neoatlantis/na-gribtools/internal/interfaces"
	"github.com/neoatlantis/na-gribtools/internal/metrics"
	"github.com/neoatlantis/na-gribtools/internal/models"
)

const (
	compressedSuffix = ".grib2.bz2"
	plainSuffix      = ".grib2"

	maxAttempts = 3
)

var bzip2Magic = []byte("BZh")

// New picks the fetcher matching the resource setting: http(s) URLs go to
// the publisher, anything else is treated as a local mirror directory.
func New(resource string, manifest *dataset.Manifest, logger *zap.Logger) (interfaces.ResourceFetcher, error) {
	if strings.HasPrefix(resource, "http://") || strings.HasPrefix(resource, "https://") {
		return NewHTTPFetcher(resource, manifest, logger), nil
	}
	info, err := os.Stat(resource)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: resource %q is neither a URL nor a directory", models.ErrConfig, resource)
	}
	return NewDirFetcher(resource, manifest, logger), nil
}

// Ensure HTTPFetcher implements interfaces.ResourceFetcher
var _ interfaces.ResourceFetcher = (*HTTPFetcher)(nil)

// HTTPFetcher downloads from the publisher's directory layout:
// <base>/<run-hour>/<variable>/<dataset filename>.
type HTTPFetcher struct {
	baseURL  string
	manifest *dataset.Manifest
	client   *http.Client
	logger   *zap.Logger
}

// NewHTTPFetcher builds a fetcher over the given base URL.
func NewHTTPFetcher(baseURL string, manifest *dataset.Manifest, logger *zap.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		baseURL:  strings.TrimRight(baseURL, "/"),
		manifest: manifest,
		client:   &http.Client{Timeout: 5 * time.Minute},
		logger:   logger,
	}
}

// URL returns the download URL for one resource.
func (f *HTTPFetcher) URL(ref models.ResourceRef) (string, error) {
	v, ok := f.manifest.Variable(ref.VariableID)
	if !ok {
		return "", fmt.Errorf("%w: unknown variable %q", models.ErrFetch, ref.VariableID)
	}
	if err := dataset.ValidateStep(ref.Step); err != nil {
		return "", err
	}
	name := dataset.Filename(v, ref.Release.Identifier(), ref.Step, compressedSuffix)
	return f.baseURL + "/" + ref.Release.RunHour() + "/" + strings.ToLower(v.Name) + "/" + name, nil
}

// Fetch downloads one resource, retrying transient failures with backoff and
// transparently decompressing bz2 payloads.
func (f *HTTPFetcher) Fetch(ctx context.Context, ref models.ResourceRef) ([]byte, error) {
	url, err := f.URL(ref)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			metrics.RecordFetchRetry()
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", models.ErrFetch, ctx.Err())
			case <-time.After(time.Second << (attempt - 1)):
			}
		}

		data, err := f.fetchOnce(ctx, url)
		if err == nil {
			metrics.RecordFetch(len(data))
			return data, nil
		}
		lastErr = err
		f.logger.Warn("Fetch attempt failed",
			zap.String("url", url), zap.Int("attempt", attempt+1), zap.Error(err))
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("%w: %s: %v", models.ErrFetch, url, lastErr)
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return decompressIfNeeded(data)
}

// Ensure DirFetcher implements interfaces.ResourceFetcher
var _ interfaces.ResourceFetcher = (*DirFetcher)(nil)

// DirFetcher reads pre-mirrored publisher files from a local directory,
// flat or in the publisher's <run-hour>/<variable>/ layout.
type DirFetcher struct {
	dir      string
	manifest *dataset.Manifest
	logger   *zap.Logger
}

// NewDirFetcher builds a fetcher over a local mirror directory.
func NewDirFetcher(dir string, manifest *dataset.Manifest, logger *zap.Logger) *DirFetcher {
	return &DirFetcher{dir: dir, manifest: manifest, logger: logger}
}

// Fetch reads one resource file, preferring the uncompressed form.
func (f *DirFetcher) Fetch(ctx context.Context, ref models.ResourceRef) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrFetch, err)
	}
	v, ok := f.manifest.Variable(ref.VariableID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown variable %q", models.ErrFetch, ref.VariableID)
	}

	var candidates []string
	for _, suffix := range []string{plainSuffix, compressedSuffix} {
		name := dataset.Filename(v, ref.Release.Identifier(), ref.Step, suffix)
		candidates = append(candidates,
			filepath.Join(f.dir, name),
			filepath.Join(f.dir, ref.Release.RunHour(), strings.ToLower(v.Name), name),
		)
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		out, err := decompressIfNeeded(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", models.ErrFetch, path, err)
		}
		metrics.RecordFetch(len(out))
		return out, nil
	}
	return nil, fmt.Errorf("%w: no mirror file for %s/+%dh of run %s",
		models.ErrFetch, ref.VariableID, ref.Step, ref.Release.Identifier())
}

// decompressIfNeeded unpacks bz2 payloads, recognized by magic rather than
// file name, and passes anything else through untouched.
func decompressIfNeeded(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, bzip2Magic) {
		return data, nil
	}
	out, err := io.ReadAll(bzip2.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("bz2 decompression failed: %w", err)
	}
	return out, nil
}
