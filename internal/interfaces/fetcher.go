package interfaces

import (
	"context"

	"github.com/neoatlantis/na-gribtools/internal/models"
)

//go:generate mockgen -package=mock -source=fetcher.go -destination=mock/fetcher.go

// ResourceFetcher retrieves one raw dataset file from the configured
// resource (publisher URL or pre-mirrored directory). Failures wrap
// models.ErrFetch; retries and decompression are the implementation's job.
type ResourceFetcher interface {
	Fetch(ctx context.Context, ref models.ResourceRef) ([]byte, error)
}
