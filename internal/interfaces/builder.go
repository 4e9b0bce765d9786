package interfaces

import (
	"context"

	"github.com/neoatlantis/na-gribtools/internal/models"
)

//go:generate mockgen -package=mock -source=builder.go -destination=mock/builder.go

// ArtifactBuilder runs the fetch-and-compile pipeline for one release and
// returns where the finished artifact landed. It must honor context
// cancellation and must never leave a partially written artifact at the
// final path.
type ArtifactBuilder interface {
	Build(ctx context.Context, release models.ReleaseInstant, fingerprint string) (models.ArtifactInfo, error)
}
