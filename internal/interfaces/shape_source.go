package interfaces

import "github.com/neoatlantis/na-gribtools/internal/dataset"

//go:generate mockgen -package=mock -source=shape_source.go -destination=mock/shape_source.go

// ShapeSource supplies the current dataset shape descriptor. The resolver
// calls it fresh on every validity check, never caching the result across
// restarts, so a changed variable catalog shows up as a fingerprint mismatch.
type ShapeSource interface {
	Current() dataset.Descriptor
}
