package httpserver

import (
	"github.com/neoatlantis/na-gribtools/internal/models"
	"github.com/neoatlantis/na-gribtools/internal/resolver"
)

type statusResponse struct {
	Success bool `json:"success"`
	resolver.CheckResult
}

type entriesResponse struct {
	Success bool                  `json:"success"`
	Entries []models.ArchiveEntry `json:"entries"`
}

type reconcileResponse struct {
	Success bool `json:"success"`
	resolver.ReconcileResult
	BuildError string `json:"build_error,omitempty"`
}

type sweepResponse struct {
	Success bool `json:"success"`
	resolver.SweepResult
}
