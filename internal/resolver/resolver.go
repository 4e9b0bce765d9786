// Package resolver is the cache-validity and retention engine. For any
// release instant it reconciles independent invalidation sources (checksum
// key changes, new releases, retention expiry) into one deterministic
// decision and drives the build pipeline accordingly.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/neoatlantis/na-gribtools/internal/archive"
	"github.com/neoatlantis/na-gribtools/internal/fingerprint"
	"github.com/neoatlantis/na-gribtools/internal/interfaces"
	"github.com/neoatlantis/na-gribtools/internal/metrics"
	"github.com/neoatlantis/na-gribtools/internal/models"
	"github.com/neoatlantis/na-gribtools/internal/retention"
	"github.com/neoatlantis/na-gribtools/internal/schedule"
)

// Params wires a Resolver.
type Params struct {
	Clock       *schedule.Clock
	Policy      *retention.Policy
	Index       interfaces.ArchiveIndex
	Shape       interfaces.ShapeSource
	Builder     interfaces.ArtifactBuilder
	ChecksumKey string

	// StaleBuildAfter bounds how long an IN_PROGRESS marker is trusted; an
	// older one is a crashed build and gets rebuilt.
	StaleBuildAfter time.Duration

	// BuildTimeout caps one build attempt. Zero means no cap.
	BuildTimeout time.Duration

	// Workdir, when set, lets Sweep purge orphaned staging and raw files.
	Workdir string

	Logger *zap.Logger
}

// Resolver decides REUSE/REBUILD/EVICT per release and performs the
// transitions through the archive index.
type Resolver struct {
	clock           *schedule.Clock
	policy          *retention.Policy
	index           interfaces.ArchiveIndex
	shape           interfaces.ShapeSource
	builder         interfaces.ArtifactBuilder
	checksumKey     string
	staleBuildAfter time.Duration
	buildTimeout    time.Duration
	workdir         string
	logger          *zap.Logger

	// one lock per release instant; builds for different instants are
	// independent and run in parallel
	locks sync.Map
}

// New creates a Resolver.
func New(p Params) *Resolver {
	return &Resolver{
		clock:           p.Clock,
		policy:          p.Policy,
		index:           p.Index,
		shape:           p.Shape,
		builder:         p.Builder,
		checksumKey:     p.ChecksumKey,
		staleBuildAfter: p.StaleBuildAfter,
		buildTimeout:    p.BuildTimeout,
		workdir:         p.Workdir,
		logger:          p.Logger,
	}
}

// CheckResult is the outcome of one validity check.
type CheckResult struct {
	Decision models.Decision `json:"decision"`

	// Target is the most recent available release; zero when Decision is
	// NO_DATA_YET.
	Target models.ReleaseInstant `json:"target,omitempty"`

	// Entry is the stored entry for Target, when one exists.
	Entry *models.ArchiveEntry `json:"entry,omitempty"`

	// Fingerprint is the expected fingerprint computed from the current
	// checksum key and dataset shape.
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Check runs the decision algorithm for the most recent available release.
// Read-only: no index writes happen here, in particular none on NO_DATA_YET.
func (r *Resolver) Check(ctx context.Context, now time.Time) (CheckResult, error) {
	target, ok := r.clock.MostRecentAvailable(now)
	if !ok {
		r.logger.Info("No release available yet")
		metrics.RecordDecision(string(models.DecisionNoDataYet))
		return CheckResult{Decision: models.DecisionNoDataYet}, nil
	}

	// Fresh on every check: a changed variable catalog or bumped checksum
	// key must show up immediately.
	expected := fingerprint.Fingerprint(r.checksumKey, r.shape.Current())

	entry, err := r.readEntry(ctx, target)
	if err != nil {
		return CheckResult{}, err
	}

	res := CheckResult{Target: target, Entry: entry, Fingerprint: expected}
	res.Decision = r.decide(entry, expected, now)

	metrics.RecordDecision(string(res.Decision))
	r.logger.Info("Validity check",
		zap.String("release", target.Identifier()),
		zap.String("decision", string(res.Decision)))
	return res, nil
}

// decide implements the decision ladder. A fingerprint mismatch always wins
// over retention staleness: a structural mismatch is unconditionally
// disqualifying, no matter how fresh the data is.
func (r *Resolver) decide(entry *models.ArchiveEntry, expected string, now time.Time) models.Decision {
	switch {
	case entry == nil:
		return models.DecisionRebuild
	case entry.Status != models.BuildStatusComplete:
		// A half-built or failed cache is never trusted.
		return models.DecisionRebuild
	case entry.Fingerprint != expected:
		return models.DecisionRebuild
	case !r.policy.IsRetained(entry.Release, now):
		return models.DecisionEvictAndRebuild
	default:
		return models.DecisionReuse
	}
}

// readEntry treats corrupt metadata the same as a missing entry, after
// logging it; anything else is a real gateway failure.
func (r *Resolver) readEntry(ctx context.Context, release models.ReleaseInstant) (*models.ArchiveEntry, error) {
	entry, err := r.index.ReadEntry(ctx, release)
	if err != nil {
		if errors.Is(err, models.ErrCorruptEntry) {
			r.logger.Warn("Corrupt archive entry, treating as missing",
				zap.String("release", release.Identifier()), zap.Error(err))
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

// ReconcileResult is the outcome of one reconcile pass.
type ReconcileResult struct {
	CheckResult

	// InProgress reports that another build for the target is underway and
	// nothing was done.
	InProgress bool `json:"in_progress,omitempty"`

	// Built reports that a build ran and completed successfully.
	Built bool `json:"built,omitempty"`

	// BuildErr carries a failed build's error; the entry is left FAILED and
	// the failure is not propagated as fatal.
	BuildErr error `json:"-"`
}

// Reconcile runs Check and acts on it: for REBUILD and EVICT_AND_REBUILD it
// takes the per-release lock, durably writes the IN_PROGRESS marker before
// any build work, runs the builder, and records COMPLETE or FAILED. A build
// failure never deletes a prior COMPLETE entry for an older release.
func (r *Resolver) Reconcile(ctx context.Context, now time.Time) (ReconcileResult, error) {
	check, err := r.Check(ctx, now)
	if err != nil {
		return ReconcileResult{}, err
	}
	res := ReconcileResult{CheckResult: check}

	switch check.Decision {
	case models.DecisionNoDataYet, models.DecisionReuse:
		return res, nil
	}

	mu := r.lockFor(check.Target)
	mu.Lock()
	defer mu.Unlock()

	// Re-read under the lock; a concurrent reconcile may have acted already.
	entry, err := r.readEntry(ctx, check.Target)
	if err != nil {
		return res, err
	}
	if entry != nil {
		if entry.Status == models.BuildStatusComplete &&
			entry.Fingerprint == check.Fingerprint &&
			r.policy.IsRetained(entry.Release, now) {
			res.Decision = models.DecisionReuse
			res.Entry = entry
			return res, nil
		}
		if entry.Status == models.BuildStatusInProgress {
			age := now.Sub(entry.CreatedAt)
			if age < r.staleBuildAfter {
				res.InProgress = true
				res.Entry = entry
				return res, nil
			}
			r.logger.Warn("Taking over crashed build",
				zap.String("release", check.Target.Identifier()),
				zap.String("build_id", entry.BuildID),
				zap.Duration("age", age),
				zap.Error(models.ErrStaleBuild))
		}
	}

	if check.Decision == models.DecisionEvictAndRebuild {
		if err := r.index.DeleteEntry(ctx, check.Target); err != nil {
			return res, fmt.Errorf("failed to evict stale entry: %w", err)
		}
		metrics.RecordEviction()
	}

	marker := models.ArchiveEntry{
		Release:     check.Target,
		Fingerprint: check.Fingerprint,
		Status:      models.BuildStatusInProgress,
		BuildID:     uuid.NewString(),
		CreatedAt:   now.UTC(),
	}
	if err := r.index.WriteEntry(ctx, marker); err != nil {
		return res, fmt.Errorf("failed to record build start: %w", err)
	}

	res.Entry, res.Built, res.BuildErr = r.runBuild(ctx, marker)
	return res, nil
}

// runBuild executes one build attempt for an already-recorded IN_PROGRESS
// marker and persists the terminal status.
func (r *Resolver) runBuild(ctx context.Context, marker models.ArchiveEntry) (*models.ArchiveEntry, bool, error) {
	buildCtx := ctx
	if r.buildTimeout > 0 {
		var cancel context.CancelFunc
		buildCtx, cancel = context.WithTimeout(ctx, r.buildTimeout)
		defer cancel()
	}

	start := time.Now()
	info, err := r.builder.Build(buildCtx, marker.Release, marker.Fingerprint)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		marker.Status = models.BuildStatusFailed
		if werr := r.index.WriteEntry(ctx, marker); werr != nil {
			r.logger.Error("Failed to record build failure", zap.Error(werr))
		}
		metrics.RecordBuild("failure", elapsed)
		r.logger.Warn("Build failed",
			zap.String("release", marker.Release.Identifier()),
			zap.String("build_id", marker.BuildID),
			zap.Error(err))
		return &marker, false, err
	}

	completed := time.Now().UTC()
	marker.Status = models.BuildStatusComplete
	marker.ArtifactPath = info.Path
	marker.SizeBytes = info.SizeBytes
	marker.CompletedAt = &completed
	if err := r.index.WriteEntry(ctx, marker); err != nil {
		return &marker, false, fmt.Errorf("failed to record build completion: %w", err)
	}

	metrics.RecordBuild("success", elapsed)
	r.logger.Info("Build complete",
		zap.String("release", marker.Release.Identifier()),
		zap.String("build_id", marker.BuildID),
		zap.Int64("size_bytes", info.SizeBytes))
	return &marker, true, nil
}

// SweepResult reports one eviction sweep.
type SweepResult struct {
	Evicted int `json:"evicted"`
	Purged  int `json:"purged"`
}

// Sweep deletes every entry past its retention window along with its
// artifact, then purges orphaned staging and raw files from the workdir.
func (r *Resolver) Sweep(ctx context.Context, now time.Time) (SweepResult, error) {
	entries, err := r.index.ListEntries(ctx)
	if err != nil {
		return SweepResult{}, err
	}

	var res SweepResult
	evicted := map[string]bool{}
	for _, candidate := range r.policy.EvictionCandidates(entries, now) {
		mu := r.lockFor(candidate.Release)
		mu.Lock()
		err := r.index.DeleteEntry(ctx, candidate.Release)
		mu.Unlock()
		if err != nil {
			r.logger.Warn("Failed to evict entry",
				zap.String("release", candidate.Release.Identifier()), zap.Error(err))
			continue
		}
		metrics.RecordEviction()
		metrics.RecordDecision(string(models.DecisionEvict))
		evicted[candidate.Release.Identifier()] = true
		res.Evicted++
	}

	counts := map[string]int{}
	for _, e := range entries {
		if !evicted[e.Release.Identifier()] {
			counts[string(e.Status)]++
		}
	}
	metrics.UpdateArchiveEntries(counts)

	if r.workdir != "" {
		purged, err := archive.PurgeStaleFiles(ctx, r.workdir, r.policy.StaleArtifactBefore(now), r.logger)
		if err != nil {
			r.logger.Warn("Stale file purge incomplete", zap.Error(err))
		}
		res.Purged = purged
	}

	r.logger.Info("Eviction sweep done",
		zap.Int("evicted", res.Evicted), zap.Int("purged", res.Purged))
	return res, nil
}

func (r *Resolver) lockFor(release models.ReleaseInstant) *sync.Mutex {
	v, _ := r.locks.LoadOrStore(release.Identifier(), &sync.Mutex{})
	return v.(*sync.Mutex)
}
