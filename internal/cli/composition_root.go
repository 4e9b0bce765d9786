package cli

import (
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/neoatlantis/na-gribtools/internal/archive"
	"github.com/neoatlantis/na-gribtools/internal/builder"
	"github.com/neoatlantis/na-gribtools/internal/config"
	"github.com/neoatlantis/na-gribtools/internal/daemon"
	"github.com/neoatlantis/na-gribtools/internal/dataset"
	"github.com/neoatlantis/na-gribtools/internal/fetch"
	"github.com/neoatlantis/na-gribtools/internal/httpserver"
	"github.com/neoatlantis/na-gribtools/internal/interfaces"
	"github.com/neoatlantis/na-gribtools/internal/rescache/l1"
	"github.com/neoatlantis/na-gribtools/internal/rescache/l2"
	"github.com/neoatlantis/na-gribtools/internal/rescache/multi"
	"github.com/neoatlantis/na-gribtools/internal/rescache/noop"
	"github.com/neoatlantis/na-gribtools/internal/resolver"
	"github.com/neoatlantis/na-gribtools/internal/retention"
	"github.com/neoatlantis/na-gribtools/internal/schedule"
)

// archiveIndex is what the composition root needs from an index backend: the
// gateway operations plus artifact placement for the builder.
type archiveIndex interface {
	interfaces.ArchiveIndex
	builder.ArtifactLocator
}

// CompositionRoot holds all application dependencies and provides a
// centralized place for dependency injection and service initialization.
type CompositionRoot struct {
	Config   *config.Config
	Logger   *zap.Logger
	Manifest *dataset.Manifest
	Schedule *schedule.Clock
	Policy   *retention.Policy

	Index         archiveIndex
	ResourceCache interfaces.ResourceCache
	Fetcher       interfaces.ResourceFetcher
	Builder       *builder.Builder

	Resolver   *resolver.Resolver
	HTTPServer *httpserver.Server
	Daemon     *daemon.Daemon
}

// NewCompositionRoot creates and initializes all application dependencies.
//
// Initialization order:
//  1. Logger (needed by all other components)
//  2. Configuration (fatal ConfigError before any fetch or build)
//  3. Dataset manifest, schedule clock, retention policy
//  4. Archive index backend (fs or sqlite)
//  5. Resource byte caches (L1/L2/noop) and the fetcher
//  6. Builder, resolver, HTTP server, daemon
func NewCompositionRoot(configPath string) (*CompositionRoot, error) {
	root := &CompositionRoot{}

	if err := root.initLogger(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := root.loadConfig(configPath); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := root.initEngine(); err != nil {
		return nil, fmt.Errorf("failed to initialize engine components: %w", err)
	}
	if err := root.initIndex(); err != nil {
		return nil, fmt.Errorf("failed to initialize archive index: %w", err)
	}
	if err := root.initResourceCache(); err != nil {
		return nil, fmt.Errorf("failed to initialize resource cache: %w", err)
	}
	if err := root.initFetcher(); err != nil {
		return nil, fmt.Errorf("failed to initialize fetcher: %w", err)
	}
	root.initServices()

	return root, nil
}

// initLogger initializes the application logger
func (r *CompositionRoot) initLogger() error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	r.Logger = logger
	return nil
}

// loadConfig loads the application configuration
func (r *CompositionRoot) loadConfig(path string) error {
	cfg, err := config.Load(path, r.Logger)
	if err != nil {
		return err
	}
	r.Config = cfg
	return nil
}

// initEngine builds the pure engine components: manifest, clock, policy.
func (r *CompositionRoot) initEngine() error {
	manifest, err := dataset.NewManifest(r.Config.Dataset.Steps)
	if err != nil {
		return err
	}
	r.Manifest = manifest

	clock, err := schedule.NewClock(r.Config.Cadence(), r.Config.Delay(), r.Config.EarliestTime())
	if err != nil {
		return err
	}
	r.Schedule = clock

	policy, err := retention.NewPolicy(r.Config.ArchiveLife(), r.Config.Cadence(), r.Config.Delay())
	if err != nil {
		return err
	}
	r.Policy = policy
	return nil
}

// initIndex selects the archive index backend.
func (r *CompositionRoot) initIndex() error {
	switch r.Config.Index.Backend {
	case "sqlite":
		index, err := archive.NewSQLIndex(r.Config.Workdir, r.Logger)
		if err != nil {
			return err
		}
		r.Index = index
		r.Logger.Info("Archive index initialized", zap.String("backend", "sqlite"))
	default:
		index, err := archive.NewFSIndex(r.Config.Workdir, r.Logger)
		if err != nil {
			return err
		}
		r.Index = index
		r.Logger.Info("Archive index initialized", zap.String("backend", "fs"))
	}
	return nil
}

// initResourceCache assembles the L1/L2 resource byte cache stack. A failed
// redis connection degrades to whatever else is enabled rather than failing
// startup.
func (r *CompositionRoot) initResourceCache() error {
	var caches []interfaces.ResourceCache
	var levels []string

	if r.Config.ResourceCache.Memory.Enabled {
		l1Cache, err := l1.NewBigCache(r.Config.ResourceCache.Memory.SizeMB, r.Config.ArchiveLife(), r.Logger)
		if err != nil {
			return err
		}
		caches = append(caches, l1Cache)
		levels = append(levels, "memory")
		r.Logger.Info("BigCache (L1) initialized", zap.Int("size_mb", r.Config.ResourceCache.Memory.SizeMB))
	} else {
		r.Logger.Info("BigCache (L1) disabled")
	}

	if r.Config.ResourceCache.Redis.Enabled {
		l2Cache, err := l2.NewRedisCache(r.Config.ResourceCache.Redis.URL, r.Logger)
		if err != nil {
			r.Logger.Warn("Failed to connect to redis, continuing without L2 cache", zap.Error(err))
		} else {
			caches = append(caches, l2Cache)
			levels = append(levels, "redis")
			r.Logger.Info("Redis (L2) initialized")
		}
	}

	switch len(caches) {
	case 0:
		r.ResourceCache = noop.NewNoOpCache()
	default:
		r.ResourceCache = multi.NewMultiCache(caches, levels, r.Logger)
	}
	return nil
}

// initFetcher builds the resource fetcher over the configured source, with
// the byte cache in front.
func (r *CompositionRoot) initFetcher() error {
	base, err := fetch.New(r.Config.Resource, r.Manifest, r.Logger)
	if err != nil {
		return err
	}
	r.Fetcher = fetch.NewCachingFetcher(base, r.ResourceCache, r.Config.ArchiveLife())
	return nil
}

// initServices wires the builder, resolver, HTTP server and daemon.
func (r *CompositionRoot) initServices() {
	r.Builder = builder.New(r.Fetcher, r.Manifest, r.Index,
		r.Config.Workdir, r.Config.Build.Concurrency, r.Logger)

	r.Resolver = resolver.New(resolver.Params{
		Clock:           r.Schedule,
		Policy:          r.Policy,
		Index:           r.Index,
		Shape:           r.Manifest,
		Builder:         r.Builder,
		ChecksumKey:     r.Config.ChecksumKey,
		StaleBuildAfter: time.Duration(r.Config.Build.StaleAfter),
		BuildTimeout:    time.Duration(r.Config.Build.Timeout),
		Workdir:         r.Config.Workdir,
		Logger:          r.Logger,
	})

	r.HTTPServer = httpserver.NewServer(r.Resolver, r.Index, r.Logger)
	r.Daemon = daemon.New(r.Resolver, r.Schedule, r.Logger)
}

// Cleanup performs cleanup of all resources
func (r *CompositionRoot) Cleanup() error {
	var errs []error

	if r.Logger != nil {
		if err := r.Logger.Sync(); err != nil {
			errs = append(errs, fmt.Errorf("failed to sync logger: %w", err))
		}
	}
	if r.ResourceCache != nil {
		if err := r.ResourceCache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close resource cache: %w", err))
		}
	}
	if closer, ok := r.Index.(io.Closer); ok && closer != nil {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close archive index: %w", err))
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
