// Package config loads the icond configuration file and validates it at
// startup. All settings are read once into an immutable value passed to each
// component's constructor; nothing reads ambient global state afterwards.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/neoatlantis/na-gribtools/internal/models"
)

var validate = validator.New()

// Duration is a yaml-decodable time.Duration ("45m", "20m", "1h30m").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config is the full icond configuration.
type Config struct {
	// Resource is the source of raw dataset files: an http(s) base URL of
	// the publisher, or a local directory of pre-mirrored files.
	Resource string `yaml:"resource" validate:"required"`

	// Workdir holds fetched files, built ICONDB artifacts and their
	// metadata.
	Workdir string `yaml:"workdir" validate:"required"`

	// ChecksumKey is the opaque versioned token fed into the cache
	// fingerprint. Bumping it forces a global rebuild on the next check.
	ChecksumKey string `yaml:"checksum-key" validate:"required"`

	// ArchiveLifeHours is the retention window measured from the nominal
	// release instant. Must exceed Schedule.DelayHours.
	ArchiveLifeHours int `yaml:"archive-life" validate:"required,gt=0"`

	Schedule      ScheduleConfig      `yaml:"schedule"`
	Dataset       DatasetConfig       `yaml:"dataset"`
	Index         IndexConfig         `yaml:"index"`
	Build         BuildConfig         `yaml:"build"`
	ResourceCache ResourceCacheConfig `yaml:"resource-cache"`
	HTTP          HTTPConfig          `yaml:"http"`

	// WatchResource enables an fsnotify watcher on a local resource
	// directory, triggering a reconcile when new files land.
	WatchResource bool `yaml:"watch-resource"`
}

// ScheduleConfig describes the publisher's release calendar.
type ScheduleConfig struct {
	CadenceHours int `yaml:"cadence" validate:"gt=0"`
	DelayHours   int `yaml:"delay" validate:"gte=0"`

	// Earliest is an optional RFC3339 floor before which no release exists.
	Earliest string `yaml:"earliest"`
}

// DatasetConfig selects the forecast steps each release is built for.
type DatasetConfig struct {
	Steps []int `yaml:"steps" validate:"required,min=1,dive,gte=0,lte=180"`
}

// IndexConfig selects the archive metadata backend.
type IndexConfig struct {
	Backend string `yaml:"backend" validate:"oneof=fs sqlite"`
}

// BuildConfig tunes the fetch-and-compile pipeline.
type BuildConfig struct {
	Concurrency int      `yaml:"concurrency" validate:"gt=0"`
	StaleAfter  Duration `yaml:"stale-after"`
	Timeout     Duration `yaml:"timeout"`
}

// ResourceCacheConfig configures the raw resource byte caches.
type ResourceCacheConfig struct {
	Memory MemoryCacheConfig `yaml:"memory"`
	Redis  RedisCacheConfig  `yaml:"redis"`
}

// MemoryCacheConfig configures the in-memory L1 cache.
type MemoryCacheConfig struct {
	Enabled bool `yaml:"enabled"`
	SizeMB  int  `yaml:"size-mb" validate:"gte=0"`
}

// RedisCacheConfig configures the optional shared L2 cache.
type RedisCacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
}

// HTTPConfig configures the operations/metrics HTTP server.
type HTTPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// Load reads, defaults and validates the configuration file. Any violation
// of the startup preconditions comes back wrapped in models.ErrConfig.
func Load(path string, logger *zap.Logger) (*Config, error) {
	logger.Info("Loading configuration", zap.String("path", path))

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var cfg Config
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode YAML config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in the publisher's known schedule and sane operational
// defaults for everything the file leaves out.
func (c *Config) applyDefaults() {
	if c.Schedule.CadenceHours == 0 {
		c.Schedule.CadenceHours = 6
	}
	if c.Schedule.DelayHours == 0 {
		c.Schedule.DelayHours = 3
	}
	if len(c.Dataset.Steps) == 0 {
		c.Dataset.Steps = []int{6}
	}
	if c.Index.Backend == "" {
		c.Index.Backend = "fs"
	}
	if c.Build.Concurrency == 0 {
		c.Build.Concurrency = 4
	}
	if c.Build.StaleAfter == 0 {
		c.Build.StaleAfter = Duration(45 * time.Minute)
	}
	if c.Build.Timeout == 0 {
		c.Build.Timeout = Duration(20 * time.Minute)
	}
	if c.ResourceCache.Memory.SizeMB == 0 {
		c.ResourceCache.Memory.SizeMB = 64
	}
	if c.HTTP.Listen == "" {
		c.HTTP.Listen = "127.0.0.1:9141"
	}
}

// Validate enforces the structural rules and the cross-field startup
// preconditions.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", models.ErrConfig, err)
	}
	if c.ArchiveLifeHours <= c.Schedule.DelayHours {
		return fmt.Errorf("%w: archive-life %dh must exceed schedule.delay %dh",
			models.ErrConfig, c.ArchiveLifeHours, c.Schedule.DelayHours)
	}
	if c.Schedule.Earliest != "" {
		if _, err := time.Parse(time.RFC3339, c.Schedule.Earliest); err != nil {
			return fmt.Errorf("%w: schedule.earliest is not RFC3339: %v", models.ErrConfig, err)
		}
	}
	return nil
}

// ArchiveLife returns the retention window as a duration.
func (c *Config) ArchiveLife() time.Duration {
	return time.Duration(c.ArchiveLifeHours) * time.Hour
}

// Cadence returns the interval between nominal releases.
func (c *Config) Cadence() time.Duration {
	return time.Duration(c.Schedule.CadenceHours) * time.Hour
}

// Delay returns the availability delay after a nominal release.
func (c *Config) Delay() time.Duration {
	return time.Duration(c.Schedule.DelayHours) * time.Hour
}

// EarliestTime returns the optional release floor, zero when unset. Call
// only after Validate.
func (c *Config) EarliestTime() time.Time {
	if c.Schedule.Earliest == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339, c.Schedule.Earliest)
	return t.UTC()
}
