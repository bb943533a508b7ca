// Package config provides loading and parsing of hearthwatch.yaml configuration files.
// The configuration wires backing services (Redis, etcd), the dashboard source,
// inspection runtime settings, and user ignore rules.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents a hearthwatch.yaml configuration file.
type Config struct {
	// Redis connection settings (event bus, job queue, live states)
	Redis *RedisConfig `yaml:"redis,omitempty"`

	// Etcd connection settings (entity registry)
	Etcd *EtcdConfig `yaml:"etcd,omitempty"`

	// Dashboard source settings
	Dashboards *DashboardsConfig `yaml:"dashboards,omitempty"`

	// Inspection runtime settings
	Inspection *InspectionConfig `yaml:"inspection,omitempty"`

	// Filters suppressing known-noisy references
	Filters *FiltersConfig `yaml:"filters,omitempty"`

	// Logging settings
	Logging *LoggingConfig `yaml:"logging,omitempty"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	// URL is the Redis connection string
	// Default: "redis://localhost:6379"
	URL string `yaml:"url,omitempty"`
}

// GetURL returns the configured Redis URL or the default value.
func (r *RedisConfig) GetURL() string {
	if r == nil || r.URL == "" {
		return "redis://localhost:6379"
	}
	return r.URL
}

// EtcdConfig holds etcd connection settings for the entity registry.
type EtcdConfig struct {
	// Endpoints is the list of etcd endpoints.
	// Empty means no etcd: the framework falls back to an in-memory registry.
	Endpoints []string `yaml:"endpoints,omitempty"`

	// Namespace is the etcd key prefix for all Hearthwatch entries.
	// Default: "hearthwatch"
	Namespace string `yaml:"namespace,omitempty"`

	// WorkerTTL is the worker presence lease time-to-live in seconds.
	// Default: 30
	WorkerTTL int `yaml:"worker_ttl,omitempty"`
}

// Enabled reports whether etcd endpoints are configured.
func (e *EtcdConfig) Enabled() bool {
	return e != nil && len(e.Endpoints) > 0
}

// GetNamespace returns the configured namespace or the default value.
func (e *EtcdConfig) GetNamespace() string {
	if e == nil || e.Namespace == "" {
		return "hearthwatch"
	}
	return e.Namespace
}

// GetWorkerTTL returns the configured worker lease TTL or the default value.
func (e *EtcdConfig) GetWorkerTTL() int {
	if e == nil || e.WorkerTTL <= 0 {
		return 30
	}
	return e.WorkerTTL
}

// DashboardsConfig holds dashboard source settings.
type DashboardsConfig struct {
	// Dir is the directory holding YAML dashboard configurations.
	// Empty means no directory source: the framework falls back to an
	// in-memory source.
	Dir string `yaml:"dir,omitempty"`
}

// Enabled reports whether a dashboard directory is configured.
func (d *DashboardsConfig) Enabled() bool {
	return d != nil && d.Dir != ""
}

// GetDir returns the configured dashboard directory.
func (d *DashboardsConfig) GetDir() string {
	if d == nil {
		return ""
	}
	return d.Dir
}

// InspectionConfig holds inspection runtime settings.
type InspectionConfig struct {
	// Concurrency is the number of concurrent inspection workers.
	// Default: 4
	Concurrency int `yaml:"concurrency,omitempty"`

	// Debounce is the quiet period after an event before inspections run.
	// Format: Go duration string (e.g., "3s", "500ms")
	// Default: 3s
	Debounce string `yaml:"debounce,omitempty"`

	// MaxDepth bounds recursion when walking nested dashboard cards.
	// Default: 64
	MaxDepth int `yaml:"max_depth,omitempty"`

	// QueuePopTimeout bounds each blocking job pop, so workers can check
	// for shutdown between attempts.
	// Format: Go duration string (e.g., "5s")
	// Default: 5s
	QueuePopTimeout string `yaml:"queue_pop_timeout,omitempty"`

	// ShutdownTimeout is the time to wait for graceful shutdown.
	// Format: Go duration string (e.g., "30s", "1m")
	// Default: 30s
	ShutdownTimeout string `yaml:"shutdown_timeout,omitempty"`
}

// GetConcurrency returns the configured concurrency or the default value.
func (i *InspectionConfig) GetConcurrency() int {
	if i == nil || i.Concurrency <= 0 {
		return 4
	}
	return i.Concurrency
}

// GetDebounce parses the debounce string and returns a duration.
// Returns the default value if not set or invalid.
func (i *InspectionConfig) GetDebounce() time.Duration {
	if i == nil || i.Debounce == "" {
		return 3 * time.Second
	}
	d, err := time.ParseDuration(i.Debounce)
	if err != nil {
		return 3 * time.Second
	}
	return d
}

// GetMaxDepth returns the configured recursion bound or the default value.
func (i *InspectionConfig) GetMaxDepth() int {
	if i == nil || i.MaxDepth <= 0 {
		return 64
	}
	return i.MaxDepth
}

// GetQueuePopTimeout parses the pop timeout string and returns a duration.
// Returns the default value if not set or invalid.
func (i *InspectionConfig) GetQueuePopTimeout() time.Duration {
	if i == nil || i.QueuePopTimeout == "" {
		return 5 * time.Second
	}
	d, err := time.ParseDuration(i.QueuePopTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// GetShutdownTimeout parses the shutdown timeout string and returns a duration.
// Returns the default value if not set or invalid.
func (i *InspectionConfig) GetShutdownTimeout() time.Duration {
	if i == nil || i.ShutdownTimeout == "" {
		return 30 * time.Second
	}
	d, err := time.ParseDuration(i.ShutdownTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// FiltersConfig holds user-defined ignore rules.
type FiltersConfig struct {
	// Ignore is a list of CEL expressions. An entity matching any
	// expression is excluded from diagnostics.
	Ignore []string `yaml:"ignore,omitempty"`
}

// GetIgnore returns the configured ignore expressions.
func (f *FiltersConfig) GetIgnore() []string {
	if f == nil {
		return nil
	}
	return f.Ignore
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", or "error"
	// Default: "info"
	Level string `yaml:"level,omitempty"`

	// Format selects the handler: "json" or "text"
	// Default: "json"
	Format string `yaml:"format,omitempty"`
}

// GetLevel parses the configured level. Returns slog.LevelInfo if not set
// or invalid.
func (l *LoggingConfig) GetLevel() slog.Level {
	if l == nil {
		return slog.LevelInfo
	}
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "", "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetFormat returns the configured handler format or the default value.
func (l *LoggingConfig) GetFormat() string {
	if l == nil {
		return "json"
	}
	switch strings.ToLower(l.Format) {
	case "text":
		return "text"
	default:
		return "json"
	}
}

// Validate checks the configuration for values that would misbehave at
// runtime: negative counts and unparseable duration strings.
func (c *Config) Validate() error {
	if c.Inspection != nil {
		if c.Inspection.Concurrency < 0 {
			return fmt.Errorf("inspection.concurrency must be non-negative, got %d", c.Inspection.Concurrency)
		}
		if c.Inspection.MaxDepth < 0 {
			return fmt.Errorf("inspection.max_depth must be non-negative, got %d", c.Inspection.MaxDepth)
		}
		for field, value := range map[string]string{
			"inspection.debounce":          c.Inspection.Debounce,
			"inspection.queue_pop_timeout": c.Inspection.QueuePopTimeout,
			"inspection.shutdown_timeout":  c.Inspection.ShutdownTimeout,
		} {
			if value == "" {
				continue
			}
			if _, err := time.ParseDuration(value); err != nil {
				return fmt.Errorf("%s is not a valid duration: %q", field, value)
			}
		}
	}
	if c.Etcd != nil && c.Etcd.WorkerTTL < 0 {
		return fmt.Errorf("etcd.worker_ttl must be non-negative, got %d", c.Etcd.WorkerTTL)
	}
	return nil
}

// Load reads and parses a hearthwatch.yaml file from the given path.
// If the path is a directory, it looks for hearthwatch.yaml or
// hearthwatch.yml in that directory.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	var configPath string
	if info.IsDir() {
		// Try hearthwatch.yaml first, then hearthwatch.yml
		yamlPath := filepath.Join(path, "hearthwatch.yaml")
		if _, err := os.Stat(yamlPath); err == nil {
			configPath = yamlPath
		} else {
			ymlPath := filepath.Join(path, "hearthwatch.yml")
			if _, err := os.Stat(ymlPath); err == nil {
				configPath = ymlPath
			} else {
				return nil, fmt.Errorf("no hearthwatch.yaml or hearthwatch.yml found in %s", path)
			}
		}
	} else {
		configPath = path
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadFromDir searches for hearthwatch.yaml starting from the given
// directory and walking up to parent directories until found or root is
// reached.
func LoadFromDir(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	for {
		config, err := Load(absDir)
		if err == nil {
			return config, nil
		}

		// Move to parent directory
		parent := filepath.Dir(absDir)
		if parent == absDir {
			// Reached root
			return nil, fmt.Errorf("no hearthwatch.yaml found in %s or parent directories", dir)
		}
		absDir = parent
	}
}

// LoadFromCurrentDir loads hearthwatch.yaml from the current working directory.
func LoadFromCurrentDir() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	return LoadFromDir(cwd)
}
