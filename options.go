package sdk

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/hearthwatch/sdk/config"
	"github.com/hearthwatch/sdk/dashboard"
	"github.com/hearthwatch/sdk/events"
	"github.com/hearthwatch/sdk/filter"
	"github.com/hearthwatch/sdk/issue"
	"github.com/hearthwatch/sdk/registry"
	"github.com/hearthwatch/sdk/repair"
	"github.com/hearthwatch/sdk/states"
)

// Option configures the Framework.
type Option func(*frameworkConfig)

// frameworkConfig holds configuration for the Framework instance.
type frameworkConfig struct {
	configPath     string
	config         *config.Config
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
	bus            events.Bus
	registry       registry.Registry
	states         states.Client
	source         dashboard.Source
	issues         issue.Store
	filters        *filter.Ignore
	ignoreRules    []string
	debounce       time.Duration
}

// WithConfigFile sets the path to the hearthwatch.yaml configuration file.
// The file wires backing services (Redis, etcd), the dashboard source, and
// inspection runtime settings.
func WithConfigFile(path string) Option {
	return func(c *frameworkConfig) {
		c.configPath = path
	}
}

// WithConfig provides an already parsed configuration.
// Takes precedence over WithConfigFile.
func WithConfig(cfg *config.Config) Option {
	return func(c *frameworkConfig) {
		c.config = cfg
	}
}

// WithLogger sets a custom logger for the framework.
// If not provided, a default logger will be created.
func WithLogger(logger *slog.Logger) Option {
	return func(c *frameworkConfig) {
		c.logger = logger
	}
}

// WithTracerProvider sets an OpenTelemetry tracer provider for distributed
// tracing. Inspections open a span per run when tracing is configured.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *frameworkConfig) {
		c.tracerProvider = tp
	}
}

// WithBus sets the event bus carrying change events and inspection jobs.
// If not provided, the framework connects to Redis when the configuration
// names one, or falls back to an in-memory bus.
func WithBus(bus events.Bus) Option {
	return func(c *frameworkConfig) {
		c.bus = bus
	}
}

// WithRegistry sets the entity registry.
// If not provided, the framework connects to etcd when the configuration
// names endpoints, or falls back to an in-memory registry.
func WithRegistry(reg registry.Registry) Option {
	return func(c *frameworkConfig) {
		c.registry = reg
	}
}

// WithStates sets the live state client.
// If not provided, the framework connects to Redis when the configuration
// names one, or falls back to an in-memory client.
func WithStates(client states.Client) Option {
	return func(c *frameworkConfig) {
		c.states = client
	}
}

// WithSource sets the dashboard source inspections read from.
// If not provided, the framework reads the configured dashboard directory,
// or falls back to an in-memory source.
func WithSource(src dashboard.Source) Option {
	return func(c *frameworkConfig) {
		c.source = src
	}
}

// WithIssueStore sets the store where inspections record their issues.
// If not provided, an in-memory store is used.
func WithIssueStore(store issue.Store) Option {
	return func(c *frameworkConfig) {
		c.issues = store
	}
}

// WithFilters sets the compiled ignore rules suppressing known-noisy
// entity references.
func WithFilters(ignore *filter.Ignore) Option {
	return func(c *frameworkConfig) {
		c.filters = ignore
	}
}

// WithIgnoreRules adds CEL ignore expressions to be compiled during New.
// Invalid expressions surface as a configuration error. Merged with any
// rules the configuration file declares.
func WithIgnoreRules(exprs ...string) Option {
	return func(c *frameworkConfig) {
		c.ignoreRules = append(c.ignoreRules, exprs...)
	}
}

// WithDebounce sets the quiet period between a change event and the
// inspection it schedules. Zero uses the configured or default value.
func WithDebounce(d time.Duration) Option {
	return func(c *frameworkConfig) {
		c.debounce = d
	}
}

// RepairOption configures a Repair built through NewRepair.
type RepairOption func(*repair.Config)

// WithRepairName sets the repair's unique identifier.
// The name should be a snake_case string (e.g., "unknown_entity_references")
// and scopes the issues the repair raises.
func WithRepairName(name string) RepairOption {
	return func(c *repair.Config) {
		c.SetName(name)
	}
}

// WithRepairDescription sets the repair's human-readable description.
// This should explain what the repair detects.
func WithRepairDescription(desc string) RepairOption {
	return func(c *repair.Config) {
		c.SetDescription(desc)
	}
}

// WithRepairEvents sets the change events that schedule the repair.
// A repair with no events runs on every catalog event.
func WithRepairEvents(types ...events.Type) RepairOption {
	return func(c *repair.Config) {
		c.SetEvents(types)
	}
}

// WithInspectFunc sets the function that performs the inspection.
// This is the core repair logic and is required.
func WithInspectFunc(fn repair.InspectFunc) RepairOption {
	return func(c *repair.Config) {
		c.SetInspectFunc(fn)
	}
}

// WithInitFunc sets the function that initializes the repair.
// This is called once when the repair is registered.
// If not set, a default no-op implementation is used.
func WithInitFunc(fn repair.InitFunc) RepairOption {
	return func(c *repair.Config) {
		c.SetInitFunc(fn)
	}
}

// WithShutdownFunc sets the function that shuts down the repair.
// This is called when the repair is being unregistered.
// If not set, a default no-op implementation is used.
func WithShutdownFunc(fn repair.ShutdownFunc) RepairOption {
	return func(c *repair.Config) {
		c.SetShutdownFunc(fn)
	}
}
