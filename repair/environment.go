package repair

import (
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/hearthwatch/sdk/dashboard"
	"github.com/hearthwatch/sdk/entity"
	"github.com/hearthwatch/sdk/filter"
	"github.com/hearthwatch/sdk/issue"
	"github.com/hearthwatch/sdk/registry"
	"github.com/hearthwatch/sdk/states"
)

// EnvironmentConfig holds the collaborators handed to repairs. Nil fields
// fall back to in-memory implementations so an Environment always works
// standalone.
type EnvironmentConfig struct {
	// Registry is the entity catalog. Defaults to an empty in-memory
	// registry.
	Registry registry.Registry

	// States is the live state table. Defaults to an empty in-memory
	// client.
	States states.Client

	// Dashboards serves dashboard documents. Defaults to an empty
	// in-memory source.
	Dashboards dashboard.Source

	// Issues persists the issues repairs raise. Defaults to an in-memory
	// store.
	Issues issue.Store

	// Filters holds the compiled ignore rules. Nil still applies the
	// fixed domain exemptions.
	Filters *filter.Ignore

	// Logger is the structured logger handed to repairs. Defaults to a
	// text handler on stderr at info level.
	Logger *slog.Logger

	// Tracer creates spans for inspections. Defaults to a no-op tracer.
	Tracer trace.Tracer
}

// Environment provides the runtime collaborators for repair execution.
// It bundles catalog, state, dashboard, and issue access together with
// observability, so a repair's Inspect method needs no other wiring.
type Environment struct {
	registry   registry.Registry
	states     states.Client
	dashboards dashboard.Source
	issues     issue.Store
	filters    *filter.Ignore
	logger     *slog.Logger
	tracer     trace.Tracer
}

// NewEnvironment creates an environment, filling absent collaborators
// with in-memory defaults.
func NewEnvironment(cfg EnvironmentConfig) *Environment {
	env := &Environment{
		registry:   cfg.Registry,
		states:     cfg.States,
		dashboards: cfg.Dashboards,
		issues:     cfg.Issues,
		filters:    cfg.Filters,
		logger:     cfg.Logger,
		tracer:     cfg.Tracer,
	}

	if env.registry == nil {
		env.registry = registry.NewMemoryRegistry()
	}
	if env.states == nil {
		env.states = states.NewMemoryClient()
	}
	if env.dashboards == nil {
		env.dashboards = dashboard.NewMemorySource()
	}
	if env.issues == nil {
		env.issues = issue.NewMemoryStore()
	}
	if env.logger == nil {
		env.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	if env.tracer == nil {
		env.tracer = noop.NewTracerProvider().Tracer("hearthwatch-repair")
	}

	return env
}

// Registry returns the entity catalog.
func (e *Environment) Registry() registry.Registry {
	return e.registry
}

// States returns the live state table.
func (e *Environment) States() states.Client {
	return e.states
}

// Dashboards returns the dashboard source.
func (e *Environment) Dashboards() dashboard.Source {
	return e.dashboards
}

// Issues returns the issue store.
func (e *Environment) Issues() issue.Store {
	return e.issues
}

// Filters returns the compiled ignore rules, which may be nil.
func (e *Environment) Filters() *filter.Ignore {
	return e.filters
}

// Ignored reports whether an entity identifier is exempt from diagnostics,
// either through the fixed domain exemptions or a configured ignore rule.
func (e *Environment) Ignored(id entity.ID) bool {
	return e.filters.Ignored(id)
}

// Logger returns the structured logger for repairs.
func (e *Environment) Logger() *slog.Logger {
	return e.logger
}

// Tracer returns the OpenTelemetry tracer for inspection spans.
func (e *Environment) Tracer() trace.Tracer {
	return e.tracer
}
