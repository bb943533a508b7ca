package sdk

import (
	"log/slog"
	"os"

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

const (
	// Name is the canonical product name. It is used as the default
	// service name for traces and as the tracer name for inspection spans.
	Name = "hearthwatch"

	// Version is the SDK release version.
	Version = "0.3.0"
)

// New creates a new Hearthwatch framework instance.
// The framework wires the repair manager to an event bus, an entity
// catalog, a dashboard source, and an issue store, and manages the
// lifecycle of every connection it opens itself.
//
// With no options the framework runs fully in memory, which is the
// intended mode for tests and single-process setups. A hearthwatch.yaml
// (via WithConfigFile or WithConfig) switches the bus and entity catalog
// to Redis, the worker registry to etcd, and the dashboard source to the
// configured directory.
//
// Example:
//
//	framework, err := sdk.New(
//	    sdk.WithLogger(logger),
//	    sdk.WithConfigFile("/etc/hearthwatch/hearthwatch.yaml"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer framework.Close()
func New(opts ...Option) (Framework, error) {
	cfg := &frameworkConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	// Create default logger if not provided
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	// Load hearthwatch.yaml when a path was given. WithConfig skips the
	// file entirely.
	fileCfg := cfg.config
	if fileCfg == nil && cfg.configPath != "" {
		loaded, err := config.Load(cfg.configPath)
		if err != nil {
			return nil, NewConfigurationError("sdk.New", err)
		}
		fileCfg = loaded
	}

	// Section getters tolerate nil receivers, so a missing file or a
	// missing section falls through to defaults.
	var redisCfg *config.RedisConfig
	var etcdCfg *config.EtcdConfig
	var dashCfg *config.DashboardsConfig
	var inspCfg *config.InspectionConfig
	var filterCfg *config.FiltersConfig
	if fileCfg != nil {
		redisCfg = fileCfg.Redis
		etcdCfg = fileCfg.Etcd
		dashCfg = fileCfg.Dashboards
		inspCfg = fileCfg.Inspection
		filterCfg = fileCfg.Filters
	}

	f := &defaultFramework{logger: cfg.logger}

	// Release anything already opened if a later step fails.
	ok := false
	defer func() {
		if !ok {
			CloseWithLog(f.ownedBus, cfg.logger, "event bus")
			CloseWithLog(f.ownedRegistry, cfg.logger, "registry client")
			CloseWithLog(f.ownedStates, cfg.logger, "state client")
		}
	}()

	// Event bus: injected, else Redis when configured, else in-memory.
	f.bus = cfg.bus
	if f.bus == nil {
		if redisCfg != nil {
			bus, err := events.NewRedisBus(events.RedisOptions{
				URL:        redisCfg.GetURL(),
				PopTimeout: inspCfg.GetQueuePopTimeout(),
			})
			if err != nil {
				return nil, NewConnectionError("sdk.New", err)
			}
			f.bus = bus
			f.ownedBus = bus
		} else {
			bus := events.NewMemoryBus()
			f.bus = bus
			f.ownedBus = bus
		}
	}

	// Worker registry: injected, else etcd when endpoints are named,
	// else in-memory.
	f.reg = cfg.registry
	if f.reg == nil {
		if etcdCfg.Enabled() {
			client, err := registry.NewClient(registry.Config{
				Endpoints: etcdCfg.Endpoints,
				Namespace: etcdCfg.GetNamespace(),
				WorkerTTL: etcdCfg.GetWorkerTTL(),
			})
			if err != nil {
				return nil, NewConnectionError("sdk.New", err)
			}
			f.reg = client
			f.ownedRegistry = client
		} else {
			reg := registry.NewMemoryRegistry()
			f.reg = reg
			f.ownedRegistry = reg
		}
	}

	// Entity states: injected, else the same Redis the bus uses, else
	// in-memory.
	f.states = cfg.states
	if f.states == nil {
		if redisCfg != nil {
			client, err := states.NewRedisClient(states.RedisOptions{
				URL: redisCfg.GetURL(),
			})
			if err != nil {
				return nil, NewConnectionError("sdk.New", err)
			}
			f.states = client
			f.ownedStates = client
		} else {
			client := states.NewMemoryClient()
			f.states = client
			f.ownedStates = client
		}
	}

	// Dashboard source: injected, else the configured directory, else
	// in-memory.
	f.source = cfg.source
	if f.source == nil {
		if dashCfg.Enabled() {
			f.source = dashboard.NewFSSource(dashCfg.GetDir())
		} else {
			f.source = dashboard.NewMemorySource()
		}
	}

	// Issue store: injected, else in-memory.
	f.issues = cfg.issues
	if f.issues == nil {
		f.issues = issue.NewMemoryStore()
	}

	// Ignore filters: WithFilters wins outright; otherwise the file
	// rules and WithIgnoreRules expressions compile together.
	filters := cfg.filters
	if filters == nil {
		var exprs []string
		exprs = append(exprs, filterCfg.GetIgnore()...)
		exprs = append(exprs, cfg.ignoreRules...)
		if len(exprs) > 0 {
			compiled, err := filter.Compile(exprs)
			if err != nil {
				return nil, NewConfigurationError("sdk.New", err)
			}
			filters = compiled
		}
	}

	var tracer trace.Tracer
	if cfg.tracerProvider != nil {
		tracer = cfg.tracerProvider.Tracer(Name)
	}

	f.env = repair.NewEnvironment(repair.EnvironmentConfig{
		Registry:   f.reg,
		States:     f.states,
		Dashboards: f.source,
		Issues:     f.issues,
		Filters:    filters,
		Logger:     cfg.logger,
		Tracer:     tracer,
	})

	debounce := cfg.debounce
	if debounce <= 0 {
		debounce = inspCfg.GetDebounce()
	}

	f.manager = repair.NewManager(repair.ManagerConfig{
		Bus:      f.bus,
		Env:      f.env,
		Debounce: debounce,
		Logger:   cfg.logger,
	})

	ok = true
	return f, nil
}

// NewRepair creates a new repair with the provided options.
// The repair must have at minimum a name, description, and inspect function.
//
// Example:
//
//	r, err := sdk.NewRepair(
//	    sdk.WithRepairName("stale_automation_targets"),
//	    sdk.WithRepairDescription("Flags automations that act on deleted entities"),
//	    sdk.WithRepairEvents(events.TypeEntityRegistryUpdated),
//	    sdk.WithInspectFunc(func(ctx context.Context, env *repair.Environment) error {
//	        // Inspection logic
//	        return nil
//	    }),
//	)
func NewRepair(opts ...RepairOption) (repair.Repair, error) {
	cfg := repair.NewConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return repair.New(cfg)
}
