// Package repair provides types and interfaces for building background
// diagnostics in the Hearthwatch SDK.
//
// # Overview
//
// This package defines the core Repair interface and supporting types that
// enable developers to create repairs: background diagnostics that inspect
// the platform and raise or clear repairable issues. The flagship repair,
// UnknownEntityReferences, scans every dashboard for references to entities
// that no longer exist.
//
// # Core Components
//
// Repair Interface - The main interface all repairs must implement:
//   - Name, Description: Repair metadata
//   - Events: The event types that trigger re-inspection
//   - Inspect: Core inspection logic
//
// Repairs may additionally implement Initializer and Shutdowner for
// lifecycle hooks; the Manager detects these via type assertion.
//
// Environment - The runtime collaborators handed to repairs:
//   - Entity catalog access (Registry)
//   - Live state access (States)
//   - Dashboard documents (Dashboards)
//   - Issue persistence (Issues)
//   - Exemption filters (Ignored)
//   - Observability (Logger, Tracer)
//
// Manager - Event-driven orchestration:
//   - Repair registration with duplicate rejection
//   - Event subscription routed through per-repair debouncers
//   - On-demand inspection (Inspect, InspectAll)
//   - Per-repair run status (Status)
//   - Graceful deactivation draining in-flight inspections
//
// Builder Pattern - Simplified repair creation via Config:
//   - Fluent API for configuration
//   - Function-based implementation
//   - Automatic validation
//
// # Event Flow
//
// When active, the manager subscribes to the union of every registered
// repair's event types. A platform event does not trigger an inspection
// immediately; it resets the repair's trailing-edge debouncer, so a burst
// of events (an integration reload touching dozens of entities) results
// in a single inspection one quiet window later.
//
// The manager also bridges the entity registry's watch channel onto the
// event bus: whenever the catalog changes, it publishes an
// entity_registry_updated event. In a multi-worker deployment every
// manager publishes on change; the debouncer absorbs the duplicates.
//
// # Building Repairs
//
// Using the builder pattern:
//
//	cfg := repair.NewConfig().
//		SetName("stale_automations").
//		SetDescription("Finds automations referencing removed entities").
//		AddEvent(events.TypeEntityRegistryUpdated).
//		SetInspectFunc(func(ctx context.Context, env *repair.Environment) error {
//			logger := env.Logger()
//			logger.Info("inspecting automations")
//
//			ids, err := env.Registry().EntityIDs(ctx)
//			if err != nil {
//				return err
//			}
//
//			// Inspection logic here
//			_ = ids
//			return nil
//		})
//
//	r, err := repair.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Implementing the Full Interface
//
// For more complex repairs, implement the Repair interface directly:
//
//	type MyRepair struct {
//		extractor *dashboard.Extractor
//	}
//
//	func (r *MyRepair) Name() string { return "my_repair" }
//	func (r *MyRepair) Description() string { return "..." }
//	func (r *MyRepair) Events() []events.Type { return nil } // nil = every event
//
//	func (r *MyRepair) Inspect(ctx context.Context, env *repair.Environment) error {
//		// Complex inspection with internal state
//		return nil
//	}
//
// # Running Repairs
//
//	env := repair.NewEnvironment(repair.EnvironmentConfig{
//		Registry:   reg,
//		States:     states,
//		Dashboards: source,
//		Issues:     store,
//	})
//
//	mgr := repair.NewManager(repair.ManagerConfig{
//		Bus: bus,
//		Env: env,
//	})
//
//	unknown, err := repair.NewUnknownEntityReferences()
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := mgr.Register(ctx, unknown); err != nil {
//		log.Fatal(err)
//	}
//
//	if err := mgr.Activate(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer mgr.Deactivate(context.Background())
//
// # Error Handling
//
// Inspection errors are logged and recorded in the repair's Status; they
// never stop the manager's event loop. A repair that cannot reach a
// collaborator should return the error and leave existing issues in
// place rather than clearing them on incomplete information.
//
// # Thread Safety
//
// The Manager and Debouncer are safe for concurrent use. The manager runs
// at most one inspection per repair at a time; distinct repairs may be
// inspected concurrently. Repairs that keep internal state must protect
// it themselves.
package repair
