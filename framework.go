package sdk

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/hearthwatch/sdk/dashboard"
	"github.com/hearthwatch/sdk/events"
	"github.com/hearthwatch/sdk/health"
	"github.com/hearthwatch/sdk/issue"
	"github.com/hearthwatch/sdk/registry"
	"github.com/hearthwatch/sdk/repair"
	"github.com/hearthwatch/sdk/states"
	"github.com/hearthwatch/sdk/types"
)

// Framework provides the main SDK interface for running Hearthwatch
// diagnostics. It manages repairs, their environment, and lifecycle
// operations.
//
// The Framework acts as the central coordinator, wiring together:
//   - Repairs: Diagnostics that inspect dashboards and reconcile issues
//   - Environment: The collaborators every inspection reads and writes
//   - Events: The change feed that schedules inspections
type Framework interface {
	// Repair management

	// Repairs returns the repair registry for registering and running
	// repairs.
	Repairs() RepairRegistry

	// Environment returns the collaborators handed to every inspection.
	Environment() *repair.Environment

	// Lifecycle

	// Activate subscribes to change events, runs a baseline inspection
	// pass, and schedules debounced inspections as events arrive.
	Activate(ctx context.Context) error

	// Deactivate stops event-driven inspections and waits for in-flight
	// work, bounded by the context.
	Deactivate(ctx context.Context) error

	// Close deactivates the framework, shuts down registered repairs,
	// and releases backing connections the framework opened itself.
	// Collaborators injected through options are left open.
	Close() error

	// Health

	// Health reports the aggregated health of the framework's
	// collaborators: event bus, live states, entity registry, and
	// dashboard source.
	Health(ctx context.Context) types.HealthStatus
}

// RepairRegistry manages repair registration, discovery, and execution.
// *repair.Manager satisfies it.
type RepairRegistry interface {
	// Register adds a repair to the registry, initializing it if it
	// implements repair.Initializer.
	// Returns an error if a repair with the same name already exists.
	Register(ctx context.Context, r repair.Repair) error

	// Unregister removes a repair, shutting it down if it implements
	// repair.Shutdowner.
	Unregister(ctx context.Context, name string) error

	// Repairs returns the sorted names of all registered repairs.
	Repairs() []string

	// Inspect runs the named repair once, synchronously.
	Inspect(ctx context.Context, name string) error

	// InspectAll runs every registered repair once.
	InspectAll(ctx context.Context) error

	// Status returns the run record for the named repair.
	Status(name string) (repair.Status, bool)

	// Statuses returns the run records of all repairs, sorted by name.
	Statuses() []repair.Status
}

// defaultFramework is the concrete implementation of Framework.
type defaultFramework struct {
	logger  *slog.Logger
	manager *repair.Manager
	env     *repair.Environment

	bus    events.Bus
	reg    registry.Registry
	states states.Client
	source dashboard.Source
	issues issue.Store

	// Connections the framework opened itself. Nil when the collaborator
	// was injected; injected collaborators are the caller's to close.
	ownedBus      io.Closer
	ownedRegistry io.Closer
	ownedStates   io.Closer

	mu     sync.Mutex
	closed bool
}

// Repairs returns the repair registry.
func (f *defaultFramework) Repairs() RepairRegistry {
	return f.manager
}

// Environment returns the inspection environment.
func (f *defaultFramework) Environment() *repair.Environment {
	return f.env
}

// Activate starts event-driven inspections.
func (f *defaultFramework) Activate(ctx context.Context) error {
	f.mu.Lock()
	closed := f.closed
	f.mu.Unlock()
	if closed {
		return NewValidationError("Framework.Activate", ErrInvalidInput).
			WithContext(map[string]any{"reason": "framework is closed"})
	}

	if err := f.manager.Activate(ctx); err != nil {
		return WrapError("Framework.Activate", err)
	}

	f.logger.Info("framework active",
		slog.Int("repairs", len(f.manager.Repairs())),
	)
	return nil
}

// Deactivate stops event-driven inspections.
func (f *defaultFramework) Deactivate(ctx context.Context) error {
	if err := f.manager.Deactivate(ctx); err != nil {
		return WrapError("Framework.Deactivate", err)
	}

	f.logger.Info("framework stopped")
	return nil
}

// Close releases the framework's resources. Safe to call more than once.
func (f *defaultFramework) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	f.mu.Unlock()

	err := f.manager.Close()

	CloseWithLog(f.ownedBus, f.logger, "event bus")
	CloseWithLog(f.ownedRegistry, f.logger, "registry client")
	CloseWithLog(f.ownedStates, f.logger, "state client")

	if err != nil {
		return WrapError("Framework.Close", err)
	}
	return nil
}

// Health aggregates the health of every wired collaborator.
func (f *defaultFramework) Health(ctx context.Context) types.HealthStatus {
	return health.Combine(
		health.CheckPing(ctx, "event bus", f.bus),
		health.CheckPing(ctx, "state client", f.states),
		health.CheckRegistry(ctx, f.reg),
		health.CheckSource(ctx, f.source),
	)
}
