package repair

import (
	"context"

	"github.com/hearthwatch/sdk/events"
)

// Repair is the interface that all Hearthwatch repairs must implement.
// Repairs are background diagnostics that inspect the platform and raise
// or clear repairable issues through the Environment's issue store.
type Repair interface {
	// Name returns the unique identifier for this repair.
	// This should be a short, snake_case name (e.g., "unknown_entity_references")
	// matching the platform's translation key conventions. The name scopes
	// the repair's issues in the issue store.
	Name() string

	// Description returns a human-readable description of what this repair
	// checks and what kind of issues it raises.
	Description() string

	// Events returns the event types that should trigger a re-inspection.
	// Returning nil or an empty slice subscribes the repair to every
	// catalog event.
	Events() []events.Type

	// Inspect performs one full inspection using the provided environment.
	// It raises issues for problems it finds and clears issues that no
	// longer apply. An error means the inspection could not complete;
	// existing issues must be left in place rather than cleared on
	// incomplete information.
	Inspect(ctx context.Context, env *Environment) error
}

// Initializer is an optional interface for repairs that need a setup hook.
// The Manager calls Initialize once during Register, before any inspection.
type Initializer interface {
	// Initialize prepares the repair for inspection runs.
	// The config map contains repair-specific configuration parameters
	// and may be nil.
	Initialize(ctx context.Context, config map[string]any) error
}

// Shutdowner is an optional interface for repairs that hold resources.
// The Manager calls Shutdown during Unregister and Close.
type Shutdowner interface {
	// Shutdown gracefully stops the repair and releases resources.
	Shutdown(ctx context.Context) error
}
