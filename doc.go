// Package sdk provides the official Software Development Kit for Hearthwatch.
//
// Hearthwatch watches a home automation installation for configuration drift
// and raises repair issues when it finds any. Its flagship diagnostic scans
// every dashboard for references to entities that no longer exist in the
// entity catalog. The SDK provides the framework facade for embedding that
// diagnostic in a process, the building blocks for writing new repairs, and
// the worker runtime for running inspections out of a shared Redis queue.
//
// # Core Concepts
//
// The SDK is organized around several key concepts:
//
//   - Repairs: Named diagnostics that inspect the installation and file issues
//   - Environment: The collaborator handles a repair inspects through
//   - Events: Catalog and dashboard change notifications that trigger inspections
//   - Issues: Findings surfaced to the user, one per dashboard per repair
//   - Workers: Processes that consume queued inspection jobs and scale out
//
// # Architecture
//
// The SDK follows a layered architecture:
//
//   - Facade Layer: sdk.New wires collaborators and returns a Framework
//   - Repair Layer: The manager serializes, debounces, and traces inspections
//   - Collaborator Layer: Redis event bus and entity states, etcd worker
//     registry, filesystem dashboard sources, issue stores
//   - Observability Layer: slog structured logging and OpenTelemetry tracing
//
// # Getting Started
//
// Create a framework, register a repair, and activate it:
//
//	import (
//	    "github.com/hearthwatch/sdk"
//	    "github.com/hearthwatch/sdk/repair"
//	)
//
//	framework, err := sdk.New(
//	    sdk.WithConfigFile("/etc/hearthwatch/hearthwatch.yaml"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer framework.Close()
//
//	unknown, err := repair.NewUnknownEntityReferences()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := framework.Repairs().Register(ctx, unknown); err != nil {
//	    log.Fatal(err)
//	}
//	if err := framework.Activate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// With no configuration file every collaborator runs in memory, which is the
// intended mode for tests and single-process setups.
//
// # Repair Development
//
// Create custom repairs with the option constructors:
//
//	r, err := sdk.NewRepair(
//	    sdk.WithRepairName("stale_automation_targets"),
//	    sdk.WithRepairDescription("Flags automations that act on deleted entities"),
//	    sdk.WithRepairEvents(events.TypeEntityRegistryUpdated),
//	    sdk.WithInspectFunc(func(ctx context.Context, env *repair.Environment) error {
//	        // Inspection logic here
//	        return nil
//	    }),
//	)
//
// A repair's inspect function reads the installation through the Environment
// and files issues through it. Repairs never mutate the installation.
//
// # Error Handling
//
// The SDK uses sentinel errors and structured error types for robust error handling:
//
//	if err != nil {
//	    if errors.Is(err, sdk.ErrNotFound) {
//	        // Handle missing dashboard or entity
//	    }
//	    // Handle other errors
//	}
//
// # Observability
//
// The SDK integrates OpenTelemetry for distributed tracing. Pass a tracer
// provider to the framework and every inspection run opens a span:
//
//	tp := sdk.NewTracerProvider("hearthwatch", exporter, logger)
//	framework, err := sdk.New(sdk.WithTracerProvider(tp))
//
// # Thread Safety
//
// All framework and manager methods are safe for concurrent use. Repair
// implementations should ensure thread safety when managing shared state;
// the manager guarantees a single repair never runs concurrently with itself.
//
// # Best Practices
//
//   - Always use context for cancellation and timeouts
//   - Implement proper error handling and error wrapping
//   - Use structured logging for debugging and monitoring
//   - Implement graceful shutdown for long-running operations
//   - Keep inspect functions idempotent; they rerun on every matching event
//   - Use the in-memory collaborators for testing
//
// # Examples
//
// See the examples directory for complete working examples of:
//
//   - Embedding the framework in a process
//   - Writing custom repairs
//   - Running a worker pool against a Redis queue
//   - Testing repairs with in-memory collaborators
//
// # Support
//
// For more information, visit:
//
//	GitHub: https://github.com/hearthwatch/sdk
package sdk
