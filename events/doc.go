// Package events provides the Redis-backed event bus and inspection job
// queue that connect state changes to diagnostic work.
//
// Hearthwatch reacts to things happening in the home: an integration
// finishes loading, an entity is renamed, a dashboard is saved. Each of
// these surfaces as an Event published to a per-type pub/sub channel.
// Repairs subscribe to the event types they care about, debounce the
// resulting churn, and enqueue InspectJob items on a shared work queue
// that inspection workers drain.
//
// # Core Components
//
// Bus: Interface for interacting with the event fabric. Provides methods for:
//   - Publish/Subscribe for change notifications
//   - PushJob/PopJob for the inspection work queue
//   - Ping for connection health checks
//
// Type: A named kind of change, such as entity_registry_updated. The
// catalog covers the core lifecycle events plus one reload event per
// integration that announces configuration reloads.
//
// Event: A single change notification with optional entity scope.
//
// InspectJob: A request for a repair to re-inspect its domain.
//
// # Redis Key Schema
//
// The bus uses a structured key naming convention:
//   - hearthwatch:events:<type> - Pub/Sub channel per event type
//   - hearthwatch:jobs:inspect - List for inspection jobs (LPUSH/BRPOP)
//
// # Usage
//
// Creating a bus:
//
//	bus, err := events.NewRedisBus(events.RedisOptions{
//		URL: "redis://localhost:6379",
//	})
//
// Publishing an event:
//
//	err := bus.Publish(ctx, events.NewEvent(events.TypeDashboardUpdated, ""))
//
// Subscribing to event types:
//
//	ch, err := bus.Subscribe(ctx,
//		events.TypeEntityRegistryUpdated,
//		events.TypeDashboardUpdated,
//	)
//	for ev := range ch {
//		fmt.Printf("change: %s\n", ev.Type)
//	}
//
// Queueing inspection work:
//
//	job := events.NewInspectJob("unknown_entity_references", events.TypeDashboardUpdated)
//	err := bus.PushJob(ctx, job)
//
// Draining the queue from a worker:
//
//	for {
//		job, err := bus.PopJob(ctx)
//		if err != nil {
//			return err
//		}
//		if job == nil {
//			continue // pop timed out, loop to check for shutdown
//		}
//		// Run the inspection...
//	}
//
// # Error Handling
//
// All methods return errors for Redis connection failures, serialization
// errors, or context cancellation. PopJob additionally returns a nil job
// with a nil error when the configured pop timeout elapses, so callers
// can interleave shutdown checks with blocking pops.
//
// # Thread Safety
//
// RedisBus is safe for concurrent use by multiple goroutines.
package events
