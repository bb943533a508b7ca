// Package types provides shared type definitions for the Hearthwatch SDK.
//
// This package defines types used across subsystem boundaries, where a
// concrete package would create an import cycle or an awkward dependency.
// Domain types with a single home live in their own packages (entity,
// dashboard, issue); what remains here is genuinely cross-cutting.
//
// # Health Types
//
// Health types represent the operational status of a subsystem:
//
//	status := types.NewHealthyStatus("connected to redis")
//	if status.IsHealthy() {
//	    // Subsystem is fully operational
//	}
//
//	degraded := types.NewDegradedStatus("registry slow", map[string]any{
//	    "latency_ms": 500,
//	})
//
// The health package builds on these to check the event bus, the live
// state table, the entity registry, and the dashboard source, and to
// combine per-subsystem results into one overall status.
//
// # JSON Serialization
//
// All types marshal cleanly to JSON for health endpoints and logs:
//
//	data, err := json.Marshal(status)
package types
