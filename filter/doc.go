// Package filter decides which entity references diagnostics should not
// report, combining built-in domain exemptions with user-defined CEL
// ignore rules.
//
// Some domains are exempt unconditionally. Entities in these domains come
// and go at runtime without registry entries, so referencing them from a
// dashboard is normal:
//
//   - device_tracker: trackers appear on first login
//   - group: groups are rebuilt on reload
//   - persistent_notification: notifications are transient
//   - scene: scenes are rebuilt on reload
//
// On top of that, users supply ignore rules as CEL expressions
// (https://github.com/google/cel-go). Each expression must evaluate to a
// boolean and may reference two variables:
//
//   - entity_id: the full entity ID (e.g., "light.kitchen")
//   - domain: the part before the first dot (e.g., "light")
//
// Example rules:
//
//	entity_id.startsWith("sensor.test_")
//	domain == "automation"
//	entity_id in ["light.old_lamp", "switch.legacy"]
//
// A rule that fails at evaluation time never hides a reference; the
// entity is treated as not ignored and still shows up in diagnostics.
package filter
