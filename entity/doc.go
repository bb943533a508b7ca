// Package entity defines the entity identifier type shared across the SDK.
//
// An entity is an addressable object in the home-automation platform's state
// model (a sensor, a light, a switch), identified by a "domain.object_id"
// string such as "light.kitchen". Two sentinel identifiers exist alongside
// regular ids: MatchAll ("all") and MatchNone ("none"), which service calls
// accept as wildcard targets and which therefore count as known entities.
//
// The package also provides Set, the result type of dashboard extraction:
// an unordered collection of identifiers with duplicates collapsed.
package entity
