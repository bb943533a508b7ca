// Package document provides helpers for working with untyped configuration
// documents: trees of map[string]any, []any, and scalar nodes as produced by
// YAML or JSON deserialization.
//
// Dashboard documents are third-party, user-authored data with highly
// variable shape, so every accessor degrades to a zero value on missing keys
// or type mismatches instead of returning an error. Callers that need to
// distinguish "absent" from "present with the wrong type" index the map
// directly and type-switch.
package document
