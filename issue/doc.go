// Package issue provides types and storage for repairable diagnostic issues
// raised against the home-automation platform.
//
// An Issue is the user-visible outcome of an inspection: one record per
// subject (for dashboard inspections, one per dashboard, keyed by its URL
// path). Issues carry translation placeholders rendered by the frontend,
// a severity, and a fixable flag signalling that a guided repair flow exists.
//
// # Lifecycle
//
// Repairs create and delete issues through a Store. Create is an upsert: the
// stable (repair, issue id) pair identifies the record, re-raising updates
// placeholders in place while preserving the creation timestamp. Delete is
// idempotent so repairs can clear unconditionally after a clean inspection.
//
// # Severity Levels
//
// Severity is ranked from Critical to Info with associated weights for
// sorting and prioritization.
package issue
