package entity

import "strings"

// ID is an entity identifier in "domain.object_id" form.
//
// The extraction engine treats identifiers as opaque strings and performs no
// format validation; Valid is a convenience for callers outside the core that
// need to reject obviously malformed ids (registry registration, tooling).
type ID string

const (
	// MatchAll is the wildcard identifier matching every entity.
	// Service calls accept it as a target, so it is always a known entity.
	MatchAll ID = "all"

	// MatchNone is the wildcard identifier matching no entity.
	MatchNone ID = "none"
)

// Domain returns the domain portion of the identifier (the part before the
// first dot), or "" if the identifier has no dot.
func (id ID) Domain() string {
	domain, _, found := strings.Cut(string(id), ".")
	if !found {
		return ""
	}
	return domain
}

// ObjectID returns the object portion of the identifier (the part after the
// first dot), or "" if the identifier has no dot.
func (id ID) ObjectID() string {
	_, object, found := strings.Cut(string(id), ".")
	if !found {
		return ""
	}
	return object
}

// Valid reports whether the identifier is a sentinel or has non-empty domain
// and object portions.
func (id ID) Valid() bool {
	if id == MatchAll || id == MatchNone {
		return true
	}
	domain, object, found := strings.Cut(string(id), ".")
	return found && domain != "" && object != ""
}

// String returns the identifier as a plain string.
func (id ID) String() string {
	return string(id)
}
