package entity

import "sort"

// Set is an unordered collection of entity identifiers with duplicates
// collapsed. The zero value is not usable; create sets with NewSet. A Set is
// owned by whoever allocated it and is not safe for concurrent mutation.
type Set map[ID]struct{}

// NewSet returns a set containing the given identifiers.
func NewSet(ids ...ID) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts an identifier into the set.
func (s Set) Add(id ID) {
	s[id] = struct{}{}
}

// Has reports whether the identifier is in the set.
func (s Set) Has(id ID) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of identifiers in the set.
func (s Set) Len() int {
	return len(s)
}

// Merge inserts every identifier from other into s.
func (s Set) Merge(other Set) {
	for id := range other {
		s[id] = struct{}{}
	}
}

// Sorted returns the identifiers in lexicographic order. Sorting makes
// downstream output (issue placeholders, logs) deterministic.
func (s Set) Sorted() []ID {
	ids := make([]ID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Strings returns the identifiers as sorted plain strings.
func (s Set) Strings() []string {
	ids := s.Sorted()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
