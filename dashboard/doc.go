// Package dashboard provides dashboard document handling: loading documents
// from a source and extracting every entity reference they contain.
//
// # Extraction
//
// A dashboard document is a tree of loosely typed nodes with no schema tags.
// A node's kind (badge, card, element, action, condition, chip) is determined
// solely by which container it was found in during the walk, never by
// inspecting the node itself. Different widget families spell "which entity
// does this refer to" differently (scalar, list of strings, list of objects,
// nested action descriptors), and nesting is open ended: cards contain cards,
// elements contain elements, chips contain chips.
//
// Extract walks the whole matrix:
//
//	refs := dashboard.Extract(doc)
//	for _, id := range refs.Sorted() {
//		fmt.Println(id)
//	}
//
// Extraction is a pure function of the document: no I/O, no shared state, a
// fresh result set per call, and identical input always yields an identical
// result. Malformed or unexpected shapes never produce an error; every
// accessor degrades to "absent" instead. Recursion depth is capped (see
// WithMaxDepth) so a pathological document cannot cause non-termination;
// subtrees beyond the cap contribute nothing.
//
// # Sources
//
// Source supplies dashboard descriptors and their documents. FSSource reads
// <url_path>.yaml files from a directory; MemorySource serves documents from
// a map and is intended for tests and embedded use. Load returns
// ErrConfigNotFound when a dashboard has no stored document, which
// inspection treats as "skip this dashboard".
package dashboard
