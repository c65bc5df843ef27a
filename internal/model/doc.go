// Package model defines the core data structures shared across personscan.
//
// The central types are Query (one search request), RawCompositeReport
// (the unformatted aggregation of every provider's payload for one query
// snapshot), MainRecord (the persisted per-subject document), and
// CanonicalReport (the stable client-facing projection produced by the
// format package).
//
// Design decision: provider payloads are closed Go structs rather than
// free-form maps. Every provider converts its data into one of these
// shapes at its boundary, so the formatter only ever pattern-matches
// over a small, known set of types.
package model
