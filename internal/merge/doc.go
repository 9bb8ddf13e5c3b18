// Package merge implements the write-path reconciliation of one edited
// record against a full, already-parsed collection.
//
// The engine is a pure function over in-memory data: it never fetches,
// never writes, never retries. Callers own the fetch-merge-serialize-write
// pipeline and its failure policy.
//
// Merge rules:
//   - Insert appends; the record receives a freshly generated unique_id
//     when it carries none, and an id collision is an error.
//   - Update replaces the matching record in place (same position). The
//     incoming record describes the desired field set: a field that is
//     empty or absent on the incoming record is dropped from the result,
//     never written as an empty string.
//   - Delete erases the matching record. On a sharedID collection every
//     record carrying the id is erased; CascadeDelete applies a parent
//     delete and the dependent child erasure as one operation over both
//     collections.
//
// Every successful Insert/Update stamps dos_stamp from the engine's clock
// unless the caller supplies an imported-report override.
package merge
