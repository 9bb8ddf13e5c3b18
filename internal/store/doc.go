// Package store defines the page-store boundary: the remote document
// collaborator that holds each collection as one structured-text page.
//
// The core treats the store as an opaque key/value get-and-put: Fetch
// returns the raw page text, Write replaces it wholesale, Purge
// invalidates caches after a successful write. The store has no schema
// awareness.
//
// Revisions: every fetched page carries a revision token. Write takes the
// expected revision and fails with RevisionMismatchError when the page
// moved underneath the caller, which closes the classic lost-update race
// of read-modify-write over a shared document. WriteUnconditional
// preserves the historical behavior (last writer wins) for callers
// talking to backends that cannot compare revisions.
//
// Two backends ship here: an in-memory store for tests and dry runs, and
// a SQLite store for a durable local mirror. A real remote transport
// implements the same interface outside this module.
package store
