// Package editor drives the write path: fetch the full collection page,
// parse it, apply one merge operation in memory, serialize the whole
// collection, write it back, purge.
//
// The pipeline is all-or-nothing from the caller's perspective. A parse
// failure aborts before the store is touched; a write failure leaves the
// remote page untouched and the in-memory result unpersisted; a user
// abandoning before Apply persists nothing. The editor never retries -
// retrying the whole fetch-mutate-write cycle is the caller's decision.
//
// Writes are conditional on the fetched revision by default, which turns
// the lost-update race of concurrent editors into a visible
// RevisionMismatchError. Unconditional mode reproduces the historical
// last-writer-wins behavior for backends without revision support.
package editor
