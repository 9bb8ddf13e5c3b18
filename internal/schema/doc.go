// Package schema declares the fixed set of record collections and loads
// their definitions from an embedded CUE file.
//
// A collection schema fixes three things the rest of the system depends
// on:
//   - the declared field order, which the serializer must follow exactly,
//   - the kind of every field (scalar or list), checked at the
//     parse/serialize boundary by Validate,
//   - page bindings and the parent/child relation between Affiliate
//     Indicators and its Programs collection.
//
// Schemas are data, not code: the CUE source is the single place a field
// is added or reordered, and the loader rejects definitions that are
// internally inconsistent (unknown kinds, duplicate fields, dangling
// child references).
package schema
