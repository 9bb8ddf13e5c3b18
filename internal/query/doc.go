// Package query implements the read-only query/aggregation engine over
// parsed record collections.
//
// A query is a descriptor triple (object, subject, filters). Evaluation
// is a predicate scan over the relevant collection(s), with an optional
// join: a report record joins to an organization record by the shared,
// normalized group name. There are no indexes; collections are small and
// scans are linear.
//
// Determinism rules:
//   - list results contribute one line per matching record, in collection
//     scan order, with no deduplication,
//   - grouped results bucket into the fixed region list in fixed display
//     order,
//   - date-range bounds are inclusive and an absent bound always
//     satisfies,
//   - percentage aggregates round half away from zero, and an empty
//     denominator group is ZeroDenominatorError, never a silent zero.
//
// The engine never mutates: it reads parser output only. All state for an
// interactive query lives in Session, an explicit wizard state machine;
// nothing survives session end.
package query
