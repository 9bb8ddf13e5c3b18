// Package record provides the typed record model shared by the parser,
// serializer, merge engine, and query engine.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import record; record imports nothing internal. This
// ensures the record model remains the foundational layer with no circular
// dependencies.
//
// Key design constraints:
//   - Values are a sealed variant: Scalar(string) or List([]string). No
//     other kinds exist in the wire format.
//   - Records are sparse: a field that is absent is distinct from a field
//     holding an empty string, and setting a field to an empty value
//     removes it.
//   - Records preserve field insertion order for stable iteration, but the
//     serializer emits fields in schema order, not record order.
package record
