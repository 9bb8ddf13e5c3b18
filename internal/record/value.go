package record

import (
	"fmt"
	"strings"
)

// Value is a sealed interface representing the two value kinds a record
// field may hold. Only Scalar and List implement it.
type Value interface {
	value() // Sealed - only these types implement it

	// Empty reports whether the value carries no content. Empty values are
	// never stored: setting a field to an empty value removes the field.
	Empty() bool
}

// Scalar is a single string value.
type Scalar string

func (Scalar) value() {}

// Empty reports whether the scalar is the empty string.
func (s Scalar) Empty() bool { return s == "" }

// List is an ordered sequence of strings. Order is significant and
// preserved through parse/serialize round trips.
type List []string

func (List) value() {}

// Empty reports whether the list has no elements.
func (l List) Empty() bool { return len(l) == 0 }

// NewScalar creates a Scalar value.
func NewScalar(s string) Scalar {
	return Scalar(s)
}

// NewList creates a List value from elements.
func NewList(elems ...string) List {
	return List(elems)
}

// Kind identifies a value kind in a collection schema.
type Kind string

const (
	// KindScalar marks a field holding a single quoted string.
	KindScalar Kind = "scalar"

	// KindList marks a field holding a brace-delimited sequence of quoted
	// strings.
	KindList Kind = "list"
)

// KindOf returns the schema kind of a value.
func KindOf(v Value) Kind {
	switch v.(type) {
	case Scalar:
		return KindScalar
	case List:
		return KindList
	default:
		// Unreachable for sealed values; keeps the switch exhaustive.
		panic(fmt.Sprintf("unknown value type: %T", v))
	}
}

// Equal reports whether two values have the same kind and content.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Scalar:
		bv, ok := b.(Scalar)
		return ok && av == bv
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders a value for diagnostics. Lists join with ", ". This is
// not the wire form; see the tablit serializer.
func String(v Value) string {
	switch val := v.(type) {
	case Scalar:
		return string(val)
	case List:
		return strings.Join(val, ", ")
	default:
		return ""
	}
}
