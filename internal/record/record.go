package record

// Well-known field names shared across every collection.
const (
	// FieldUniqueID is the stable record identifier within a collection.
	// Assigned once at creation, never changed.
	FieldUniqueID = "unique_id"

	// FieldGroupName is the affiliate name, the join key across
	// collections.
	FieldGroupName = "group_name"

	// FieldDOSStamp is the date-of-submission timestamp, recomputed on
	// every write unless the caller supplies an imported-report override.
	FieldDOSStamp = "dos_stamp"
)

// Record is an ordered, sparse mapping from field name to Value.
//
// Field insertion order is preserved for stable iteration, but has no
// semantic weight: the serializer emits schema order. Absent fields are
// genuinely absent - there is no present-but-empty state.
type Record struct {
	keys   []string
	fields map[string]Value
}

// New creates an empty record.
func New() *Record {
	return &Record{fields: make(map[string]Value)}
}

// Len returns the number of fields present.
func (r *Record) Len() int {
	return len(r.keys)
}

// Get returns the value for a field and whether it is present.
func (r *Record) Get(key string) (Value, bool) {
	v, ok := r.fields[key]
	return v, ok
}

// Scalar returns the scalar value of a field, or "" if the field is
// absent or list-valued.
func (r *Record) Scalar(key string) string {
	if v, ok := r.fields[key]; ok {
		if s, ok := v.(Scalar); ok {
			return string(s)
		}
	}
	return ""
}

// List returns the list value of a field, or nil if the field is absent
// or scalar-valued.
func (r *Record) List(key string) []string {
	if v, ok := r.fields[key]; ok {
		if l, ok := v.(List); ok {
			return []string(l)
		}
	}
	return nil
}

// Set stores a value under key. An empty value removes the field instead
// (sparse-field rule). Setting an existing key keeps its position.
func (r *Record) Set(key string, v Value) {
	if v == nil || v.Empty() {
		r.Delete(key)
		return
	}
	if _, ok := r.fields[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.fields[key] = v
}

// Delete removes a field if present.
func (r *Record) Delete(key string) {
	if _, ok := r.fields[key]; !ok {
		return
	}
	delete(r.fields, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the field names in insertion order. The returned slice is
// a copy.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// UniqueID returns the record's unique_id, or "" if unset.
func (r *Record) UniqueID() string {
	return r.Scalar(FieldUniqueID)
}

// GroupName returns the record's group_name, or "" if unset.
func (r *Record) GroupName() string {
	return r.Scalar(FieldGroupName)
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	out := New()
	for _, k := range r.keys {
		switch v := r.fields[k].(type) {
		case Scalar:
			out.Set(k, v)
		case List:
			elems := make(List, len(v))
			copy(elems, v)
			out.Set(k, elems)
		}
	}
	return out
}

// EqualRecords reports whether two records hold the same field set with
// equal values. Field order is ignored: the wire format normalizes order
// to the schema, so content equality is what round-trip tests need.
func EqualRecords(a, b *Record) bool {
	if a.Len() != b.Len() {
		return false
	}
	for _, k := range a.keys {
		bv, ok := b.fields[k]
		if !ok || !Equal(a.fields[k], bv) {
			return false
		}
	}
	return true
}

// Collection is an ordered sequence of records. Ordering is insertion
// order; no index is stored apart from position.
type Collection []*Record

// FindByID returns the index of the record whose unique_id matches id,
// or -1 when absent.
func (c Collection) FindByID(id string) int {
	for i, rec := range c {
		if rec.UniqueID() == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the collection.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for i, rec := range c {
		out[i] = rec.Clone()
	}
	return out
}

// EqualCollections reports whether two collections hold content-equal
// records in the same order.
func EqualCollections(a, b Collection) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !EqualRecords(a[i], b[i]) {
			return false
		}
	}
	return true
}
